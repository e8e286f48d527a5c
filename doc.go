// Package auth provides account identity primitives (registration with
// deferred email verification, JWT issuance, stateful repositories, HTTP
// helpers) for bearer token APIs.
//
// Account lifecycle:
//   - Registration persists the account with a bcrypt password hash and an
//     unverified email flag, then mints a single-use verification token.
//     Only the SHA-256 digest of the token is stored; the raw value travels
//     once inside the verification link.
//   - Verification redeems the token inside one transaction: the digest row
//     is deleted and the account's verified flag flips. A second redemption
//     of the same token misses the delete and fails, which makes tokens
//     single-use even under concurrent requests.
//   - Login only succeeds for verified accounts. Unknown emails and wrong
//     passwords collapse into the same error so responses cannot be used to
//     probe which accounts exist.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     command handlers to describe registration, verification, login, and
//     mail delivery events. Sinks run best-effort (errors are logged) so you
//     can forward to a database or queue without blocking authentication.
package auth
