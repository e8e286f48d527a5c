package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to clients alongside domain errors.
const (
	TextCodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeForbidden          = "FORBIDDEN"
)

// ErrDuplicateAccount is returned when registration collides with an
// existing normalized email. The message intentionally mirrors the
// upstream API wording, which hints the email may exist.
var ErrDuplicateAccount = errors.New("registration failed: email may already exist", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeDuplicateAccount)

// ErrInvalidToken is returned when a verification token does not match a
// live row for the given account. Consumed and cross-account tokens look
// identical to the caller.
var ErrInvalidToken = errors.New("invalid token", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidToken)

// ErrTokenExpired is returned when a verification token exists but its
// 24 hour window has elapsed.
var ErrTokenExpired = errors.New("token expired", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeTokenExpired)

// ErrInvalidCredentials covers both an unknown account and a failed
// password check so the two cases are indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrEmailNotVerified is only surfaced after the password check passed.
var ErrEmailNotVerified = errors.New("email not verified", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeEmailNotVerified)

// ErrUnauthenticated is the uniform rejection for session credentials:
// missing Bearer prefix, bad signature, expiry, and malformed tokens all
// map here so clients get no diagnostic signal.
var ErrUnauthenticated = errors.New("invalid or expired token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrForbidden is returned by admin authorization on non admin claims.
var ErrForbidden = errors.New("admin only", errors.CategoryAuth).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeForbidden)

// ErrSessionExpired marks a well formed session credential past its
// validity window. It still answers true to IsUnauthenticated.
var ErrSessionExpired = errors.New("session token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrTokenMalformed marks a session credential that could not be decoded.
var ErrTokenMalformed = errors.New("token malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrTooManyLoginAttempts is returned when the attempt counter trips the
// cooldown window.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrMismatchedHashAndPassword is the sentinel for a failed bcrypt check.
var ErrMismatchedHashAndPassword = errors.New("mismatched password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before they reach bcrypt.
var ErrNoEmptyString = errors.New("value should not be empty", errors.CategoryBadInput)

// ErrUnableToDecodeSession unable to decode JWT claims
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsUnauthenticated reports whether err is any of the uniform
// authentication rejections.
func IsUnauthenticated(err error) bool {
	if err == nil {
		return false
	}
	for _, candidate := range []*errors.Error{ErrUnauthenticated, ErrSessionExpired, ErrTokenMalformed} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeUnauthenticated
	}
	return false
}

// IsTokenExpiredError will check for expired session tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSessionExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// isDuplicateKeyError detects unique constraint violations across the
// drivers we run against (sqlite, postgres).
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "constraint violation")
}
