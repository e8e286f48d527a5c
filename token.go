package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// VerificationTokenTTL is the window during which a freshly minted
// verification token may be redeemed.
const VerificationTokenTTL = 24 * time.Hour

// rawTokenBytes is the entropy backing a raw verification token.
const rawTokenBytes = 32

// MintRawToken generates the raw verification proof: 32 bytes of
// cryptographic randomness rendered as hex. The raw value is never
// persisted, only its digest is.
func MintRawToken() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}
	return hex.EncodeToString(buf), nil
}

// TokenDigest computes the deterministic SHA-256 fingerprint of a raw
// token. Tokens are high entropy random values, so an unsalted digest is
// safe at rest and doubles as the equality lookup key.
func TokenDigest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// NewVerificationToken mints a raw token and returns it alongside the
// row to persist, expiring VerificationTokenTTL from now.
func NewVerificationToken(userID string) (string, *VerificationToken, error) {
	raw, err := MintRawToken()
	if err != nil {
		return "", nil, err
	}

	token := &VerificationToken{
		TokenDigest: TokenDigest(raw),
		ExpiresAt:   time.Now().Add(VerificationTokenTTL),
	}

	if id, err := parseUUID(userID); err == nil {
		token.UserID = id
	}

	return raw, token, nil
}
