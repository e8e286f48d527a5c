package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims exposed to protected
// operations after a credential validates.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	IsAdmin() bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the role claim
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasRole checks if the claims carry a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the role is at least the minimum required role.
// Unknown role strings never satisfy any minimum.
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	role, ok := ParseRole(c.UserRole)
	if !ok {
		return false
	}
	return role.IsAtLeast(UserRole(minRole))
}

// IsAdmin reports whether the claims carry the admin role
func (c *JWTClaims) IsAdmin() bool {
	role, ok := ParseRole(c.UserRole)
	return ok && role.IsAdmin()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// AuthorizeAdmin is the claim-only admin gate: it must run after a
// successful authentication and never re-queries the store, so a role
// change elsewhere is not reflected until the credential expires.
func AuthorizeAdmin(claims AuthClaims) error {
	if claims == nil {
		return ErrUnauthenticated
	}

	role, ok := ParseRole(claims.Role())
	if !ok || !role.IsAdmin() {
		return ErrForbidden
	}

	return nil
}
