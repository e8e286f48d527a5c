package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Email is stored normalized and is the
// natural lookup key; PasswordHash is the only persisted form of the
// secret.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	EmailVerified  bool       `bun:"is_email_verified" json:"is_email_verified"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	VerifiedAt     *time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicUser is the caller-facing projection of an account. It never
// carries the password hash.
type PublicUser struct {
	ID            string   `json:"id"`
	Email         string   `json:"email"`
	Role          UserRole `json:"role"`
	EmailVerified bool     `json:"is_email_verified"`
}

// Public returns the account's public fields.
func (u *User) Public() PublicUser {
	if u == nil {
		return PublicUser{}
	}
	return PublicUser{
		ID:            u.ID.String(),
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}

// VerificationToken is the persisted form of an email ownership proof.
// Only the SHA-256 digest of the raw token is stored; the raw value
// travels once inside the verification link. Rows are deleted on first
// successful redemption and left to rot past ExpiresAt otherwise.
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TokenDigest   string     `bun:"token_hash,notnull" json:"-"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token's window has elapsed at the given
// instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// NormalizeEmail lowercases and trims an email address. The normalized
// form is the uniqueness key and the only form stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
