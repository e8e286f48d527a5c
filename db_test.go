package auth_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/quizlyr/go-auth"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const testSchema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    user_role TEXT NOT NULL DEFAULT 'USER',
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    login_attempts INTEGER DEFAULT 0,
    login_attempt_at TIMESTAMP,
    loggedin_at TIMESTAMP,
    verified_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted_at TIMESTAMP
);

CREATE TABLE verification_tokens (
    id TEXT PRIMARY KEY,
    token_hash TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    expires_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// in-memory sqlite drops its state when the last conn closes
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.ExecContext(context.Background(), testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}

func setupTestRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()
	return auth.NewRepositoryManager(setupTestDB(t))
}

func seedUser(t *testing.T, repo auth.RepositoryManager, email, password string, verified bool) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user, err := repo.Users().Create(context.Background(), &auth.User{
		Email:         auth.NormalizeEmail(email),
		PasswordHash:  hash,
		Role:          auth.RoleUser,
		EmailVerified: verified,
	})
	require.NoError(t, err)

	return user
}
