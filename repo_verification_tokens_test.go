package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/quizlyr/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintTokenFor(t *testing.T, repo auth.RepositoryManager, user *auth.User) (string, *auth.VerificationToken) {
	t.Helper()

	raw, token, err := auth.NewVerificationToken(user.ID.String())
	require.NoError(t, err)

	token, err = repo.VerificationTokens().Create(context.Background(), token)
	require.NoError(t, err)

	return raw, token
}

func TestVerificationTokensLookupByDigestAndEmail(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "person@example.com", "password123", false)
	raw, token := mintTokenFor(t, repo, user)

	got, err := repo.VerificationTokens().GetByDigestAndEmail(ctx, auth.TokenDigest(raw), user.Email)
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, user.ID, got.UserID)
}

func TestVerificationTokensLookupMissesOtherAccount(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	alice := seedUser(t, repo, "alice@example.com", "password123", false)
	seedUser(t, repo, "eve@example.com", "password123", false)

	raw, _ := mintTokenFor(t, repo, alice)

	// a valid token scoped to alice does nothing for eve
	_, err := repo.VerificationTokens().GetByDigestAndEmail(ctx, auth.TokenDigest(raw), "eve@example.com")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestVerificationTokensLookupMissesUnknownDigest(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "person@example.com", "password123", false)
	mintTokenFor(t, repo, user)

	// the raw token is not the lookup key, its digest is
	_, err := repo.VerificationTokens().GetByDigestAndEmail(ctx, auth.TokenDigest("some-other-token"), user.Email)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestVerificationTokensConsumeIsSingleUse(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "person@example.com", "password123", false)
	_, token := mintTokenFor(t, repo, user)

	require.NoError(t, repo.VerificationTokens().Consume(ctx, token.ID))

	// the row is gone, a second consume misses
	err := repo.VerificationTokens().Consume(ctx, token.ID)
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.VerificationTokens().GetByDigestAndEmail(ctx, token.TokenDigest, user.Email)
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestVerificationTokensExpiredRowStaysPut(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "person@example.com", "password123", false)
	raw, token := mintTokenFor(t, repo, user)

	// the repository does not filter on expiry, callers check it
	token.ExpiresAt = time.Now().Add(-time.Hour)

	got, err := repo.VerificationTokens().GetByDigestAndEmail(ctx, auth.TokenDigest(raw), user.Email)
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now().Add(auth.VerificationTokenTTL+time.Hour)))
}
