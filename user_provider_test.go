package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/quizlyr/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTrackedUser(t *testing.T, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:            uuid.New(),
		Email:         "person@example.com",
		PasswordHash:  hash,
		Role:          auth.RoleUser,
		EmailVerified: true,
	}
}

func TestVerifyIdentitySuccess(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()
	store.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

	provider := auth.NewUserProvider(store)

	identity, err := provider.VerifyIdentity(ctx, "person@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), identity.ID())
	assert.Equal(t, "person@example.com", identity.Email())
	assert.Equal(t, "USER", identity.Role())
	assert.True(t, identity.Verified())
	store.AssertExpectations(t)
}

func TestVerifyIdentityNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")

	// the store only ever sees the normalized form
	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()
	store.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "  Person@Example.COM ", "password123")
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestVerifyIdentityUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)

	notFound := errors.New("user not found", errors.CategoryNotFound)
	store.On("GetByEmail", ctx, mock.Anything).Return(nil, notFound).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
}

func TestVerifyIdentityWrongPasswordTracksAttempt(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()
	store.On("TrackAttemptedLogin", ctx, user).Return(nil).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "person@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	store.AssertExpectations(t)
}

func TestVerifyIdentityTooManyAttempts(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")

	now := time.Now()
	user.LoginAttempts = auth.MaxLoginAttempts + 1
	user.LoginAttemptAt = &now

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "person@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)
}

func TestVerifyIdentityCooldownResetsAttempts(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")

	// last attempt is well outside the cooldown window
	past := time.Now().Add(-48 * time.Hour)
	user.LoginAttempts = auth.MaxLoginAttempts + 10
	user.LoginAttemptAt = &past

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()
	store.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "person@example.com", "password123")
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestVerifyIdentityRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")
	user.Role = auth.UserRole("OVERLORD")

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()
	store.On("TrackSuccessfulLogin", ctx, user).Return(nil).Once()

	provider := auth.NewUserProvider(store)

	_, err := provider.VerifyIdentity(ctx, "person@example.com", "password123")
	assert.Error(t, err)
}

func TestFindIdentityByEmail(t *testing.T) {
	ctx := context.Background()
	store := new(MockUserTracker)
	user := newTrackedUser(t, "password123")
	user.EmailVerified = false

	store.On("GetByEmail", ctx, "person@example.com").Return(user, nil).Once()

	provider := auth.NewUserProvider(store)

	identity, err := provider.FindIdentityByEmail(ctx, "person@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), identity.ID())
	assert.False(t, identity.Verified())
}
