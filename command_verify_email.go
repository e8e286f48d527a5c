package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// VerifyEmailMessage redeems a verification token. Email scopes the
// lookup so a token can only ever act on the account it was minted for.
type VerifyEmailMessage struct {
	Email      string `json:"email"`
	Token      string `json:"token"`
	OnResponse func(resp *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "account.verify_email" }

type VerifyEmailResponse struct {
	User PublicUser
}

type VerifyEmailHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

func NewVerifyEmailHandler(repo RepositoryManager) *VerifyEmailHandler {
	return &VerifyEmailHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit verification events.
func (h *VerifyEmailHandler) WithActivitySink(sink ActivitySink) *VerifyEmailHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *VerifyEmailHandler) WithLogger(logger Logger) *VerifyEmailHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	if event.Email == "" || event.Token == "" {
		return goerrors.New("email and token are required", goerrors.CategoryBadInput)
	}

	email := NormalizeEmail(event.Email)
	digest := TokenDigest(event.Token)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		token, err := h.repo.VerificationTokens().GetByDigestAndEmailTx(ctx, tx, digest, email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "verification token lookup failed")
		}

		if token.Expired(time.Now()) {
			// The row stays put: expiry is not consumption, and the
			// caller may still want to mint a replacement.
			return ErrTokenExpired
		}

		// Consume first: a miss here means another request redeemed the
		// same token between our read and this delete.
		if err := h.repo.VerificationTokens().ConsumeTx(ctx, tx, token.ID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not consume verification token")
		}

		if err := h.repo.Users().MarkEmailVerifiedTx(ctx, tx, token.UserID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidToken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not mark email verified")
		}

		user, err = h.repo.Users().GetByEmailTx(ctx, tx, email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load verified user")
		}

		return nil
	})

	if err != nil {
		h.recordActivity(ctx, ActivityEvent{
			EventType: ActivityEventVerificationFailure,
			Metadata:  map[string]any{"email": email},
		})
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	h.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventVerificationSuccess,
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:    user.ID.String(),
		Metadata:  map[string]any{"email": user.Email},
	})

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{User: user.Public()})
	}

	return nil
}

func (h *VerifyEmailHandler) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}
}
