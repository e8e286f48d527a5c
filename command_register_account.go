package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage carries the registration input. Role is
// optional and defaults to USER; anything outside the closed enum is
// rejected before any write happens.
type RegisterAccountMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	UseHashid  bool
	OnResponse func(resp *RegisterAccountResponse)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountResponse is handed to OnResponse after the account is
// durable. VerificationLink is always populated so callers have a
// fallback channel regardless of mail delivery; Delivery records what
// happened to the best-effort send.
type RegisterAccountResponse struct {
	User             PublicUser
	VerificationLink string
	Delivery         Delivery
}

type RegisterAccountHandler struct {
	repo     RepositoryManager
	mailer   Mailer
	cfg      Config
	activity ActivitySink
	logger   Logger
}

// NewRegisterAccountHandler creates a handler with sane defaults. The
// default mailer only logs the verification link; production wiring
// swaps in an SMTPMailer.
func NewRegisterAccountHandler(repo RepositoryManager, cfg Config) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:     repo,
		cfg:      cfg,
		mailer:   NewLinkLoggerMailer(nil),
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithMailer sets the outbound mail collaborator.
func (h *RegisterAccountHandler) WithMailer(mailer Mailer) *RegisterAccountHandler {
	if mailer != nil {
		h.mailer = mailer
	}
	return h
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterAccountHandler) WithActivitySink(sink ActivitySink) *RegisterAccountHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterAccountHandler) WithLogger(logger Logger) *RegisterAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	if event.Email == "" || event.Password == "" {
		return goerrors.New("email and password are required", goerrors.CategoryBadInput)
	}

	role := UserRole(event.Role)
	if event.Role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return goerrors.New("unknown or invalid role", goerrors.CategoryValidation).
			WithMetadata(map[string]any{"role": event.Role})
	}

	email := NormalizeEmail(event.Email)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user := &User{}
	var rawToken string

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPasswordWithCost(event.Password, h.cfg.GetPasswordCost())
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Email = email
		user.PasswordHash = hash
		user.Role = role
		user.EmailVerified = false
		if event.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateAccount
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		raw, token, err := NewVerificationToken(user.ID.String())
		if err != nil {
			return err
		}

		if _, err := h.repo.VerificationTokens().CreateTx(ctx, tx, token); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create verification token")
		}

		rawToken = raw
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	resp := &RegisterAccountResponse{
		User:             user.Public(),
		VerificationLink: h.verificationLink(rawToken, user.Email),
	}
	resp.Delivery = h.notify(ctx, user, resp.VerificationLink)

	h.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventRegisterSuccess,
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"email":     user.Email,
			"delivered": resp.Delivery.Delivered,
		},
	})

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

// verificationLink embeds the raw token; only the digest was persisted.
func (h *RegisterAccountHandler) verificationLink(rawToken, email string) string {
	return fmt.Sprintf(
		"%s/verify?token=%s&email=%s",
		h.cfg.GetAppOrigin(),
		rawToken,
		url.QueryEscape(email),
	)
}

// notify attempts the best-effort mail send. Delivery failure degrades
// to the fallback link and an activity event; it never fails the
// registration that requested it.
func (h *RegisterAccountHandler) notify(ctx context.Context, user *User, link string) Delivery {
	err := h.mailer.Send(
		ctx,
		user.Email,
		"Verify your email",
		fmt.Sprintf("Click to verify: %s", link),
	)
	if err == nil {
		return Delivery{Delivered: true}
	}

	h.logger.Warn("verification mail delivery failed, returning fallback link", "error", err)
	h.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventMailDeliveryFailure,
		Actor:     ActorRef{ID: user.ID.String(), Type: "user"},
		UserID:    user.ID.String(),
		Metadata: map[string]any{
			"email": user.Email,
			"error": err.Error(),
		},
	})

	return DeliveryFailed(err)
}

func (h *RegisterAccountHandler) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}
	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}
}
