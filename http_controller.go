package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON auth endpoints on the router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth.register.post")

	app.Post(controller.Routes.Verify, controller.VerifyEmail).
		SetName("auth.verify.post")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")
}

type AuthControllerRoutes struct {
	Login    string
	Register string
	Verify   string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	Mailer       Mailer
	Config       Config
	ActivitySink ActivitySink
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerRepo sets the repository manager used by the handlers.
func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

// WithControllerAuther sets the HTTP authenticator.
func WithControllerAuther(auther HTTPAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

// WithControllerConfig sets the auth configuration.
func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

// WithControllerMailer sets the mailer used for verification messages.
func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

// WithControllerActivitySink sets the sink used for auth events.
func WithControllerActivitySink(sink ActivitySink) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ActivitySink = normalizeActivitySink(sink)
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:       defLogger{},
		ActivitySink: noopActivitySink{},
		ErrorHandler: defaultErrHandler,
		Routes: &AuthControllerRoutes{
			Login:    "/auth/login",
			Register: "/auth/register",
			Verify:   "/auth/verify",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.Mailer == nil {
		c.Mailer = NewLinkLoggerMailer(c.Logger)
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetEmail returns the account email
func (r LoginRequest) GetEmail() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("login validate payload", "error", err)
		return a.respondValidationError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, err := a.Auther.Login(ctx, payload)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"token": token,
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register validate payload", "error", err)
		return a.respondValidationError(ctx, err)
	}

	var res *RegisterAccountResponse

	req := RegisterAccountMessage{
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *RegisterAccountResponse) {
			res = resp
		},
	}

	registerAccount := NewRegisterAccountHandler(a.Repo, a.Config).
		WithMailer(a.Mailer).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := registerAccount.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register account error", "error", err)
		return a.respondError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("============================")
	}

	body := map[string]any{
		"user": res.User,
	}

	// Surface the link when delivery failed so the account is not
	// stranded without a verification channel.
	if !res.Delivery.Delivered {
		body["verification_link"] = res.VerificationLink
	}

	return ctx.JSON(router.StatusCreated, body)
}

// VerifyEmailPayload carries the token redemption input
type VerifyEmailPayload struct {
	Email string `form:"email" json:"email" query:"email"`
	Token string `form:"token" json:"token" query:"token"`
}

// Validate will validate the payload
func (r VerifyEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
	)
}

func (a *AuthController) VerifyEmail(ctx router.Context) error {
	payload := new(VerifyEmailPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("verify parse payload", "error", err)
		return a.respondError(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse request body"))
	}

	// allow link style redemption: /auth/verify?token=...&email=...
	if payload.Token == "" {
		payload.Token = ctx.Query("token", "")
	}
	if payload.Email == "" {
		payload.Email = ctx.Query("email", "")
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("verify validate payload", "error", err)
		return a.respondValidationError(ctx, err)
	}

	var res *VerifyEmailResponse

	req := VerifyEmailMessage{
		Email: payload.Email,
		Token: payload.Token,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	}

	verifyEmail := NewVerifyEmailHandler(a.Repo).
		WithActivitySink(a.ActivitySink).
		WithLogger(a.Logger)

	if err := verifyEmail.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("verify email error", "error", err)
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"user": res.User,
	})
}

func (a *AuthController) respondError(ctx router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	return ctx.JSON(httpStatusFor(richErr), errorBody(richErr))
}

func (a *AuthController) respondValidationError(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"message":   "validation failed",
			"text_code": "VALIDATION",
			"fields":    FormatValidationErrorToMap(err),
		},
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}

func defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}
	return c.JSON(httpStatusFor(richErr), errorBody(richErr))
}
