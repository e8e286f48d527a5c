package auth

import (
	"context"
	"net/http"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/quizlyr/go-auth/middleware/jwtware"
)

// RouteAuthenticator wires the authenticator into HTTP middleware for a
// bearer token API. Authentication failures collapse into a uniform 401
// payload regardless of cause; role denials get a 403.
type RouteAuthenticator struct {
	auth             Authenticator
	validator        TokenValidator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("auther is required", errors.CategoryBadInput)
	}

	a := &RouteAuthenticator{
		cfg:       cfg,
		auth:      auther,
		validator: auther.TokenService(),
		Logger:    defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// ProtectedRoute requires a valid bearer token. Claims are stored in
// the router context under the configured context key.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeRouteAuthErrorHandler(false)
	}
	return jwtware.New(jwtware.Config{
		ErrorHandler:    errorHandler,
		TokenValidator:  tokenValidatorAdapter{a.validator},
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		ContextEnricher: enrichWithClaims,
	})
}

// AdminRoute requires a valid bearer token whose role claim is ADMIN.
func (a *RouteAuthenticator) AdminRoute(errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	if errorHandler == nil {
		errorHandler = a.MakeRouteAuthErrorHandler(false)
	}
	return jwtware.New(jwtware.Config{
		ErrorHandler:    errorHandler,
		TokenValidator:  tokenValidatorAdapter{a.validator},
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		RequiredRole:    string(RoleAdmin),
		ContextEnricher: enrichWithClaims,
	})
}

// Login verifies the credentials and returns a signed session token for
// the response body.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetEmail(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}
	return token, nil
}

// MakeRouteAuthErrorHandler builds the middleware error handler. When
// optional is true the request proceeds without claims instead of
// failing.
func (a *RouteAuthenticator) MakeRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if isRoleDenial(err) {
			richErr = ErrForbidden
		} else if IsTokenExpiredError(err) {
			richErr = ErrUnauthenticated
		} else if IsMalformedError(err) {
			richErr = ErrUnauthenticated
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, ErrUnauthenticated.Message).
				WithTextCode(ErrUnauthenticated.TextCode).
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.ErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	status := http.StatusUnauthorized
	if richErr.Category == errors.CategoryAuthz {
		status = http.StatusForbidden
	}

	return c.JSON(status, errorBody(richErr))
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.JSON(httpStatusFor(richErr), errorBody(richErr))
	}
}

// enrichWithClaims mirrors validated claims into the standard context so
// non router code can read them through GetClaims.
func enrichWithClaims(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if ac, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(ctx, ac)
	}
	return ctx
}

// tokenValidatorAdapter bridges the root package validator into the
// middleware without an import cycle.
type tokenValidatorAdapter struct {
	validator TokenValidator
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func isRoleDenial(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrForbidden) {
		return true
	}
	// jwtware reports RBAC failures as plain errors
	msg := err.Error()
	return len(msg) >= len("access denied") && msg[:len("access denied")] == "access denied"
}

func httpStatusFor(richErr *errors.Error) int {
	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(richErr *errors.Error) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	}
}
