package auth

// AuthConfig is the concrete Config used by applications. Populate it
// once at startup (flags, files, environment) and hand it to the
// constructors that need it.
type AuthConfig struct {
	// SigningKey is the process lifetime HMAC secret for session tokens.
	SigningKey string
	// SigningMethod defaults to HS256.
	SigningMethod string
	// ContextKey is where middleware stores decoded claims.
	ContextKey string
	// TokenExpiration is the session validity window in hours.
	TokenExpiration int
	// TokenLookup tells middleware where to find the credential.
	TokenLookup string
	// AuthScheme is the expected Authorization scheme prefix.
	AuthScheme string
	Issuer     string
	Audience   []string
	// AppOrigin is the base origin used to build verification links.
	AppOrigin string
	// PasswordCost overrides the bcrypt work factor when > 0.
	PasswordCost int
}

// DefaultTokenExpiration is the session validity window: 7 days,
// expressed in hours.
const DefaultTokenExpiration = 24 * 7

var _ Config = (*AuthConfig)(nil)

func (c *AuthConfig) GetSigningKey() string { return c.SigningKey }

func (c *AuthConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c *AuthConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c *AuthConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

func (c *AuthConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c *AuthConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c *AuthConfig) GetIssuer() string { return c.Issuer }

func (c *AuthConfig) GetAudience() []string { return c.Audience }

func (c *AuthConfig) GetAppOrigin() string { return c.AppOrigin }

func (c *AuthConfig) GetPasswordCost() int {
	if c.PasswordCost <= 0 {
		return DefaultPasswordCost
	}
	return c.PasswordCost
}
