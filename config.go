package auth

// PasswordMode selects the password comparison strategy.
type PasswordMode = string

const (
	// PasswordModeBcrypt is the production strategy: cost-bounded bcrypt.
	PasswordModeBcrypt PasswordMode = "bcrypt"
	// PasswordModePlaintext compares raw strings. Only meant for test and
	// development environments; it must be selected explicitly.
	PasswordModePlaintext PasswordMode = "plaintext"
)

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
	GetAuthScheme() string
	GetPasswordMode() PasswordMode
}

// SimpleConfig is a plain struct Config implementation for embedders and tests.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	ContextKey      string
	AuthScheme      string
	PasswordMode    PasswordMode
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetPasswordMode() PasswordMode {
	if c.PasswordMode == "" {
		return PasswordModeBcrypt
	}
	return c.PasswordMode
}

var _ Config = SimpleConfig{}
