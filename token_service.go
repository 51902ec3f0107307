package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// defaultTokenExpiration is applied when config carries a non-positive
// expiration. There is deliberately no "never expires" path.
const defaultTokenExpiration = 24 * time.Hour

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration time.Duration
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a TokenService from config. A missing signing key
// is the only failure mode and it is fatal at construction, never per request.
func NewTokenService(cfg Config, logger Logger) (*TokenServiceImpl, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, goerrors.New("token service requires a signing key", goerrors.CategoryInternal).
			WithTextCode("SIGNING_KEY_MISSING")
	}

	if logger == nil {
		logger = defLogger{}
	}

	expiration := defaultTokenExpiration
	if cfg.GetTokenExpiration() > 0 {
		expiration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	var aud jwt.ClaimStrings
	if len(cfg.GetAudience()) > 0 {
		aud = make(jwt.ClaimStrings, len(cfg.GetAudience()))
		copy(aud, cfg.GetAudience())
	}

	return &TokenServiceImpl{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: expiration,
		issuer:          cfg.GetIssuer(),
		audience:        aud,
		logger:          logger,
	}, nil
}

// IssueToken builds the claims set for the user and signs it.
func (ts *TokenServiceImpl) IssueToken(user *User) (string, *TokenClaims, error) {
	if user == nil {
		return "", nil, goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenExpiration)),
		},
		UID:         user.ID.String(),
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Admin:       user.Role == RoleAdmin,
	}

	signed, err := ts.SignClaims(claims)
	if err != nil {
		return "", nil, err
	}

	return signed, claims, nil
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// This is the cryptographic tier only; strict session cross-checks live in
// TokenVerifier.
func (ts *TokenServiceImpl) Validate(tokenString string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

var _ TokenService = (*TokenServiceImpl)(nil)
