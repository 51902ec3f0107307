package auth_test

import (
	"testing"
	"time"

	auth "github.com/vduarte/go-auth-session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service", func(t *testing.T) {
		service, err := auth.NewTokenService(testConfig(), noopLogger{})
		assert.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("creates token service with nil logger", func(t *testing.T) {
		service, err := auth.NewTokenService(testConfig(), nil)
		assert.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("missing signing key is fatal at construction", func(t *testing.T) {
		_, err := auth.NewTokenService(auth.SimpleConfig{}, nil)
		assert.Error(t, err)
	})

	t.Run("nil config is fatal at construction", func(t *testing.T) {
		_, err := auth.NewTokenService(nil, nil)
		assert.Error(t, err)
	})
}

func TestTokenServiceIssueToken(t *testing.T) {
	cfg := testConfig()
	service, err := auth.NewTokenService(cfg, noopLogger{})
	assert.NoError(t, err)

	user := &auth.User{
		ID:          uuid.New(),
		Username:    "ann",
		DisplayName: "Ann Harper",
		Role:        auth.RoleAdmin,
	}

	t.Run("issues a signed token with the user's claims", func(t *testing.T) {
		tokenString, claims, err := service.IssueToken(user)
		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)
		assert.NotNil(t, claims)

		assert.Equal(t, user.ID.String(), claims.Subject())
		assert.Equal(t, user.ID.String(), claims.UserID())
		assert.Equal(t, "ann", claims.Username)
		assert.Equal(t, "Ann Harper", claims.DisplayName)
		assert.True(t, claims.IsAdmin())

		parsed, err := jwt.ParseWithClaims(tokenString, &auth.TokenClaims{}, func(token *jwt.Token) (any, error) {
			return []byte(cfg.SigningKey), nil
		})
		assert.NoError(t, err)
		assert.True(t, parsed.Valid)
	})

	t.Run("expiration follows config", func(t *testing.T) {
		_, claims, err := service.IssueToken(user)
		assert.NoError(t, err)

		expected := time.Now().Add(time.Duration(cfg.TokenExpiration) * time.Hour)
		assert.WithinDuration(t, expected, claims.Expires(), 5*time.Second)
	})

	t.Run("non-admin user bakes false admin flag", func(t *testing.T) {
		member := &auth.User{ID: uuid.New(), Username: "bob", Role: auth.RoleUser}

		_, claims, err := service.IssueToken(member)
		assert.NoError(t, err)
		assert.False(t, claims.IsAdmin())
	})

	t.Run("nil user is rejected", func(t *testing.T) {
		_, _, err := service.IssueToken(nil)
		assert.Error(t, err)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	cfg := testConfig()
	service, err := auth.NewTokenService(cfg, noopLogger{})
	assert.NoError(t, err)

	user := &auth.User{ID: uuid.New(), Username: "ann", Role: auth.RoleUser}

	t.Run("round-trips issued claims", func(t *testing.T) {
		tokenString, issued, err := service.IssueToken(user)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, issued.UserID(), claims.UserID())
		assert.Equal(t, issued.Username, claims.Username)
		assert.Equal(t, issued.IsAdmin(), claims.IsAdmin())
		assert.WithinDuration(t, issued.Expires(), claims.Expires(), time.Second)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other, err := auth.NewTokenService(auth.SimpleConfig{
			SigningKey: "other-key",
			Issuer:     cfg.Issuer,
		}, noopLogger{})
		assert.NoError(t, err)

		tokenString, _, err := other.IssueToken(user)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects expired token with a distinct error", func(t *testing.T) {
		expired := &auth.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				Subject:   user.ID.String(),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			UID: user.ID.String(),
		}

		tokenString, err := service.SignClaims(expired)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		assert.True(t, auth.IsTokenExpiredError(err))
		assert.False(t, auth.IsMalformedError(err))
	})

	t.Run("rejects unexpected signing method", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    cfg.Issuer,
				Subject:   user.ID.String(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tokenString, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})
}
