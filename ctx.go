package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the TokenClaims in the given context
func WithClaimsContext(ctx context.Context, claims *TokenClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the TokenClaims from the standard context
func GetClaims(ctx context.Context) (*TokenClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*TokenClaims)
	return raw, ok
}

// GetFiberClaims extracts the TokenClaims stored by the Protected middleware.
func GetFiberClaims(c *fiber.Ctx, key string) (*TokenClaims, bool) {
	if key == "" {
		key = "user"
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*TokenClaims)
	return claims, ok
}
