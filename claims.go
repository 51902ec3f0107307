package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the claims set embedded in issued tokens. The admin flag is
// resolved from the user's role at issuance and baked in; a role change only
// takes effect on the next login, never on already-issued tokens.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID         string `json:"uid,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"name,omitempty"`
	Admin       bool   `json:"adm,omitempty"`
}

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user id claim, falling back to the subject.
func (c *TokenClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// UserUUID parses the user id claim.
func (c *TokenClaims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID())
}

// IsAdmin reports the admin flag baked in at issuance time.
func (c *TokenClaims) IsAdmin() bool {
	return c.Admin
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
