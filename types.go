package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, claims *TokenClaims) error
	CurrentUser(ctx context.Context, claims *TokenClaims) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
}

// UserStore is the slice of the resource repository the auth core depends on.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
}

// TokenService issues and validates signed tokens.
type TokenService interface {
	IssueToken(user *User) (string, *TokenClaims, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// PasswordVerifier compares a submitted password against the stored credential.
// Implementations are injected strategies: bcrypt for production, plaintext
// equality for dev/test builds that opt in through Config.
type PasswordVerifier interface {
	Compare(password, hash string) error
	Hash(password string) (string, error)
}

// SessionRecord is the persisted (token, expiry) pair for a user. Both fields
// are nil when the user has no active session.
type SessionRecord struct {
	Token     *string    `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Active reports whether the record holds a committed session.
func (r SessionRecord) Active() bool {
	return r.Token != nil && r.ExpiresAt != nil
}

// SessionStore persists the per-user session record. Writes are unconditional
// overwrites with no optimistic locking; one write wins cleanly.
type SessionStore interface {
	SetSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ClearSession(ctx context.Context, userID uuid.UUID) error
	GetSession(ctx context.Context, userID uuid.UUID) (SessionRecord, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
