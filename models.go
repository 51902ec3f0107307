package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default, non-privileged role
	RoleUser UserRole = "user"
	// RoleAdmin can manage accounts
	RoleAdmin UserRole = "admin"
)

// ParseRole returns the role for raw when it is a known role.
func ParseRole(raw string) (UserRole, bool) {
	switch raw {
	case RoleUser, RoleAdmin:
		return raw, true
	default:
		return "", false
	}
}

// IsValidRole checks the role against the predefined valid roles
func IsValidRole(r UserRole) bool {
	_, ok := ParseRole(r)
	return ok
}

// User is the user model. The session record lives on the row as the
// token/token_expiry pair: one active session per user, overwritten on login,
// nulled on logout. PasswordHash and the session columns never serialize.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	DisplayName   string     `bun:"display_name" json:"display_name,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Token         *string    `bun:"token,nullzero" json:"-"`
	TokenExpiry   *time.Time `bun:"token_expiry,nullzero" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsAdmin reports whether the user's current stored role is admin. Note this
// is the live value; the flag baked into issued claims only changes on the
// next login.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session returns the persisted session record embedded in the row.
func (u *User) Session() SessionRecord {
	if u == nil {
		return SessionRecord{}
	}
	return SessionRecord{Token: u.Token, ExpiresAt: u.TokenExpiry}
}
