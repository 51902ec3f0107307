package auth

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MemoryStore is the in-memory UserStore + SessionStore implementation. It
// backs the test suite and lets embedders run the auth flow without a
// database. Mutations copy records so callers never share row pointers with
// the store.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byUname map[string]uuid.UUID
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    map[uuid.UUID]*User{},
		byUname: map[string]uuid.UUID{},
	}
}

// Register adds a user, enforcing username uniqueness.
func (m *MemoryStore) Register(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, goerrors.New("user must not be nil", goerrors.CategoryBadInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byUname[user.Username]; exists {
		return nil, ErrDuplicateUsername
	}

	record := *user
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.Role == "" {
		record.Role = RoleUser
	}

	m.byID[record.ID] = &record
	m.byUname[record.Username] = record.ID

	out := record
	return &out, nil
}

// GetByUsername returns the user for a username, skipping soft-deleted rows.
func (m *MemoryStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUname[username]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return m.getLocked(id)
}

// GetByID returns the user for an id, skipping soft-deleted rows.
func (m *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(id)
}

func (m *MemoryStore) getLocked(id uuid.UUID) (*User, error) {
	record, ok := m.byID[id]
	if !ok || record.DeletedAt != nil {
		return nil, ErrIdentityNotFound
	}
	out := *record
	return &out, nil
}

// SetSession unconditionally overwrites the user's session pair.
func (m *MemoryStore) SetSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[userID]
	if !ok {
		return ErrIdentityNotFound
	}

	t := token
	exp := expiresAt
	record.Token = &t
	record.TokenExpiry = &exp
	return nil
}

// ClearSession nulls both session fields.
func (m *MemoryStore) ClearSession(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[userID]
	if !ok {
		return ErrIdentityNotFound
	}

	record.Token = nil
	record.TokenExpiry = nil
	return nil
}

// GetSession returns the persisted session record for a user. Soft-deleted
// rows report not-found, matching the bun repository's select filter, so
// strict verification rejects a deleted user's token on either store.
func (m *MemoryStore) GetSession(ctx context.Context, userID uuid.UUID) (SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, err := m.getLocked(userID)
	if err != nil {
		return SessionRecord{}, err
	}
	return record.Session(), nil
}

// SoftDelete marks the user deleted. Session fields are left untouched on
// purpose; deletion is independent of session state.
func (m *MemoryStore) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[userID]
	if !ok {
		return ErrIdentityNotFound
	}

	now := time.Now()
	record.DeletedAt = &now
	return nil
}

var (
	_ UserStore    = (*MemoryStore)(nil)
	_ SessionStore = (*MemoryStore)(nil)
)
