package auth_test

import (
	"context"
	"time"

	auth "github.com/vduarte/go-auth-session"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

// MockSessionStore implements auth.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SetSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockSessionStore) ClearSession(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, userID uuid.UUID) (auth.SessionRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(auth.SessionRecord), args.Error(1)
}

func testConfig() auth.SimpleConfig {
	return auth.SimpleConfig{
		SigningKey:      "test-signing-key",
		TokenExpiration: 24,
		Issuer:          "go-auth-session-test",
		PasswordMode:    auth.PasswordModePlaintext,
	}
}

func errStoreUnavailable() error {
	return goerrors.New("storage unavailable", goerrors.CategoryInternal)
}

func seedUser(store *auth.MemoryStore, username, password string, role auth.UserRole) *auth.User {
	user, err := store.Register(context.Background(), &auth.User{
		Username:     username,
		DisplayName:  username,
		PasswordHash: password,
		Role:         role,
	})
	if err != nil {
		panic(err)
	}
	return user
}
