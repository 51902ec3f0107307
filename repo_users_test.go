package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	auth "github.com/vduarte/go-auth-session"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    user_role TEXT NOT NULL DEFAULT 'user',
    username TEXT NOT NULL UNIQUE,
    display_name TEXT,
    password_hash TEXT NOT NULL,
    token TEXT,
    token_expiry TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP,
    deleted_at TIMESTAMP NULL
);`

func setupUsersRepo(t *testing.T) (auth.Users, *bun.DB, func()) {
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return auth.NewUsersRepository(bunDB), bunDB, cleanup
}

func TestUsersRepositoryRegister(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	created, err := repo.Register(ctx, &auth.User{
		Username:     "ann",
		DisplayName:  "Ann",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, auth.RoleUser, created.Role)
	assert.Nil(t, created.Token)
	assert.Nil(t, created.TokenExpiry)

	found, err := repo.GetByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "Ann", found.DisplayName)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", byID.Username)
}

func TestUsersRepositoryRegisterDuplicateUsername(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.Register(ctx, &auth.User{
		Username:     "ann",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)

	_, err = repo.Register(ctx, &auth.User{
		Username:     "ann",
		PasswordHash: "other",
	})
	require.Error(t, err)
	assert.True(t, auth.IsDuplicateUsernameError(err))
}

func TestUsersRepositoryGetNotFound(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	_, err := repo.GetByUsername(ctx, "nobody")
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestUsersRepositorySessionLifecycle(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	user, err := repo.Register(ctx, &auth.User{
		Username:     "ann",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)

	record, err := repo.GetSession(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, record.Token)
	assert.Nil(t, record.ExpiresAt)
	assert.False(t, record.Active())

	expiresAt := time.Now().Add(time.Hour).UTC()
	require.NoError(t, repo.SetSession(ctx, user.ID, "token-one", expiresAt))

	record, err = repo.GetSession(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, record.Token)
	assert.Equal(t, "token-one", *record.Token)
	require.NotNil(t, record.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *record.ExpiresAt, time.Second)
	assert.True(t, record.Active())

	// Second login overwrites the pair in place.
	require.NoError(t, repo.SetSession(ctx, user.ID, "token-two", expiresAt.Add(time.Hour)))

	record, err = repo.GetSession(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, record.Token)
	assert.Equal(t, "token-two", *record.Token)

	require.NoError(t, repo.ClearSession(ctx, user.ID))

	record, err = repo.GetSession(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, record.Token)
	assert.Nil(t, record.ExpiresAt)
}

func TestUsersRepositorySessionUnknownUser(t *testing.T) {
	repo, _, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	// Updates against a missing row match zero rows and report no error.
	assert.NoError(t, repo.SetSession(ctx, uuid.New(), "token", time.Now().Add(time.Hour)))
	assert.NoError(t, repo.ClearSession(ctx, uuid.New()))
}

func TestRepositoryManagerRunInTx(t *testing.T) {
	_, bunDB, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	manager := auth.NewRepositoryManager(bunDB)
	require.NoError(t, manager.Validate())

	err := manager.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := manager.Users().RegisterTx(ctx, tx, &auth.User{
			Username:     "ann",
			PasswordHash: "hashed",
		})
		if err != nil {
			return err
		}

		if err := manager.Users().SetSessionTx(ctx, tx, user.ID, "token", time.Now().Add(time.Hour)); err != nil {
			return err
		}

		_, err = manager.Users().GetByUsernameTx(ctx, tx, "ann")
		return err
	})
	require.NoError(t, err)

	record, err := manager.Users().GetSession(ctx, mustID(t, manager.Users(), "ann"))
	require.NoError(t, err)
	require.NotNil(t, record.Token)
	assert.Equal(t, "token", *record.Token)
}

func mustID(t *testing.T, repo auth.Users, username string) uuid.UUID {
	t.Helper()
	user, err := repo.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	return user.ID
}

func TestUsersRepositorySoftDelete(t *testing.T) {
	repo, bunDB, cleanup := setupUsersRepo(t)
	defer cleanup()

	ctx := context.Background()

	user, err := repo.Register(ctx, &auth.User{
		Username:     "ann",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)

	_, err = bunDB.NewDelete().Model(user).WherePK().Exec(ctx)
	require.NoError(t, err)

	_, err = repo.GetByUsername(ctx, "ann")
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	_, err = repo.GetByID(ctx, user.ID)
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))

	// Session writes against the deleted row are no-ops.
	assert.NoError(t, repo.SetSession(ctx, user.ID, "token", time.Now().Add(time.Hour)))
}
