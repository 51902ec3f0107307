package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the bun-backed user repository. It implements UserStore and
// SessionStore; the session mutations are single raw UPDATEs with
// last-write-wins semantics and no optimistic locking. The uuid-keyed
// lookups deliberately shadow the string-keyed ones on the embedded
// generic repository, so the interface declares the domain surface only.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	SetSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	SetSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string, expiresAt time.Time) error
	ClearSession(ctx context.Context, userID uuid.UUID) error
	ClearSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	GetSession(ctx context.Context, userID uuid.UUID) (SessionRecord, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users        = (*users)(nil)
	_ UserStore    = (*users)(nil)
	_ SessionStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "username"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	return a.GetByUsernameTx(ctx, a.db, username)
}

func (a *users) GetByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, newRecordNotFound(map[string]any{"username": username})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, newRecordNotFound(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}

	return record, nil
}

var setSessionSQL = `
	UPDATE "users" AS "usr"
	SET
		"token" = ?,
		"token_expiry" = ?
	WHERE
		("usr".id = ?)
		AND "usr"."deleted_at" IS NULL;
`

var clearSessionSQL = `
	UPDATE "users" AS "usr"
	SET
		"token" = NULL,
		"token_expiry" = NULL
	WHERE
		("usr".id = ?)
		AND "usr"."deleted_at" IS NULL;
`

func (a *users) SetSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	return a.SetSessionTx(ctx, a.db, userID, token, expiresAt)
}

func (a *users) SetSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string, expiresAt time.Time) error {
	// NOTE: a targeted raw UPDATE keeps the overwrite a single statement so
	// concurrent login/logout can only interleave whole writes.
	_, err := tx.NewRaw(setSessionSQL, token, expiresAt, userID).Exec(ctx)
	return err
}

func (a *users) ClearSession(ctx context.Context, userID uuid.UUID) error {
	return a.ClearSessionTx(ctx, a.db, userID)
}

func (a *users) ClearSessionTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewRaw(clearSessionSQL, userID).Exec(ctx)
	return err
}

func (a *users) GetSession(ctx context.Context, userID uuid.UUID) (SessionRecord, error) {
	user, err := a.GetByID(ctx, userID)
	if err != nil {
		return SessionRecord{}, err
	}
	return user.Session(), nil
}

// newRecordNotFound builds a category-matched not-found error; callers detect
// it with goerrors.IsNotFound.
func newRecordNotFound(meta map[string]any) error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithTextCode(textCodeIdentityNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(meta)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// isUniqueViolation sniffs driver error text since bun does not normalize
// constraint errors across dialects.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}
