package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// Auther orchestrates the sign-in pipeline: credential lookup, password
// comparison, token issuance, session persistence. It is safe for concurrent
// use; the only state it carries is read-only configuration.
type Auther struct {
	users     UserStore
	sessions  SessionStore
	passwords PasswordVerifier
	tokens    TokenService
	logger    Logger
}

// NewAuthenticator wires an Auther from config. Signing-key misconfiguration
// surfaces here, at startup, never per request.
func NewAuthenticator(users UserStore, sessions SessionStore, cfg Config) (*Auther, error) {
	tokens, err := NewTokenService(cfg, nil)
	if err != nil {
		return nil, err
	}

	return &Auther{
		users:     users,
		sessions:  sessions,
		passwords: NewPasswordVerifier(cfg),
		tokens:    tokens,
		logger:    defLogger{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithPasswordVerifier overrides the comparison strategy.
func (s *Auther) WithPasswordVerifier(verifier PasswordVerifier) *Auther {
	if verifier != nil {
		s.passwords = verifier
	}
	return s
}

// WithTokenService overrides the token service.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login verifies credentials, issues a token, and commits the session record.
// Unknown user and wrong password return the same error so accounts cannot be
// enumerated. The signed token is only returned once the session write
// committed; on persistence failure the string is discarded.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return "", ErrMismatchedHashAndPassword
		}
		s.logger.Error("Login user lookup error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := s.passwords.Compare(password, user.PasswordHash); err != nil {
		return "", ErrMismatchedHashAndPassword
	}

	token, claims, err := s.tokens.IssueToken(user)
	if err != nil {
		s.logger.Error("Login token issuance error", "error", err)
		return "", err
	}

	if err := s.sessions.SetSession(ctx, user.ID, token, claims.Expires()); err != nil {
		s.logger.Error("Login session persist error", "user_id", user.ID, "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist session")
	}

	return token, nil
}

// Logout clears the persisted session record. The caller is expected to have
// run strict verification on the presented token first.
func (s *Auther) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil {
		return ErrMissingToken
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return ErrTokenMalformed
	}

	if err := s.sessions.ClearSession(ctx, userID); err != nil {
		s.logger.Error("Logout session clear error", "user_id", userID, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session")
	}

	return nil
}

// CurrentUser re-reads the user row behind verified claims.
func (s *Auther) CurrentUser(ctx context.Context, claims *TokenClaims) (*User, error) {
	if claims == nil {
		return nil, ErrMissingToken
	}

	userID, err := claims.UserUUID()
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load user")
	}

	return user, nil
}

// CreateUser hashes the password and registers the account with null session
// fields. Username collisions surface as ErrDuplicateUsername.
func (s *Auther) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Username:     req.Username,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Role:         req.NormalizedRole(),
	}

	record, err := s.users.Register(ctx, user)
	if err != nil {
		if IsDuplicateUsernameError(err) {
			return nil, ErrDuplicateUsername
		}
		s.logger.Error("CreateUser register error", "username", req.Username, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}

	return record, nil
}

var _ Authenticator = (*Auther)(nil)
