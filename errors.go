package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidFormat     = "INVALID_CREDENTIALS_FORMAT"
	textCodeInvalidCredential = "INVALID_CREDENTIALS"
	textCodeTokenMissing      = "TOKEN_MISSING"
	textCodeTokenMalformed    = "TOKEN_MALFORMED"
	textCodeTokenExpired      = "TOKEN_EXPIRED"
	textCodeSessionMismatch   = "SESSION_MISMATCH"
	textCodeNotAuthorized     = "NOT_AUTHORIZED"
	textCodeIdentityNotFound  = "IDENTITY_NOT_FOUND"
	textCodeDuplicateUsername = "DUPLICATE_USERNAME"
)

// ErrInvalidCredentialsFormat is the single opaque error every payload
// validation failure collapses into; it stays deliberately field-agnostic.
var ErrInvalidCredentialsFormat = goerrors.New("invalid credentials format", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidFormat).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword covers both "user not found" and "wrong
// password" so callers cannot enumerate accounts.
var ErrMismatchedHashAndPassword = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredential).
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingToken is returned when no bearer token can be extracted.
var ErrMissingToken = goerrors.New("missing or malformed authorization header", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail signature or structural
// validation.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is distinct from ErrTokenMalformed so clients can offer a
// re-login flow instead of a generic failure.
var ErrTokenExpired = goerrors.New("session expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionMismatch is returned by strict verification when the presented
// token no longer matches the persisted session record (e.g. post-logout).
var ErrSessionMismatch = goerrors.New("session no longer valid", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionMismatch).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotAuthorized is returned by the admin gate. It maps to the same HTTP
// status as the credential errors on purpose; the text code keeps the cases
// distinguishable in logs.
var ErrNotAuthorized = goerrors.New("insufficient role", goerrors.CategoryAuthz).
	WithTextCode(textCodeNotAuthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(textCodeIdentityNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrDuplicateUsername is surfaced on username uniqueness violations;
// a duplicate create never silently overwrites the existing row.
var ErrDuplicateUsername = goerrors.New("username already taken", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateUsername).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput).
	WithTextCode("EMPTY_STRING").
	WithCode(goerrors.CodeBadRequest)

// hasTextCode walks the chain for the first rich error and compares its text
// code. Rich errors render a controlled public string, so matching on the
// rendered message would never fire; the text code is the stable handle.
func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	return goerrors.As(err, &richErr) && richErr.TextCode == code
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) || hasTextCode(err, textCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) || hasTextCode(err, textCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSessionMismatchError reports whether strict verification rejected the
// token against the persisted session record.
func IsSessionMismatchError(err error) bool {
	return err != nil && goerrors.Is(err, ErrSessionMismatch)
}

// IsDuplicateUsernameError reports whether a create failed on the username
// unique constraint.
func IsDuplicateUsernameError(err error) bool {
	return err != nil && goerrors.Is(err, ErrDuplicateUsername)
}
