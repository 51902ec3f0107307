package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	minUsernameLength       = 3
	minSignInPasswordLength = 3
	minCreatePasswordLength = 6
	maxFieldLength          = 128
)

// SignInRequest is the credential payload for POST /auth. The password is
// transient; it is never persisted or logged.
type SignInRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Validate runs the structural rules. Every failure collapses to
// ErrInvalidCredentialsFormat so the response never reveals which field was
// rejected.
func (r SignInRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(minUsernameLength, maxFieldLength),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(minSignInPasswordLength, maxFieldLength),
		),
	)
	if err != nil {
		return ErrInvalidCredentialsFormat
	}
	return nil
}

// CreateUserRequest is the admin-gated account creation payload.
type CreateUserRequest struct {
	Username    string `json:"username" form:"username"`
	Password    string `json:"password" form:"password"`
	DisplayName string `json:"display_name" form:"display_name"`
	Role        string `json:"role" form:"role"`
}

// Validate enforces the creation constraints: creation requires a stronger
// password than sign-in. Failures collapse to the same opaque format error.
func (r CreateUserRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(minUsernameLength, maxFieldLength),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(minCreatePasswordLength, maxFieldLength),
		),
		validation.Field(
			&r.DisplayName,
			validation.Length(0, maxFieldLength),
		),
		validation.Field(
			&r.Role,
			validation.In(RoleUser, RoleAdmin),
		),
	)
	if err != nil {
		return ErrInvalidCredentialsFormat
	}
	return nil
}

// NormalizedRole returns the requested role, defaulting to RoleUser.
func (r CreateUserRequest) NormalizedRole() UserRole {
	if role, ok := ParseRole(r.Role); ok {
		return role
	}
	return RoleUser
}
