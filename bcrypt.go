package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// NewPasswordVerifier selects the comparison strategy from config. Plaintext
// is only returned when the config asks for it explicitly; there is no
// implicit environment sniffing.
func NewPasswordVerifier(cfg Config) PasswordVerifier {
	if cfg != nil && cfg.GetPasswordMode() == PasswordModePlaintext {
		return plaintextVerifier{}
	}
	return bcryptVerifier{cost: passwordHashCost()}
}

type bcryptVerifier struct {
	cost int
}

func (v bcryptVerifier) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	cost := v.cost
	if cost == 0 {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

func (v bcryptVerifier) Compare(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

// plaintextVerifier compares raw strings in constant time. It exists for
// test/dev configurations where fixtures carry unhashed passwords.
type plaintextVerifier struct{}

func (v plaintextVerifier) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	return password, nil
}

func (v plaintextVerifier) Compare(password, hash string) error {
	if subtle.ConstantTimeCompare([]byte(password), []byte(hash)) != 1 {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

var (
	_ PasswordVerifier = bcryptVerifier{}
	_ PasswordVerifier = plaintextVerifier{}
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
