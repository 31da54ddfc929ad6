package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultPasswordCost is the bcrypt cost used when none is configured
	DefaultPasswordCost = 12
	// MaxPasswordLength is the longest password bcrypt accepts, in bytes
	MaxPasswordLength = 72
)

// ErrPasswordTooLong is returned when a password exceeds MaxPasswordLength
var ErrPasswordTooLong = goerrors.New("password can not be longer than 72 bytes", goerrors.CategoryBadInput).
	WithTextCode(TextCodeBadRequest).
	WithCode(goerrors.CodeBadRequest).
	WithMetadata(map[string]any{"field": "password"})

// BcryptHasher implements PasswordHasher with bcrypt
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = BcryptHasher{}

// NewBcryptHasher returns a hasher using cost, clamped to the bcrypt range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return BcryptHasher{cost: cost}
}

// HashPassword will generate a password hash
func (h BcryptHasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	cost := h.cost
	if cost == 0 {
		cost = passwordHashCost()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "unable to hash password").
			WithTextCode(TextCodeInternal).
			WithCode(goerrors.CodeInternal)
	}
	return string(hash), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func (h BcryptHasher) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

// HashPassword hashes with the default cost
func HashPassword(password string) (string, error) {
	return BcryptHasher{}.HashPassword(password)
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
