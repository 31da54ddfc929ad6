package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	TextCodeUniquenessViolation = "UNIQUENESS_VIOLATION"
	TextCodeTokenMissing        = "TOKEN_MISSING"
	TextCodeUnknownSubject      = "UNKNOWN_SUBJECT"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeBadRequest          = "BAD_REQUEST"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodeInternal            = "INTERNAL"
)

// ErrInvalidCredentials is returned for an unknown login or a password mismatch
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned by the hasher when the password does not match
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenInvalid covers malformed, expired, used, stale or unknown refresh tokens
var ErrTokenInvalid = goerrors.New("refresh token is invalid or expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeForbidden)

// ErrTokenMalformed is returned by the codec when signature or structure do not verify
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned by the codec when the signed expiry has passed
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMissing is returned when a request carries no bearer token
var ErrTokenMissing = goerrors.New("missing or malformed JWT", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnknownSubject is returned when a valid access token names a user
// that is deleted or does not exist
var ErrUnknownSubject = goerrors.New("token subject is not an active user", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnknownSubject).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when the caller lacks the required role
var ErrForbidden = goerrors.New("access denied", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password can not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// NewNotFoundError reports a missing active entity
func NewNotFoundError(resource string, id any) *goerrors.Error {
	return goerrors.New("resource not found", goerrors.CategoryNotFound).
		WithTextCode(TextCodeResourceNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{
			"resource": resource,
			"id":       id,
		})
}

// NewUniquenessError reports a value already taken by an active row
func NewUniquenessError(field, value string) *goerrors.Error {
	return goerrors.New("value already registered for an active user: "+field, goerrors.CategoryConflict).
		WithTextCode(TextCodeUniquenessViolation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field": field,
			"value": value,
		})
}

// NewBadRequestError reports a request rejected before touching storage
func NewBadRequestError(message string, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(TextCodeBadRequest).
		WithCode(goerrors.CodeBadRequest)
	if metadata != nil {
		err = err.WithMetadata(metadata)
	}
	return err
}

// ErrorKind returns the stable kind of err. Errors without a text code
// are reported as internal.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr.TextCode
	}
	return TextCodeInternal
}

// IsTokenInvalid reports whether err is a refresh rejection
func IsTokenInvalid(err error) bool {
	return ErrorKind(err) == TextCodeTokenInvalid
}

// IsInvalidCredentials reports whether err is a credential rejection
func IsInvalidCredentials(err error) bool {
	return ErrorKind(err) == TextCodeInvalidCreds
}

// IsNotFound reports whether err is a missing entity
func IsNotFound(err error) bool {
	return ErrorKind(err) == TextCodeResourceNotFound
}

// IsUniquenessViolation reports whether err is a duplicate active value
func IsUniquenessViolation(err error) bool {
	return ErrorKind(err) == TextCodeUniquenessViolation
}

// IsBadRequest reports whether err is a rejected request
func IsBadRequest(err error) bool {
	return ErrorKind(err) == TextCodeBadRequest
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if ErrorKind(err) == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for malformed tokens
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if ErrorKind(err) == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

// passthrough returns rich errors untouched and wraps everything else
// as an internal failure.
func passthrough(err error, message string) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}
