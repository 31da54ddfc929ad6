package api

import (
	"errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	auth "github.com/goliatone/go-petcare-auth"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "nil", err: nil, status: http.StatusOK},
		{name: "plain error", err: errors.New("boom"), status: http.StatusInternalServerError},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, status: http.StatusBadRequest},
		{name: "token invalid", err: auth.ErrTokenInvalid, status: http.StatusForbidden},
		{name: "token missing", err: auth.ErrTokenMissing, status: http.StatusUnauthorized},
		{name: "token expired", err: auth.ErrTokenExpired, status: http.StatusUnauthorized},
		{name: "unknown subject", err: auth.ErrUnknownSubject, status: http.StatusUnauthorized},
		{name: "password too long", err: auth.ErrPasswordTooLong, status: http.StatusBadRequest},
		{name: "forbidden", err: auth.ErrForbidden, status: http.StatusForbidden},
		{name: "not found", err: auth.NewNotFoundError("user", "1"), status: http.StatusNotFound},
		{name: "uniqueness", err: auth.NewUniquenessError("login", "jdoe"), status: http.StatusBadRequest},
		{name: "bad request", err: auth.NewBadRequestError("bad", nil), status: http.StatusBadRequest},
		{
			name:   "category fallback",
			err:    goerrors.New("not yours", goerrors.CategoryAuthz),
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	t.Run("exposes rich errors", func(t *testing.T) {
		res := ErrorResponse(auth.NewUniquenessError("email", "jdoe@example.com"))
		assert.False(t, res.Success)
		if assert.NotNil(t, res.Error) {
			assert.Equal(t, auth.TextCodeUniquenessViolation, res.Error.Kind)
			assert.Equal(t, "email", res.Error.Metadata["field"])
		}
	})

	t.Run("hides internal details", func(t *testing.T) {
		res := ErrorResponse(errors.New("sql: connection refused at 10.0.0.3"))
		if assert.NotNil(t, res.Error) {
			assert.Equal(t, auth.TextCodeInternal, res.Error.Kind)
			assert.NotContains(t, res.Error.Message, "10.0.0.3")
			assert.Nil(t, res.Error.Metadata)
		}
	})
}
