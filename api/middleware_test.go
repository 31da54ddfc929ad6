package api

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-petcare-auth"
)

type stubVerifier struct {
	claims *auth.AccessClaims
	err    error
	seen   string
}

func (s *stubVerifier) VerifyAccessToken(_ context.Context, token string) (*auth.AccessClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func guardContext(header string) *router.MockContext {
	ctx := router.NewMockContext()
	if header != "" {
		ctx.HeadersM[router.HeaderAuthorization] = header
	}
	ctx.On("Header", router.HeaderAuthorization).Return(header)
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil)
	return ctx
}

func TestRequireAccessTokenPassesValidToken(t *testing.T) {
	claims := &auth.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "jdoe"},
		Role:             auth.RoleAdmin.Authority(),
	}
	verifier := &stubVerifier{claims: claims}

	ctx := guardContext("Bearer good-token")

	called := false
	handler := RequireAccessToken(verifier)(func(c router.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.True(t, called)
	assert.Equal(t, "good-token", verifier.seen)
}

func TestRequireAccessTokenRejections(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifier *stubVerifier
		roles    []auth.Role
		status   int
	}{
		{
			name:     "missing header",
			header:   "",
			verifier: &stubVerifier{},
			status:   router.StatusUnauthorized,
		},
		{
			name:     "wrong scheme",
			header:   "Basic abc",
			verifier: &stubVerifier{},
			status:   router.StatusUnauthorized,
		},
		{
			name:     "expired token",
			header:   "Bearer expired",
			verifier: &stubVerifier{err: auth.ErrTokenExpired},
			status:   router.StatusUnauthorized,
		},
		{
			name:   "missing role",
			header: "Bearer good",
			verifier: &stubVerifier{claims: &auth.AccessClaims{
				Role: auth.RoleUser.Authority(),
			}},
			roles:  []auth.Role{auth.RoleAdmin},
			status: router.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := guardContext(tt.header)

			var body Response
			ctx.On("JSON", tt.status, mock.Anything).Run(func(args mock.Arguments) {
				body = args.Get(1).(Response)
			}).Return(nil)

			called := false
			handler := RequireAccessToken(tt.verifier, GuardConfig{RequiredRoles: tt.roles})(func(c router.Context) error {
				called = true
				return nil
			})

			require.NoError(t, handler(ctx))
			assert.False(t, called)
			assert.False(t, body.Success)
			ctx.AssertCalled(t, "JSON", tt.status, mock.Anything)
		})
	}
}

func TestTokenFromHeader(t *testing.T) {
	token, err := tokenFromHeader("bearer abc.def", "Bearer")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = tokenFromHeader("Bearer ", "Bearer")
	assert.Equal(t, auth.ErrTokenMissing, err)

	_, err = tokenFromHeader("", "Bearer")
	assert.Equal(t, auth.ErrTokenMissing, err)
}
