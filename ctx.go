package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the User in the given context
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// WithClaimsContext sets the AccessClaims in the given context
func WithClaimsContext(r context.Context, claims *AccessClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the AccessClaims from the standard context
func ClaimsFromContext(ctx context.Context) (*AccessClaims, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(claimsCtxKey).(*AccessClaims)
	return raw, ok
}

// RouterClaims extracts the AccessClaims stored in the router locals
func RouterClaims(ctx router.Context, key string) (*AccessClaims, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(*AccessClaims)
	return claims, ok
}
