package api

import (
	"context"
	"strings"

	"github.com/goliatone/go-router"

	auth "github.com/goliatone/go-petcare-auth"
)

const defaultAuthScheme = "Bearer"

// AccessVerifier validates access tokens
type AccessVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*auth.AccessClaims, error)
}

// GuardConfig configures RequireAccessToken
type GuardConfig struct {
	// Header holding the token (default: Authorization)
	Header string
	// AuthScheme prefix of the header value (default: Bearer)
	AuthScheme string
	// ContextKey is the router locals key for the claims (default: user)
	ContextKey string
	// RequiredRoles, when set, the claims must carry one of them
	RequiredRoles []auth.Role
	Logger        auth.Logger
}

func (cfg GuardConfig) withDefaults() GuardConfig {
	if cfg.Header == "" {
		cfg.Header = router.HeaderAuthorization
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.Logger == nil {
		cfg.Logger = auth.NoopLogger{}
	}
	return cfg
}

// RequireAccessToken rejects requests without a valid access token. The
// claims are stored in the router locals and in the request context so
// services can attribute the actor.
func RequireAccessToken(verifier AccessVerifier, config ...GuardConfig) router.MiddlewareFunc {
	cfg := GuardConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	cfg = cfg.withDefaults()

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw, err := tokenFromHeader(ctx.Header(cfg.Header), cfg.AuthScheme)
			if err != nil {
				return WriteError(ctx, cfg.Logger, err)
			}

			claims, err := verifier.VerifyAccessToken(ctx.Context(), raw)
			if err != nil {
				return WriteError(ctx, cfg.Logger, err)
			}

			if !hasAnyRole(claims, cfg.RequiredRoles) {
				return WriteError(ctx, cfg.Logger, auth.ErrForbidden)
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(auth.WithClaimsContext(ctx.Context(), claims))

			return next(ctx)
		}
	}
}

func tokenFromHeader(value, scheme string) (string, error) {
	l := len(scheme)
	if len(value) > l+1 && strings.EqualFold(value[:l], scheme) {
		if token := strings.TrimSpace(value[l:]); token != "" {
			return token, nil
		}
	}
	return "", auth.ErrTokenMissing
}

func hasAnyRole(claims *auth.AccessClaims, roles []auth.Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return true
		}
	}
	return false
}
