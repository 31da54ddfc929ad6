package api

import (
	"context"

	"github.com/goliatone/go-router"

	auth "github.com/goliatone/go-petcare-auth"
)

// TokenIssuer is the token surface used by AuthController
type TokenIssuer interface {
	Authenticate(ctx context.Context, login, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
}

// AuthController serves the authenticate and refresh endpoints
type AuthController struct {
	tokens TokenIssuer
	logger auth.Logger
}

func NewAuthController(tokens TokenIssuer) *AuthController {
	return &AuthController{tokens: tokens, logger: auth.NoopLogger{}}
}

func (a *AuthController) WithLogger(logger auth.Logger) *AuthController {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// RegisterRoutes registers the auth routes, ie under /auth
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/authenticate", a.Authenticate)
	group.Post("/refresh", a.Refresh)
}

func (a *AuthController) Authenticate(ctx router.Context) error {
	payload := new(AuthenticateRequest)
	if err := ctx.Bind(payload); err != nil {
		return WriteError(ctx, a.logger, invalidPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.logger, invalidPayload(err))
	}

	pair, err := a.tokens.Authenticate(ctx.Context(), payload.Login, payload.Password)
	if err != nil {
		return WriteError(ctx, a.logger, err)
	}

	return ctx.JSON(router.StatusOK, ok(pair, "authenticated"))
}

func (a *AuthController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)
	if err := ctx.Bind(payload); err != nil {
		return WriteError(ctx, a.logger, invalidPayload(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(ctx, a.logger, invalidPayload(err))
	}

	pair, err := a.tokens.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return WriteError(ctx, a.logger, err)
	}

	return ctx.JSON(router.StatusOK, ok(pair, "token refreshed"))
}
