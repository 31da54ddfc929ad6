package api

import (
	"github.com/goliatone/go-router"

	auth "github.com/goliatone/go-petcare-auth"
)

// UserController adds the user specific reads to the CRUD routes
type UserController struct {
	*EntityController[auth.UserDTO]
	users *auth.UserService
}

func NewUserController(users *auth.UserService) *UserController {
	return &UserController{
		EntityController: NewEntityController[auth.UserDTO](users).
			WithValidation(ValidateUser(true), ValidateUser(false)),
		users: users,
	}
}

func (c *UserController) WithLogger(logger auth.Logger) *UserController {
	c.EntityController.WithLogger(logger)
	return c
}

// RegisterRoutes registers user routes, ie under /v1/users. The collection
// root stays public so accounts can sign up, mw guards everything else.
// Static paths go first so they are not captured by /:id.
func (c *UserController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	c.EntityController.RegisterCollectionRoutes(group)
	group.Get("/roles", c.Roles, mw...)
	group.Get("/check-email", c.ExistsByEmail, mw...)
	group.Get("/login/:login", c.FindByLogin, mw...)
	group.Get("/details/:id", c.Details, mw...)
	c.EntityController.RegisterItemRoutes(group, mw...)
}

func (c *UserController) Roles(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, ok(c.users.Roles(), ""))
}

func (c *UserController) ExistsByEmail(ctx router.Context) error {
	found, err := c.users.ExistsByEmail(ctx.Context(), ctx.Query("email"))
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(map[string]bool{"exists": found}, ""))
}

func (c *UserController) FindByLogin(ctx router.Context) error {
	user, err := c.users.FindByLogin(ctx.Context(), ctx.Param("login"))
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(user, ""))
}

func (c *UserController) Details(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	details, err := c.users.Details(ctx.Context(), id)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(details, ""))
}
