package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	auth "github.com/goliatone/go-petcare-auth"
)

// EntityOperations is the lifecycle surface served by EntityController
type EntityOperations[D any] interface {
	FindAll(ctx context.Context, req auth.PageRequest) (*auth.Page[D], error)
	FindByID(ctx context.Context, id uuid.UUID) (D, error)
	Create(ctx context.Context, dto D) (D, error)
	Update(ctx context.Context, id uuid.UUID, dto D) (D, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// EntityController exposes CRUD routes for one entity
type EntityController[D any] struct {
	service        EntityOperations[D]
	validateCreate func(D) error
	validateUpdate func(D) error
	logger         auth.Logger
}

func NewEntityController[D any](service EntityOperations[D]) *EntityController[D] {
	return &EntityController[D]{
		service: service,
		logger:  auth.NoopLogger{},
	}
}

// WithValidation sets payload rules for create and update
func (c *EntityController[D]) WithValidation(create, update func(D) error) *EntityController[D] {
	c.validateCreate = create
	c.validateUpdate = update
	return c
}

func (c *EntityController[D]) WithLogger(logger auth.Logger) *EntityController[D] {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes registers the CRUD routes relative to group
func (c *EntityController[D]) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	c.RegisterCollectionRoutes(group, mw...)
	c.RegisterItemRoutes(group, mw...)
}

// RegisterCollectionRoutes registers list and create on the group root
func (c *EntityController[D]) RegisterCollectionRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("", c.List, mw...)
	group.Post("", c.Create, mw...)
}

// RegisterItemRoutes registers the /:id routes
func (c *EntityController[D]) RegisterItemRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/:id", c.Get, mw...)
	group.Put("/:id", c.Update, mw...)
	group.Delete("/:id", c.Delete, mw...)
}

func (c *EntityController[D]) List(ctx router.Context) error {
	req := auth.PageRequest{
		Page: queryInt(ctx, "page", 0),
		Size: queryInt(ctx, "size", auth.DefaultPageSize),
	}

	page, err := c.service.FindAll(ctx.Context(), req)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(page, ""))
}

func (c *EntityController[D]) Get(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	record, err := c.service.FindByID(ctx.Context(), id)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(record, ""))
}

func (c *EntityController[D]) Create(ctx router.Context) error {
	payload, err := c.bind(ctx, c.validateCreate)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	record, err := c.service.Create(ctx.Context(), payload)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(http.StatusCreated, ok(record, "created"))
}

func (c *EntityController[D]) Update(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	payload, err := c.bind(ctx, c.validateUpdate)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	record, err := c.service.Update(ctx.Context(), id, payload)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(record, "updated"))
}

func (c *EntityController[D]) Delete(ctx router.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return WriteError(ctx, c.logger, err)
	}

	if err := c.service.DeleteByID(ctx.Context(), id); err != nil {
		return WriteError(ctx, c.logger, err)
	}
	return ctx.JSON(router.StatusOK, ok(nil, "deleted"))
}

func (c *EntityController[D]) bind(ctx router.Context, validate func(D) error) (D, error) {
	var payload D
	if err := ctx.Bind(&payload); err != nil {
		return payload, invalidPayload(err)
	}

	if validate != nil {
		if err := validate(payload); err != nil {
			return payload, invalidPayload(err)
		}
	}
	return payload, nil
}

func pathID(ctx router.Context) (uuid.UUID, error) {
	raw := ctx.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, auth.NewBadRequestError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func queryInt(ctx router.Context, name string, def int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
