package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-petcare-auth"
	"github.com/goliatone/go-petcare-auth/api"
	"github.com/goliatone/go-petcare-auth/config"
	"github.com/goliatone/go-petcare-auth/metrics"
)

type App struct {
	config  *config.BaseConfig
	db      *bun.DB
	repo    auth.RepositoryManager
	tokens  *auth.TokenManager
	users   *auth.UserService
	sched   *auth.SchedulingService
	srv     router.Server[*fiber.App]
	metrics *metrics.Server
	logger  *auth.ZapLogger
}

func (a *App) GetLogger(name string) auth.Logger {
	return a.logger.Named(name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: auth.NewZapLogger(auth.BuildZapLogger(cfg.Env, cfg.LogLevel, "petcare")),
	}
	defer app.logger.Sync()

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	sink := WithMetrics(app)

	if err := WithServices(app, sink); err != nil {
		panic(err)
	}

	WithHTTPServer(app)

	app.srv.Serve(cfg.HTTPAddr)
	app.logger.Info("petcare listening", "addr", cfg.HTTPAddr)

	sig := WaitExitSignal()
	app.logger.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := app.metrics.Stop(shutdownCtx); err != nil {
		app.logger.Error("metrics shutdown error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("database close error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.config.DSN)
	if err != nil {
		return err
	}
	// sqlite serializes writers, a single connection avoids SQLITE_BUSY
	sqldb.SetMaxOpenConns(1)

	app.db = bun.NewDB(sqldb, sqlitedialect.New())

	if err := auth.CreateSchema(ctx, app.db); err != nil {
		return err
	}

	app.repo = auth.NewRepositoryManager(app.db)
	app.repo.MustValidate()
	return nil
}

func WithMetrics(app *App) auth.ActivitySink {
	reg := metrics.NewRegistry()
	sink := metrics.NewSink(reg)

	app.metrics = metrics.NewServer(app.config.MetricsAddr, reg, app.GetLogger("metrics"))
	addr, err := app.metrics.Start()
	if err != nil {
		app.logger.Warn("metrics server disabled", "error", err)
		return sink
	}

	app.logger.Info("metrics listening", "addr", addr)
	return sink
}

func WithServices(app *App, sink auth.ActivitySink) error {
	authCfg := app.config.Auth

	codec, err := auth.NewTokenCodecFromConfig(authCfg)
	if err != nil {
		return err
	}
	codec.WithLogger(app.GetLogger("codec"))

	hasher := auth.NewBcryptHasher(authCfg.GetPasswordCost())

	app.tokens = auth.NewTokenManager(app.repo, codec).
		WithHasher(hasher).
		WithRefreshWindow(authCfg.GetRefreshWindow()).
		WithLogger(app.GetLogger("tokens")).
		WithActivitySink(sink)

	app.users = auth.NewUserService(app.repo, hasher).
		WithLogger(app.GetLogger("users")).
		WithActivitySink(sink)

	app.sched = auth.NewSchedulingService(app.repo).
		WithLogger(app.GetLogger("schedulings")).
		WithActivitySink(sink)

	return nil
}

func WithHTTPServer(app *App) {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: !app.config.IsProduction(),
			StrictRouting:     false,
		}))
	})

	v1 := srv.Router().Group("/v1")
	protected := api.RequireAccessToken(app.tokens, api.GuardConfig{
		Logger: app.GetLogger("guard"),
	})

	api.NewAuthController(app.tokens).
		WithLogger(app.GetLogger("auth:ctrl")).
		RegisterRoutes(v1.Group("/auth"))

	api.NewUserController(app.users).
		WithLogger(app.GetLogger("users:ctrl")).
		RegisterRoutes(v1.Group("/users"), protected)

	api.NewEntityController[auth.SchedulingDTO](app.sched).
		WithValidation(api.ValidateScheduling, api.ValidateScheduling).
		WithLogger(app.GetLogger("schedulings:ctrl")).
		RegisterRoutes(v1.Group("/scheduling"), protected)

	app.srv = srv
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
