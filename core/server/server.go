package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"quorum-booking/core/cache"
	"quorum-booking/core/config"
	"quorum-booking/core/constants"
	"quorum-booking/core/database"
	"quorum-booking/core/logger"
	"quorum-booking/core/middleware"
	"quorum-booking/core/queue"
	"quorum-booking/modules/booking"
	"quorum-booking/modules/booking/repository"
	"quorum-booking/modules/catalog"
	"quorum-booking/modules/directory"
	"quorum-booking/modules/invitation"
	"quorum-booking/modules/notification"
	notificationService "quorum-booking/modules/notification/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
)

// Dependencies are the collaborators shared by every module. Cache may be nil.
type Dependencies struct {
	Store      repository.ConsensusStore
	Cache      cache.Cache
	Dispatcher notificationService.Dispatcher
}

// NewEcho builds the HTTP surface over deps.
func NewEcho(cfg *config.Config, deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	mw := middleware.NewMiddleware()
	e.Use(echoMiddleware.Recover(), mw.RequestID(), mw.RequestLogger())

	e.GET("/health", healthHandler(deps))

	v1 := e.Group("/api/v1")
	catalogSvc, err := catalog.Init(v1, cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	directorySvc := directory.Init(v1, cfg.Directory, deps.Cache)
	if err := directorySvc.Seed(context.Background()); err != nil {
		logger.Warn("Server:NewEcho:SeedDirectory", "error", err)
	}

	booking.Init(v1, mw, deps.Store, catalogSvc, directorySvc, deps.Dispatcher)
	invitation.Init(v1, mw, deps.Store, directorySvc, deps.Dispatcher)

	return e, nil
}

func healthHandler(deps Dependencies) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		status := map[string]string{"store": "ok"}
		code := http.StatusOK

		if _, err := deps.Store.CountBookings(ctx); err != nil {
			status["store"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if deps.Cache != nil {
			status["cache"] = "ok"
			if err := deps.Cache.Ping(ctx); err != nil {
				status["cache"] = "unavailable"
			}
		}
		return c.JSON(code, status)
	}
}

// App owns the process-wide resources opened from config.
type App struct {
	cfg     *config.Config
	deps    Dependencies
	queue   *asynq.Client
	closers []func() error
}

// Open connects the configured store, cache and queue.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg}

	switch cfg.Store.Driver {
	case constants.StoreDriverPostgres:
		db, err := database.InitDB(databaseConfig(cfg))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)

		store := repository.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			app.Close()
			return nil, err
		}
		app.deps.Store = store
	default:
		app.deps.Store = repository.NewMemoryStore()
	}

	if cfg.Redis.Enabled {
		c := cache.NewRedisCache(redisConfig(cfg))
		if err := c.Ping(ctx); err != nil {
			logger.Warn("Server:Open:RedisPing", "addr", cfg.Redis.Addr, "error", err)
		}
		app.deps.Cache = c
		app.closers = append(app.closers, c.Close)
	}

	if cfg.Queue.Enabled {
		app.queue = queue.NewClient(redisConfig(cfg))
		app.closers = append(app.closers, app.queue.Close)
	}
	app.deps.Dispatcher = notification.Init(app.queue)

	logger.Info("Server:Open", "store", cfg.Store.Driver, "redis", cfg.Redis.Enabled, "queue", cfg.Queue.Enabled)
	return app, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Server:Close", "error", err)
		}
	}
	a.closers = nil
}

// Migrate applies the PostgreSQL schema. It is a no-op for the memory store.
func (a *App) Migrate(ctx context.Context) error {
	if pg, ok := a.deps.Store.(*repository.PostgresStore); ok {
		return pg.Migrate(ctx)
	}
	logger.Info("Server:Migrate:Skipped", "store", a.cfg.Store.Driver)
	return nil
}

// Serve runs the HTTP server, and the notice worker when embedded, until ctx
// is cancelled or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	e, err := NewEcho(a.cfg, a.deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	g.Go(func() error {
		logger.Info("Server:Serve:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		logger.Info("Server:Serve:ShuttingDown")
		return e.Shutdown(shutdownCtx)
	})

	if a.cfg.Queue.Enabled && a.cfg.Queue.EmbedWorker {
		g.Go(func() error {
			return a.runWorker(ctx)
		})
	}

	return g.Wait()
}

// Work runs only the notice worker until ctx is cancelled.
func (a *App) Work(ctx context.Context) error {
	if !a.cfg.Queue.Enabled {
		return fmt.Errorf("queue is disabled; set queue.enabled and redis.enabled")
	}
	return a.runWorker(ctx)
}

func (a *App) runWorker(ctx context.Context) error {
	srv := queue.NewServer(redisConfig(a.cfg), a.cfg.Queue.Concurrency)
	if err := srv.Start(notification.NewWorkerMux()); err != nil {
		return fmt.Errorf("notice worker: %w", err)
	}
	logger.Info("Server:Worker:Started", "concurrency", a.cfg.Queue.Concurrency)

	<-ctx.Done()
	srv.Shutdown()
	logger.Info("Server:Worker:Stopped")
	return nil
}

func databaseConfig(cfg *config.Config) database.DatabaseConfig {
	d := cfg.Database
	return database.DatabaseConfig{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		DBName:          d.DBName,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}

func redisConfig(cfg *config.Config) cache.RedisConfig {
	return cache.RedisConfig{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
}
