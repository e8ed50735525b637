package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"chocoapi/internal/config"
	"chocoapi/internal/database"
	"chocoapi/internal/handler"
	"chocoapi/internal/logging"
	"chocoapi/internal/metrics"
	"chocoapi/internal/queue"
	"chocoapi/internal/redis"
	"chocoapi/internal/repository"
	"chocoapi/internal/service"
	"chocoapi/internal/storage"
	"chocoapi/internal/transport/http/middleware"
)

// Application is a wired API server bound to its listener.
type Application struct {
	cfg      *config.Config
	db       *sqlx.DB
	redis    *redis.Client
	server   *stdhttp.Server
	listener net.Listener
}

// NewApplication connects to the database (running pending migrations),
// wires every collaborator and binds the listener. Port 0 picks a free port;
// see Addr.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return NewApplicationWithDB(ctx, cfg, db)
}

// NewApplicationWithDB is NewApplication on an existing pool. The
// Application takes ownership of db.
func NewApplicationWithDB(ctx context.Context, cfg *config.Config, db *sqlx.DB) (_ *Application, err error) {
	app := &Application{cfg: cfg, db: db}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	app.redis, err = redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	var limiter *middleware.RateLimiter
	if app.redis != nil {
		publisher = queue.NewPublisher(app.redis.Client, cfg.Redis.StreamMaxLen)
		if cfg.RateLimit.Requests > 0 {
			limiter = middleware.NewRateLimiter(app.redis.Client, "ratelimit:register", cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
	}

	m := metrics.New()

	emailService := service.NewEmailService(repository.NewEmailRepository(db))
	imageService := service.NewImageService(repository.NewImageRepository(db), store, cfg.Register.MaxImageBytes)
	userService := service.NewUserService(repository.NewUserRepository(db), publisher)

	router := NewRouter(RouterConfig{
		RegisterHandler: handler.NewRegisterHandler(emailService, imageService, userService, cfg.Register.MaxBodyBytes, m),
		RateLimiter:     limiter,
		Metrics:         m,
	})

	app.listener, err = net.Listen("tcp", cfg.Application.Address())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Application.Address(), err)
	}

	app.server = &stdhttp.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return app, nil
}

// Addr is the address the server listens on.
func (a *Application) Addr() string {
	return a.listener.Addr().String()
}

// Run serves until ctx is cancelled, then shuts down gracefully and releases
// every resource.
func (a *Application) Run(ctx context.Context) error {
	defer a.Close()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.Addr(), "environment", a.cfg.Environment)
		errCh <- a.server.Serve(a.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Application.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Close releases the listener, database pool and Redis client. Run calls it
// on return.
func (a *Application) Close() error {
	var errs []error
	if a.listener != nil {
		// already closed when the server shut down
		if err := a.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
		a.redis = nil
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	return errors.Join(errs...)
}

// Run loads configuration, sets up logging and serves until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flush, err := logging.Setup(cfg.IsProduction(), cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
