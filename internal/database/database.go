package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"chocoapi/internal/config"
)

// Connect opens a connection pool to cfg's database, retrying up to
// cfg.MaxRetries times before giving up.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	return ConnectDSN(ctx, cfg.DSN(), cfg)
}

// ConnectDSN is Connect with an explicit connection string. Pool settings and
// retry policy still come from cfg.
func ConnectDSN(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying db connection", "attempt", attempt, "max_retries", cfg.MaxRetries, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("failed to connect to database: %w", ctx.Err())
			case <-time.After(cfg.RetryBackoff):
			}
		}

		db, err := connectOnce(ctx, dsn, cfg)
		if err == nil {
			slog.Info("connected to database", "host", cfg.Host, "database", cfg.DatabaseName)
			return db, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to connect to database after %d retries: %w", cfg.MaxRetries, lastErr)
}

func connectOnce(ctx context.Context, dsn string, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AcquireTimeout)
		defer cancel()
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Postgres allows 100 connections by default minus the superuser
	// reservation; keep the pool below that so manual access still works.
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	return db, nil
}
