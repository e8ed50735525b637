// Package logging configures process-wide structured logging.
//
// Logs are produced by zap and exposed through log/slog, so packages only
// depend on the slog API. Setup must run once before serving traffic; later
// calls are no-ops.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var (
	setupOnce sync.Once
	flush     = func() error { return nil }
	setupErr  error
)

// Setup installs the default logger. production selects JSON output,
// otherwise a colored console encoder is used. The returned func flushes
// buffered entries and should be deferred by main.
func Setup(production bool, level string) (func() error, error) {
	setupOnce.Do(func() {
		var cfg zap.Config
		if production {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

		zapLogger, err := cfg.Build()
		if err != nil {
			setupErr = fmt.Errorf("build zap logger: %w", err)
			return
		}

		slog.SetDefault(slog.New(zapslog.NewHandler(zapLogger.Core())))
		flush = zapLogger.Sync
	})
	return flush, setupErr
}

// parseLevel converts a string log level to a zap level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// FromContext returns the default logger, tagged with chi's request ID when
// ctx carries one.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}
