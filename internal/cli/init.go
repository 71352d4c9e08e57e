// Package cli holds the start-up steps shared by cmd/gofinances and
// cmd/gofinances-worker.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gofinances/internal/config"
	"gofinances/internal/log"
)

// LoadEnvFile loads the .env file for local development. A missing file is
// not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default.
func SetupLogger(cfg *config.Config, component string, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and runs every validator,
// returning the first failure.
func LoadAndValidateConfig(validators ...func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown requested", "reason", context.Cause(ctx).Error())
	}()
	return ctx, stop
}
