// Package cli provides common initialization for cmd/fiscal and
// cmd/fiscal-worker.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fiscal/internal/config"
	"fiscal/internal/log"
)

// LoadEnvFile loads .env files for local development. Without arguments it
// reads ./.env and ignores a missing file. Variables already set in the
// environment win.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	}
	return godotenv.Load(paths...)
}

// SetupLogger builds the process logger from configuration and installs it
// as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and runs validate on it.
// It exits the process on validation failure.
func LoadAndValidateConfig(component string, validate func(*config.Config) error) (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg, component)
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}
