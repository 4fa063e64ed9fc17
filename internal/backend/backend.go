// Package backend builds the persistence, messaging and export collaborators
// selected by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"fiscal/internal/amqp"
	"fiscal/internal/config"
	"fiscal/internal/log"
	"fiscal/internal/services"
	"fiscal/internal/sheets"
	"fiscal/internal/sheets/google"
	"fiscal/internal/sheets/memory"
	"fiscal/internal/storage"
)

// Type represents where the ledger snapshot is kept
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

func (t Type) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sheets google.Options
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	cfg := Config{
		Type:         Type(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		Sheets: google.Options{
			SpreadsheetID:   appConfig.GoogleSpreadsheetID,
			SheetName:       appConfig.GoogleSheetName,
			CredentialsJSON: appConfig.GoogleServiceAccountJSON,
			CredentialsFile: appConfig.GoogleServiceAccountFile,
		},
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %q", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return errors.New("SQLite database path is required for sqlite backend")
	}
	if c.AMQPURL != "" && c.Type != SQLiteBackend {
		return errors.New("AMQP events require the sqlite backend: the worker reads records from SQLite")
	}
	return nil
}

// Collaborators are the optional dependencies of the ledger service. Every
// field is nil for the memory backend.
type Collaborators struct {
	Repository *storage.SQLiteRepository
	Publisher  *amqp.Client
}

// Snapshot returns the repository as a services.Snapshot, or a nil interface.
func (c *Collaborators) Snapshot() services.Snapshot {
	if c.Repository == nil {
		return nil
	}
	return c.Repository
}

// EventPublisher returns the AMQP client as a services.Publisher, or a nil interface.
func (c *Collaborators) EventPublisher() services.Publisher {
	if c.Publisher == nil {
		return nil
	}
	return c.Publisher
}

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentStorage)}
}

// Collaborators opens the SQLite snapshot and, when configured, the AMQP
// publisher. An unreachable broker is logged and skipped.
func (f *Factory) Collaborators(ctx context.Context, cfg Config) (*Collaborators, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Type == MemoryBackend {
		f.logger.InfoContext(ctx, "Initialized memory backend")
		return &Collaborators{}, nil
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite repository: %w", err)
	}
	out := &Collaborators{Repository: repo}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			out.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath, "amqp_enabled", out.Publisher != nil)
	return out, nil
}

// Exporter returns the Google Sheets exporter, or the in-memory one when no
// spreadsheet is configured.
func (f *Factory) Exporter(ctx context.Context, cfg Config) (sheets.LedgerExporter, error) {
	if cfg.Sheets.SpreadsheetID == "" {
		f.logger.WarnContext(ctx, "No spreadsheet configured, exporting to memory")
		return memory.New(), nil
	}
	client, err := google.New(ctx, cfg.Sheets, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize Google Sheets client: %w", err)
	}
	return client, nil
}
