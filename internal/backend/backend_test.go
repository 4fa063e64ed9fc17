package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiscal/internal/config"
	"fiscal/internal/log"
	"fiscal/internal/sheets/google"
	"fiscal/internal/sheets/memory"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "sheets"}, true},
		{"amqp on memory", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	app := &config.Config{
		DataBackend:              "sqlite",
		SQLiteDBPath:             "/tmp/fiscal.db",
		GoogleSpreadsheetID:      "sheet",
		GoogleSheetName:          "Ledger",
		GoogleServiceAccountFile: "/secrets/sa.json",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "sheet", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "/secrets/sa.json", cfg.Sheets.CredentialsFile)
}

func TestFactoryMemory(t *testing.T) {
	f := NewFactory(log.Discard())
	c, err := f.Collaborators(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.Nil(t, c.Snapshot(), "memory backend must yield a nil interface")
	assert.Nil(t, c.EventPublisher())
}

func TestFactorySQLite(t *testing.T) {
	f := NewFactory(log.Discard())
	c, err := f.Collaborators(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fiscal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { c.Repository.Close() })

	assert.NotNil(t, c.Snapshot())
	assert.Nil(t, c.EventPublisher())
	require.NoError(t, c.Repository.Ping(context.Background()))
}

func TestFactoryExporterFallsBackToMemory(t *testing.T) {
	f := NewFactory(log.Discard())
	exp, err := f.Exporter(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Exporter{}, exp)

	_, err = f.Exporter(context.Background(), Config{Sheets: google.Options{SpreadsheetID: "sheet"}})
	assert.Error(t, err, "spreadsheet without credentials")
}
