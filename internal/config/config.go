package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"fiscal/internal/analytics"
	"fiscal/internal/core"
	"fiscal/internal/projection"
	"fiscal/internal/report"
)

type Config struct {
	// HTTP Server
	Port         string
	RateLimitRPM int

	// Backend selection
	DataBackend  string
	SQLiteDBPath string
	SeedFile     string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncBatchSize int
	SyncInterval  time.Duration

	// Analytics
	SavingsGoal        core.Money
	TrendWindow        int
	RecentLimit        int
	Palette            []string
	RecencyWeight      float64
	ConfidenceScale    core.Money
	UpcomingBillsLimit int

	// Dashboard cache
	CacheTTL  time.Duration
	CacheSize int

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		RateLimitRPM: getEnvInt("RATE_LIMIT_RPM", 120),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fiscal.db"),
		SeedFile:     getEnv("SEED_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fiscal"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		SyncBatchSize: getEnvInt("SYNC_BATCH_SIZE", 10),
		SyncInterval:  getEnvDuration("SYNC_INTERVAL", 30*time.Second),

		SavingsGoal:        getEnvMoney("SAVINGS_GOAL", core.FromUnits(50000)),
		TrendWindow:        getEnvInt("TREND_WINDOW", 6),
		RecentLimit:        getEnvInt("RECENT_LIMIT", 5),
		Palette:            getEnvList("PALETTE", analytics.DefaultPalette),
		RecencyWeight:      getEnvFloat("RECENCY_WEIGHT", projection.DefaultRecencyWeight),
		ConfidenceScale:    getEnvMoney("CONFIDENCE_SCALE", projection.DefaultDispersionScale),
		UpcomingBillsLimit: getEnvInt("UPCOMING_BILLS_LIMIT", 3),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 256),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.SeedFile != "" {
		if _, err := os.Stat(c.SeedFile); err != nil {
			errors = append(errors, fmt.Sprintf("seed file is not readable: %s", c.SeedFile))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SyncBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at least 1", c.SyncBatchSize))
	} else if c.SyncBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid sync batch size %d: must be at most 1000", c.SyncBatchSize))
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.SavingsGoal.Cents < 0 {
		errors = append(errors, "savings goal cannot be negative")
	}
	if c.TrendWindow < 1 || c.TrendWindow > 60 {
		errors = append(errors, fmt.Sprintf("invalid trend window %d: must be between 1 and 60", c.TrendWindow))
	}
	if c.RecentLimit < 0 || c.RecentLimit > 100 {
		errors = append(errors, fmt.Sprintf("invalid recent limit %d: must be between 0 and 100", c.RecentLimit))
	}
	if len(c.Palette) == 0 {
		errors = append(errors, "palette must contain at least one colour")
	}
	for _, colour := range c.Palette {
		if !hexColor.MatchString(colour) {
			errors = append(errors, fmt.Sprintf("invalid palette colour '%s': must be #rgb or #rrggbb", colour))
		}
	}
	if c.ConfidenceScale.Cents <= 0 {
		errors = append(errors, fmt.Sprintf("invalid confidence scale %s: must be positive", c.ConfidenceScale))
	}
	if c.RecencyWeight < 0 || c.RecencyWeight > 1 {
		errors = append(errors, fmt.Sprintf("invalid recency weight %v: must be between 0 and 1", c.RecencyWeight))
	}
	if c.UpcomingBillsLimit < 0 {
		errors = append(errors, fmt.Sprintf("invalid upcoming bills limit %d: must not be negative", c.UpcomingBillsLimit))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}
	if c.RateLimitRPM < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitRPM))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateWorker checks the settings the export worker cannot run without,
// on top of Validate.
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required by the export worker")
	}
	if c.DataBackend != "sqlite" {
		errors = append(errors, "the export worker reads transactions from SQLite: set DATA_BACKEND=sqlite")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errors = append(errors, "GOOGLE_SHEET_NAME cannot be empty")
	}
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ReportOptions turns the analytics settings into view options.
func (c *Config) ReportOptions() report.Options {
	opts := report.DefaultOptions()
	opts.SavingsGoal = c.SavingsGoal
	opts.TrendWindow = c.TrendWindow
	opts.RecentLimit = c.RecentLimit
	opts.Palette = slices.Clone(c.Palette)
	opts.Projection.RecencyWeight = c.RecencyWeight
	opts.Projection.DispersionScale = c.ConfidenceScale
	opts.UpcomingBills = c.UpcomingBillsLimit
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvMoney(key string, defaultValue core.Money) core.Money {
	if value := os.Getenv(key); value != "" {
		if cents, err := core.ParseNonNegativeCents(value); err == nil {
			return core.Money{Cents: cents}
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return slices.Clone(defaultValue)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
