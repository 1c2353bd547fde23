package config

import (
	"creativehub/persistence"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultHTTPAddress   = ":8080"
	DefaultReindexCron   = "0 0 23 * * ?"
	DefaultRedeliverCron = "0 */5 * * * ?"
	DefaultReindexRate   = 20
)

// LogConfig is read before any other setting so that configuration errors are
// already logged in the requested format.
type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	HTTPAddress string

	Database *persistence.DatabaseConfig

	// WorkflowFile replaces the embedded lifecycle definition when set.
	WorkflowFile      string
	SessionTokensFile string

	ElasticsearchEnabled bool
	ReindexCron          string
	// ReindexRate is the number of projects indexed per second by a full sync.
	ReindexRate float64

	RedeliverCron  string
	OSSEnabled     bool
	TracingEnabled bool
}

// LoadDotEnv loads path (".env" when empty) if it exists. Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadLogConfig reads LOG_LEVEL and LOG_FORMAT.
func LoadLogConfig() LogConfig {
	return LogConfig{Level: stringFromEnv("LOG_LEVEL", "info"), Format: stringFromEnv("LOG_FORMAT", "text")}
}

// Load reads HTTP_ADDRESS, WORKFLOW_FILE, SESSION_TOKENS_FILE,
// ES_ENABLED, REINDEX_CRON, REINDEX_RATE, EVENT_REDELIVER_CRON, OSS_ENABLED,
// TRACING_ENABLED and the DB_* variables.
func Load() (*AppConfig, error) {
	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		return nil, err
	}

	c := &AppConfig{
		HTTPAddress:       stringFromEnv("HTTP_ADDRESS", DefaultHTTPAddress),
		Database:          dbConfig,
		WorkflowFile:      os.Getenv("WORKFLOW_FILE"),
		SessionTokensFile: os.Getenv("SESSION_TOKENS_FILE"),
		ReindexCron:       stringFromEnv("REINDEX_CRON", DefaultReindexCron),
		RedeliverCron:     stringFromEnv("EVENT_REDELIVER_CRON", DefaultRedeliverCron),
	}
	if c.ElasticsearchEnabled, err = boolFromEnv("ES_ENABLED", false); err != nil {
		return nil, err
	}
	if c.OSSEnabled, err = boolFromEnv("OSS_ENABLED", false); err != nil {
		return nil, err
	}
	if c.TracingEnabled, err = boolFromEnv("TRACING_ENABLED", false); err != nil {
		return nil, err
	}
	if c.ReindexRate, err = floatFromEnv("REINDEX_RATE", DefaultReindexRate); err != nil {
		return nil, err
	}
	if c.ReindexRate <= 0 {
		return nil, fmt.Errorf("REINDEX_RATE must be positive, got %v", c.ReindexRate)
	}
	return c, nil
}

func stringFromEnv(name, defaultValue string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return defaultValue
}

func boolFromEnv(name string, defaultValue bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s '%s': %w", name, v, err)
	}
	return b, nil
}

func floatFromEnv(name string, defaultValue float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, v, err)
	}
	return f, nil
}
