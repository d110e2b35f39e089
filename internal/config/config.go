package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"envelope/internal/budget"
	"envelope/internal/log"
)

var validBackends = []string{"memory", "sheets", "sqlite"}

type Config struct {
	// Backend selection
	DataBackend string

	// SQLite
	SQLiteDBPath string

	// Memory backend: optional directory of <key>.json seed files
	MemorySeedDir string

	// AMQP (optional for the budget binary)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets, as primary backend or as mirror
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Persistence writer
	PersistMaxRetries int
	PersistRetryDelay time.Duration

	// Mirror worker
	MirrorResyncInterval time.Duration

	// Engine. SPEND_POLICY is "consume" (default) or "activity". Under
	// consume a spend is taken from budgeted as well as counted as spending,
	// so available drops twice and ready to assign rises; pick activity for
	// available = budgeted - spending. See budget.SpendPolicy.
	SpendPolicy string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		DataBackend:   getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/envelope.db"),
		MemorySeedDir: getEnv("MEMORY_SEED_DIR", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "envelope"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changes"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Ledger"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		PersistMaxRetries: getEnvInt("PERSIST_MAX_RETRIES", 3),
		PersistRetryDelay: getEnvDuration("PERSIST_RETRY_DELAY", 500*time.Millisecond),

		MirrorResyncInterval: getEnvDuration("MIRROR_RESYNC_INTERVAL", 10*time.Minute),

		SpendPolicy: getEnv("SPEND_POLICY", "consume"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.DataBackend == "memory" && c.MemorySeedDir != "" {
		if info, err := os.Stat(c.MemorySeedDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("memory seed directory does not exist: %s", c.MemorySeedDir))
		}
	}

	errors = append(errors, c.validateAMQP()...)

	if c.DataBackend == "sheets" {
		errors = append(errors, c.validateSheets("sheets backend")...)
	}

	if c.PersistMaxRetries < 1 {
		errors = append(errors, fmt.Sprintf("invalid persist max retries %d: must be at least 1", c.PersistMaxRetries))
	} else if c.PersistMaxRetries > 10 {
		errors = append(errors, fmt.Sprintf("invalid persist max retries %d: must be at most 10", c.PersistMaxRetries))
	}

	if c.PersistRetryDelay < 0 {
		errors = append(errors, fmt.Sprintf("invalid persist retry delay %v: must not be negative", c.PersistRetryDelay))
	} else if c.PersistRetryDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid persist retry delay %v: must be at most 1 minute", c.PersistRetryDelay))
	}

	if _, err := budget.ParseSpendPolicy(c.SpendPolicy); err != nil {
		errors = append(errors, fmt.Sprintf("invalid spend policy '%s': must be 'consume' or 'activity'", c.SpendPolicy))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateMirror checks the settings the ledger-mirror worker needs on top
// of Validate: a broker to consume from and a spreadsheet to write to.
func (c *Config) ValidateMirror() error {
	if err := c.Validate(); err != nil {
		return err
	}

	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP_URL is required for the mirror worker")
	}
	errors = append(errors, c.validateSheets("mirror worker")...)
	if c.DataBackend == "sheets" {
		errors = append(errors, "mirror worker needs a primary backend other than sheets")
	}
	if c.DataBackend == "memory" {
		errors = append(errors, "mirror worker cannot read the memory backend of another process")
	}
	if c.MirrorResyncInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid mirror resync interval %v: must be at least 1 minute", c.MirrorResyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) validateAMQP() []string {
	if c.AMQPURL == "" {
		return nil
	}

	var errors []string
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
	return errors
}

func (c *Config) validateSheets(usage string) []string {
	var errors []string
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, fmt.Sprintf("Google Spreadsheet ID is required for %s", usage))
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, fmt.Sprintf("Google Sheet name is required for %s", usage))
	}

	hasFile := c.GoogleServiceAccountFile != ""
	hasJSON := c.GoogleServiceAccountJSON != ""
	if !hasFile && !hasJSON {
		errors = append(errors, fmt.Sprintf("either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for %s", usage))
	}
	if hasFile {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}
	return errors
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
