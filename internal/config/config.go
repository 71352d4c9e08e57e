package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	// HTTP Server
	Port               string
	CORSAllowedOrigins []string

	// Storage
	DataBackend      string
	SQLiteDBPath     string
	MemorySeedFile   string
	StorageNamespace string
	CacheSize        int
	CacheTTL         time.Duration

	// Presentation
	Locale         string
	CurrencySymbol string
	TimeZone       string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DataBackend:      getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/gofinances.db"),
		MemorySeedFile:   getEnv("MEMORY_SEED_FILE", ""),
		StorageNamespace: getEnv("STORAGE_NAMESPACE", "@gofinances"),
		CacheSize:        getEnvInt("CACHE_SIZE", 256),
		CacheTTL:         getEnvDuration("CACHE_TTL", 5*time.Minute),

		Locale:         getEnv("LOCALE", "pt-BR"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "R$"),
		TimeZone:       getEnv("TIME_ZONE", "America/Sao_Paulo"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gofinances"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "export_transactions"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Transactions"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
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

	if strings.TrimSpace(c.StorageNamespace) == "" {
		errors = append(errors, "storage namespace cannot be empty")
	}

	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}
	if c.CacheSize > 0 && c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}

	if _, err := language.Parse(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid time zone '%s': %v", c.TimeZone, err))
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

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateWorker checks the settings the export worker needs on top of Validate.
func (c *Config) ValidateWorker() error {
	var errors []string
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the export worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the export worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the export worker")
	}
	if len(errors) > 0 {
		return fmt.Errorf("worker configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Location returns the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
