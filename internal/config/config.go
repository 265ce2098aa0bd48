package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultSessionSecret signs cookies outside production when SESSION_SECRET is unset
const DefaultSessionSecret = "dev-session-secret-change-me-please"

type Config struct {
	// HTTP Server
	Port               string
	Env                string
	LogLevel           string
	RateLimitPerMinute int
	TrustedProxies     []string

	// Database
	DataBackend  string
	SQLiteDBPath string

	// AMQP record events; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror used by the worker
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// OAuth login
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	SessionSecret      string
	DevAuthEmail       string

	// AI insights
	AIAPIKey  string
	AIBaseURL string
	AIModel   string
	AITimeout time.Duration
	AppURL    string
	AppTitle  string

	// Presentation
	CurrencySymbol string
	HomeCacheTTL   time.Duration
	HomeCacheSize  int
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "3000"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spentify.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spentify"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Records"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/callback"),
		SessionSecret:      getEnv("SESSION_SECRET", DefaultSessionSecret),
		DevAuthEmail:       getEnv("DEV_AUTH_EMAIL", ""),

		AIAPIKey:  getEnv("OPENROUTER_API_KEY", getEnv("OPENAI_API_KEY", "")),
		AIBaseURL: getEnv("AI_BASE_URL", "https://openrouter.ai/api/v1"),
		AIModel:   getEnv("AI_MODEL", "gpt-3.5-turbo"),
		AITimeout: getEnvDuration("AI_TIMEOUT", 0),
		AppURL:    getEnv("NEXT_PUBLIC_APP_URL", getEnv("APP_URL", "http://localhost:3000")),
		AppTitle:  getEnv("APP_TITLE", "Spentify"),

		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		HomeCacheTTL:   getEnvDuration("HOME_CACHE_TTL", 5*time.Minute),
		HomeCacheSize:  getEnvInt("HOME_CACHE_SIZE", 1000),
	}

	return cfg
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ExportEnabled reports whether the Google Sheets mirror is configured
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// OAuthEnabled reports whether Google login credentials are present
func (c *Config) OAuthEnabled() bool {
	return c.GoogleClientID != ""
}

// Validate validates the configuration and returns an error if invalid
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

	if c.ExportEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided when GOOGLE_SPREADSHEET_ID is set")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.OAuthEnabled() {
		if c.GoogleClientSecret == "" {
			errors = append(errors, "GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
		}
		if _, err := url.ParseRequestURI(c.GoogleCallbackURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Google callback URL '%s'", c.GoogleCallbackURL))
		}
	}

	if len(c.SessionSecret) < 32 {
		errors = append(errors, "session secret must be at least 32 characters")
	}

	if c.IsProduction() && c.DevAuthEmail != "" {
		errors = append(errors, "DEV_AUTH_EMAIL must not be set in production")
	}
	if c.IsProduction() && (strings.TrimSpace(c.SessionSecret) == "" || c.SessionSecret == DefaultSessionSecret) {
		errors = append(errors, "SESSION_SECRET must be set to a non-default value in production")
	}

	if parsedURL, err := url.Parse(c.AIBaseURL); err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("invalid AI base URL '%s': must be an http(s) URL", c.AIBaseURL))
	}
	if strings.TrimSpace(c.AIModel) == "" {
		errors = append(errors, "AI model cannot be empty")
	}
	if c.AITimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid AI timeout %v: must not be negative", c.AITimeout))
	}

	if c.HomeCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid home cache size %d: must be at least 1", c.HomeCacheSize))
	}
	if c.HomeCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid home cache TTL %v: must not be negative", c.HomeCacheTTL))
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR range", cidr))
		}
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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

// getEnvList splits a comma-separated variable, dropping blank entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
