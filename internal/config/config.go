package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kurihiro0119/github-user-audit/internal/domain"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Audit targets
	Orgs   []string
	Logins []string

	// Scan behavior
	MaxPages          int
	DefaultWindowDays int
	AnyWindowDays     int
	FallbackDays      int

	// Run artifacts
	CheckpointPath string
	ErrorLogPath   string
	ReportPath     string
	AuditCSVPath   string

	// Run history storage: "sqlite", "postgres" or "off"
	StorageType string
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort string
	APIHost string

	// CLI
	APIEndpoint string

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		Orgs:              splitList(getEnv("AUDIT_ORGS", "")),
		Logins:            splitList(getEnv("AUDIT_USERS", "")),
		MaxPages:          getEnvInt("MAX_PAGES", 50),
		DefaultWindowDays: getEnvInt("WINDOW_DEFAULT_DAYS", 60),
		AnyWindowDays:     getEnvInt("WINDOW_ANY_BRANCH_DAYS", 30),
		FallbackDays:      getEnvInt("WINDOW_FALLBACK_DAYS", 90),
		CheckpointPath:    getEnv("CHECKPOINT_PATH", "activity_cache.json"),
		ErrorLogPath:      getEnv("ERROR_LOG_PATH", "error_log.txt"),
		ReportPath:        getEnv("REPORT_PATH", "github_user_activity_report.xlsx"),
		AuditCSVPath:      getEnv("AUDIT_CSV_PATH", "repo_audit_log.csv"),
		StorageType:       getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:        getEnv("SQLITE_PATH", "./audit_history.db"),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		APIPort:           getEnv("API_PORT", "8080"),
		APIHost:           getEnv("API_HOST", "localhost"),
		APIEndpoint:       getEnv("API_ENDPOINT", "http://localhost:8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// splitList parses a comma-separated environment value into a list,
// trimming whitespace and dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Windows returns the configured scan lookback windows
func (c *Config) Windows() domain.Windows {
	return domain.Windows{
		DefaultBranchDays: c.DefaultWindowDays,
		AnyBranchDays:     c.AnyWindowDays,
		FallbackDays:      c.FallbackDays,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required"}
	}
	if len(c.Orgs) == 0 {
		return &ConfigError{Field: "AUDIT_ORGS", Message: "at least one organization is required"}
	}
	if len(c.Logins) == 0 {
		return &ConfigError{Field: "AUDIT_USERS", Message: "at least one user login is required"}
	}
	if c.StorageType != "sqlite" && c.StorageType != "postgres" && c.StorageType != "off" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite', 'postgres' or 'off'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
