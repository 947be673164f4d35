package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string `yaml:"port"`
	Env  string `yaml:"env"`

	// Database
	DBDriver string `yaml:"db_driver"`
	DBPath   string `yaml:"db_path"`
	DBDSN    string `yaml:"db_dsn"`

	// JWT
	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`

	// CORS
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	// Rate Limiting
	RateLimitRequests      int `yaml:"rate_limit_requests"`
	RateLimitWindowMinutes int `yaml:"rate_limit_window_minutes"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Public pages
	PublicBaseURL string `yaml:"public_base_url"`

	// Media uploads
	MediaDir string `yaml:"media_dir"`

	// Stats
	StatsFlushSpec string `yaml:"stats_flush_spec"`
}

const defaultJWTSecret = "change-this-to-a-secure-random-string-in-production"

// Load reads configuration from an optional YAML file (CONFIG_FILE)
// with environment variables taking precedence
func Load() *Config {
	cfg := &Config{
		Port:                   "8080",
		Env:                    "development",
		DBDriver:               "sqlite",
		DBPath:                 "./data/biolink.db",
		JWTSecret:              defaultJWTSecret,
		JWTExpiryHours:         24,
		CORSAllowedOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		RateLimitRequests:      100,
		RateLimitWindowMinutes: 15,
		LogLevel:               "info",
		PublicBaseURL:          "http://localhost:8080",
		MediaDir:               "./data/media",
		StatsFlushSpec:         "@every 1m",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			logger := MustInitLogger(cfg.Env, cfg.LogLevel)
			logger.Fatal("Failed to load config file: " + err.Error())
		}
	}

	cfg.applyEnv()

	// Validate critical configuration
	if cfg.Env == "production" && cfg.JWTSecret == defaultJWTSecret {
		logger := MustInitLogger(cfg.Env, cfg.LogLevel)
		logger.Fatal("JWT_SECRET must be set in production environment")
	}

	return cfg
}

// loadFile overlays values from a YAML file onto the defaults
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides any field whose environment variable is set
func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DBDSN = getEnv("DB_DSN", c.DBDSN)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpiryHours = getEnvAsInt("JWT_EXPIRY_HOURS", c.JWTExpiryHours)
	c.CORSAllowedOrigins = getEnvAsSlice("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.RateLimitRequests = getEnvAsInt("RATE_LIMIT_REQUESTS", c.RateLimitRequests)
	c.RateLimitWindowMinutes = getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", c.RateLimitWindowMinutes)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.MediaDir = getEnv("MEDIA_DIR", c.MediaDir)
	c.StatsFlushSpec = getEnv("STATS_FLUSH_SPEC", c.StatsFlushSpec)
}

// JWTExpiry returns the JWT expiry duration
func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Silently use default - logger not available yet during config load
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated values
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var result []string
	for _, v := range splitCommaSeparated(valueStr) {
		if trimmed := trimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// splitCommaSeparated splits a string by commas
func splitCommaSeparated(s string) []string {
	var parts []string
	current := ""
	for _, ch := range s {
		if ch == ',' {
			parts = append(parts, current)
			current = ""
		} else {
			current += string(ch)
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// trimSpace removes leading and trailing whitespace
func trimSpace(s string) string {
	start := 0
	end := len(s)

	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\n' || s[start] == '\r') {
		start++
	}

	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}

	return s[start:end]
}
