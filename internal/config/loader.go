package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values, resolves BASE_DIR to an absolute
// directory and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	// DB_URL is accepted as a fallback for compatibility
	if cfg.Audit.DatabaseURL == "" {
		cfg.Audit.DatabaseURL = os.Getenv("DB_URL")
	}

	cfg.Security.TrustedProxies = trimList(cfg.Security.TrustedProxies)
	cfg.Security.AllowedOrigins = trimList(cfg.Security.AllowedOrigins)

	if err := cfg.resolveBaseDir(); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// resolveBaseDir defaults BASE_DIR to the working directory and makes it
// absolute, so later comparisons never depend on the process cwd.
func (c *Config) resolveBaseDir() error {
	if c.Files.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		c.Files.BaseDir = wd
	}

	abs, err := filepath.Abs(c.Files.BaseDir)
	if err != nil {
		return fmt.Errorf("invalid BASE_DIR %q: %w", c.Files.BaseDir, err)
	}
	c.Files.BaseDir = abs

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("BASE_DIR %q: %w", abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("BASE_DIR %q is not a directory", abs)
	}
	return nil
}

// trimList trims whitespace around items and drops empty ones.
func trimList(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.WriteTimeout < 0 {
		errs = append(errs, "SERVER_WRITE_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "SERVER_REQUEST_TIMEOUT must be positive")
	}

	// Files validation
	if c.Files.BaseDir == "" {
		errs = append(errs, "BASE_DIR is required")
	} else if !filepath.IsAbs(c.Files.BaseDir) {
		errs = append(errs, fmt.Sprintf("BASE_DIR (%q) must be absolute", c.Files.BaseDir))
	}
	if c.Files.MaxFileSize < 0 {
		errs = append(errs, "MAX_FILE_SIZE must be non-negative")
	}
	if c.Files.MaxConcurrent <= 0 {
		errs = append(errs, "PARSE_MAX_CONCURRENT must be positive")
	}
	if c.Files.MaxWaitTime <= 0 {
		errs = append(errs, "PARSE_MAX_WAIT_TIME must be positive")
	}

	// Rate limit validation
	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	// Security validation
	if len(c.Security.AllowedOrigins) == 0 {
		errs = append(errs, "CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	// Audit validation
	if c.Audit.Enabled() {
		if c.Audit.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Audit.QueueSize <= 0 {
			errs = append(errs, "AUDIT_QUEUE_SIZE must be positive")
		}
		if c.Audit.WriteTimeout <= 0 {
			errs = append(errs, "AUDIT_WRITE_TIMEOUT must be positive")
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Secrets like the database URL and Sentry DSN are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Files: {BaseDir: %q, MaxFileSize: %d, MaxConcurrent: %d}, ",
		c.Files.BaseDir, c.Files.MaxFileSize, c.Files.MaxConcurrent)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Audit: {DatabaseURL: %s, QueueSize: %d}, ", mask(c.Audit.DatabaseURL), c.Audit.QueueSize)
	fmt.Fprintf(&b, "Reporting: {DSN: %s}, ", mask(c.Reporting.DSN))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(secret string) string {
	if secret == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
