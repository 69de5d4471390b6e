// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
//
// A Config is built once in main and passed explicitly to every component;
// nothing reads the environment after startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Files     FilesConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Audit     AuditConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"HOST" envDefault:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"PORT" envDefault:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 90s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// FilesConfig holds the sandbox and parsing limits.
type FilesConfig struct {
	// BaseDir is the root that relative paths resolve under (default: working directory)
	BaseDir string `env:"BASE_DIR"`

	// MaxFileSize is the largest file that will be parsed, in bytes; 0 disables (default: 100MB)
	MaxFileSize int64 `env:"MAX_FILE_SIZE" envDefault:"104857600"`

	// MaxConcurrent is the maximum number of files parsed at once (default: 8)
	MaxConcurrent int `env:"PARSE_MAX_CONCURRENT" envDefault:"8"`

	// MaxWaitTime is how long a request waits for a parse slot (default: 10s)
	MaxWaitTime time.Duration `env:"PARSE_MAX_WAIT_TIME" envDefault:"10s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: false)
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`

	// RequestsPerMinute is the sustained rate per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" envDefault:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// AllowedOrigins is the CORS origin list (default: *)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// AuditConfig holds the optional parse audit trail settings.
// Auditing is disabled when DatabaseURL is empty.
type AuditConfig struct {
	// DatabaseURL is the PostgreSQL connection string (DATABASE_URL or DB_URL)
	DatabaseURL string `env:"DATABASE_URL"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" envDefault:"4"`

	// QueueSize is how many entries may wait for the writer (default: 256)
	QueueSize int `env:"AUDIT_QUEUE_SIZE" envDefault:"256"`

	// WriteTimeout bounds a single insert (default: 5s)
	WriteTimeout time.Duration `env:"AUDIT_WRITE_TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether an audit database is configured.
func (c *AuditConfig) Enabled() bool {
	return c.DatabaseURL != ""
}

// ReportingConfig holds Sentry error reporting settings.
// Reporting is disabled when DSN is empty.
type ReportingConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
