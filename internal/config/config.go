// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
//
// Missing schedule source settings are deliberately not a load error: the
// server still starts and every refresh reports a configuration error, so the
// page can show it with a retry button.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Refresh  RefreshConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Publish  PublishConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SourceConfig describes where the schedule CSV is downloaded from.
type SourceConfig struct {
	// URL is the primary (secured) endpoint.
	// VITE_APPS_SCRIPT_URL is accepted for deployments that share the frontend .env.
	URL string `env:"SOURCE_URL" envAlt:"VITE_APPS_SCRIPT_URL"`

	// Secret is the shared secret sent with the primary endpoint.
	Secret string `env:"SOURCE_SECRET" envAlt:"VITE_SECRET_KEY"`

	// SecretParam is the query parameter carrying Secret (default: secret)
	SecretParam string `env:"SOURCE_SECRET_PARAM" default:"secret"`

	// FallbackURL is the public published-sheet CSV, tried after the primary.
	FallbackURL string `env:"SOURCE_FALLBACK_URL"`

	// File is an optional YAML list of sources; when set it replaces the
	// URL/FallbackURL pair.
	File string `env:"SOURCE_FILE"`

	// HTTPTimeout bounds each request; 0 keeps the transport defaults (default: 0s)
	HTTPTimeout time.Duration `env:"SOURCE_HTTP_TIMEOUT" default:"0s"`

	// MaxBodyBytes caps a downloaded body (default: 10MB)
	MaxBodyBytes int64 `env:"SOURCE_MAX_BODY_BYTES" default:"10485760"`
}

// RefreshConfig holds background refresh settings.
type RefreshConfig struct {
	// Interval between scheduled refreshes; 0 disables the scheduler (default: 15m)
	Interval time.Duration `env:"REFRESH_INTERVAL" default:"15m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// RefreshLimit is requests per minute for manual refresh (default: 6)
	RefreshLimit int `env:"RATE_LIMIT_REFRESH" default:"6"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// PublishConfig holds the optional MQTT snapshot publisher settings.
type PublishConfig struct {
	// BrokerURL enables publishing when set, e.g. tcp://broker:1883
	BrokerURL string `env:"MQTT_BROKER_URL"`

	// ClientID identifies this service to the broker (default: prayerboard)
	ClientID string `env:"MQTT_CLIENT_ID" default:"prayerboard"`

	// Topic receives the retained schedule snapshot (default: prayerboard/schedule)
	Topic string `env:"MQTT_TOPIC" default:"prayerboard/schedule"`

	// QoS is the MQTT quality of service, 0-2 (default: 1)
	QoS int `env:"MQTT_QOS" default:"1"`

	Username string `env:"MQTT_USERNAME"`
	Password string `env:"MQTT_PASSWORD"`

	// ConnectTimeout bounds the initial broker connection (default: 10s)
	ConnectTimeout time.Duration `env:"MQTT_CONNECT_TIMEOUT" default:"10s"`
}

// Enabled reports whether a broker is configured.
func (c *PublishConfig) Enabled() bool {
	return c.BrokerURL != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
