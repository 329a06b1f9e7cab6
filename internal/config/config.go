// Package config loads proxyd's runtime configuration from the process
// environment, failing fast with a wrapped error before any listener or
// goroutine is started.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envHost           = "PROXY_HOST"
	envPort           = "PROXY_PORT"
	envReadTimeoutMS  = "PROXY_READ_TIMEOUT_MS"
	envReadBufferSize = "PROXY_READ_BUFFER_SIZE"
	envLogLevel       = "PROXY_LOG_LEVEL"
	envMetricsEnabled = "PROXY_METRICS_ENABLED"

	defaultHost           = "0.0.0.0"
	defaultPort           = 8000
	defaultReadTimeout    = 500 * time.Millisecond
	defaultReadBufferSize = 1024
	defaultLogLevel       = "info"
)

// Config holds every knob proxyd reads from its environment. Zero-value
// Config is never valid; always obtain one through Load.
type Config struct {
	Host string
	Port int

	// ReadTimeout bounds every single read from either the client or the
	// origin connection. A read that exceeds it ends that relay direction
	// rather than blocking forever.
	ReadTimeout time.Duration

	// ReadBufferSize is the size of each read performed against a client or
	// origin connection.
	ReadBufferSize int

	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string

	// MetricsEnabled toggles whether the Prometheus /metrics endpoint (and
	// its collectors) are registered at all.
	MetricsEnabled bool
}

// Load reads Config from the environment, applying the documented defaults
// for anything unset, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Host:           defaultHost,
		Port:           defaultPort,
		ReadTimeout:    defaultReadTimeout,
		ReadBufferSize: defaultReadBufferSize,
		LogLevel:       defaultLogLevel,
		MetricsEnabled: false,
	}

	if v := os.Getenv(envHost); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parsing %s=%q: %w", envPort, v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv(envReadTimeoutMS); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parsing %s=%q: %w", envReadTimeoutMS, v, err)
		}
		cfg.ReadTimeout = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv(envReadBufferSize); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: parsing %s=%q: %w", envReadBufferSize, v, err)
		}
		cfg.ReadBufferSize = size
	}

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv(envMetricsEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: parsing %s=%q: %w", envMetricsEnabled, v, err)
		}
		cfg.MetricsEnabled = enabled
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: %s must be between 1 and 65535, got %d", envPort, c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", envReadTimeoutMS, c.ReadTimeout)
	}
	if c.ReadBufferSize <= 0 {
		return fmt.Errorf("config: %s must be positive, got %d", envReadBufferSize, c.ReadBufferSize)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: %s must be one of debug/info/warn/error, got %q", envLogLevel, c.LogLevel)
	}
	return nil
}

// Addr formats Host and Port as a net.Listen-ready address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
