// Package config provides the unified configuration structure shared by every
// connector. Connector-specific settings live in Security.Credentials and are
// read through the typed accessors below.
//
// Example usage:
//
//	cfg := config.NewBaseConfig("crm", "salesforce")
//	cfg.Security.Credentials["domain"] = "acme"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BaseConfig is the single configuration structure all connectors use.
type BaseConfig struct {
	// Name identifies the connector instance
	Name string `yaml:"name" json:"name"`
	// Type specifies the connector type (e.g., "salesforce", "json")
	Type string `yaml:"type" json:"type"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Timeouts define various timeout durations
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`

	// Reliability settings for retries and rate limiting
	Reliability ReliabilityConfig `yaml:"reliability" json:"reliability"`

	// Security configuration for authentication and connector settings
	Security SecurityConfig `yaml:"security" json:"security"`

	// Observability settings for monitoring and debugging
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Advanced holds output options
	Advanced AdvancedConfig `yaml:"advanced" json:"advanced"`
}

// TimeoutConfig contains all timeout-related settings.
type TimeoutConfig struct {
	// Request timeout for individual HTTP requests
	Request time.Duration `yaml:"request" json:"request"`
	// Connection timeout for establishing connections
	Connection time.Duration `yaml:"connection" json:"connection"`
	// Idle timeout before closing inactive connections
	Idle time.Duration `yaml:"idle" json:"idle"`
}

// ReliabilityConfig contains retry and rate limiting settings.
type ReliabilityConfig struct {
	// RetryAttempts sets maximum attempts for failed operations
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
	// RetryMultiplier increases delay exponentially
	RetryMultiplier float64 `yaml:"retry_multiplier" json:"retry_multiplier"`
	// MaxRetryDelay caps the maximum retry delay
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" json:"max_retry_delay"`
	// RateLimitPerSec limits outgoing requests per second (0 = unlimited)
	RateLimitPerSec int `yaml:"rate_limit_per_sec" json:"rate_limit_per_sec"`
}

// SecurityConfig contains authentication settings.
type SecurityConfig struct {
	// TLSSkipVerify disables certificate verification (insecure)
	TLSSkipVerify bool `yaml:"tls_skip_verify" json:"tls_skip_verify"`
	// Credentials stores connector settings and secrets (use env vars in production)
	Credentials map[string]string `yaml:"credentials" json:"credentials"`
}

// ObservabilityConfig contains monitoring and observability settings.
type ObservabilityConfig struct {
	// EnableMetrics activates the Prometheus endpoint in serve mode
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// MetricsAddress is the listen address of the metrics endpoint
	MetricsAddress string `yaml:"metrics_address" json:"metrics_address"`
	// EnableTracing activates OpenTelemetry tracing
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding selects json or console output
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
}

// AdvancedConfig contains output options.
type AdvancedConfig struct {
	// CompressionAlgorithm selects compression type (none, gzip, zstd, s2, lz4)
	CompressionAlgorithm string `yaml:"compression_algorithm" json:"compression_algorithm"`
	// CompressionLevel sets compression ratio vs speed
	CompressionLevel int `yaml:"compression_level" json:"compression_level"`
}

// NewBaseConfig creates a BaseConfig with production defaults.
func NewBaseConfig(name, connectorType string) *BaseConfig {
	return &BaseConfig{
		Name:    name,
		Type:    connectorType,
		Version: "1.0.0",
		Timeouts: TimeoutConfig{
			Request:    30 * time.Second,
			Connection: 10 * time.Second,
			Idle:       90 * time.Second,
		},
		Reliability: ReliabilityConfig{
			RetryAttempts:   3,
			RetryDelay:      time.Second,
			RetryMultiplier: 2.0,
			MaxRetryDelay:   30 * time.Second,
		},
		Security: SecurityConfig{
			Credentials: make(map[string]string),
		},
		Observability: ObservabilityConfig{
			EnableMetrics:     false,
			MetricsAddress:    ":9090",
			EnableTracing:     false,
			TracingSampleRate: 0.1,
			LogLevel:          "info",
			LogEncoding:       "json",
		},
		Advanced: AdvancedConfig{
			CompressionAlgorithm: "none",
		},
	}
}

// ApplyDefaults fills zero values left by a partial YAML file.
func (bc *BaseConfig) ApplyDefaults() {
	defaults := NewBaseConfig(bc.Name, bc.Type)

	if bc.Version == "" {
		bc.Version = defaults.Version
	}
	if bc.Timeouts.Request == 0 {
		bc.Timeouts.Request = defaults.Timeouts.Request
	}
	if bc.Timeouts.Connection == 0 {
		bc.Timeouts.Connection = defaults.Timeouts.Connection
	}
	if bc.Timeouts.Idle == 0 {
		bc.Timeouts.Idle = defaults.Timeouts.Idle
	}
	if bc.Reliability.RetryAttempts == 0 {
		bc.Reliability.RetryAttempts = defaults.Reliability.RetryAttempts
	}
	if bc.Reliability.RetryDelay == 0 {
		bc.Reliability.RetryDelay = defaults.Reliability.RetryDelay
	}
	if bc.Reliability.RetryMultiplier == 0 {
		bc.Reliability.RetryMultiplier = defaults.Reliability.RetryMultiplier
	}
	if bc.Reliability.MaxRetryDelay == 0 {
		bc.Reliability.MaxRetryDelay = defaults.Reliability.MaxRetryDelay
	}
	if bc.Security.Credentials == nil {
		bc.Security.Credentials = make(map[string]string)
	}
	if bc.Observability.MetricsAddress == "" {
		bc.Observability.MetricsAddress = defaults.Observability.MetricsAddress
	}
	if bc.Observability.LogLevel == "" {
		bc.Observability.LogLevel = defaults.Observability.LogLevel
	}
	if bc.Observability.LogEncoding == "" {
		bc.Observability.LogEncoding = defaults.Observability.LogEncoding
	}
	if bc.Advanced.CompressionAlgorithm == "" {
		bc.Advanced.CompressionAlgorithm = defaults.Advanced.CompressionAlgorithm
	}
}

// Validate checks required fields and value ranges.
func (bc *BaseConfig) Validate() error {
	if bc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if bc.Type == "" {
		return fmt.Errorf("type is required")
	}
	if bc.Reliability.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts cannot be negative")
	}
	if bc.Reliability.RateLimitPerSec < 0 {
		return fmt.Errorf("rate_limit_per_sec cannot be negative")
	}
	if bc.Observability.TracingSampleRate < 0 || bc.Observability.TracingSampleRate > 1 {
		return fmt.Errorf("tracing_sample_rate must be between 0 and 1")
	}
	return nil
}

// IsRateLimited returns true if rate limiting is enabled
func (r *ReliabilityConfig) IsRateLimited() bool {
	return r.RateLimitPerSec > 0
}

// HasCredentials returns true if credentials are configured
func (s *SecurityConfig) HasCredentials() bool {
	return len(s.Credentials) > 0
}

// String returns the trimmed credential for key, or def when unset.
func (s *SecurityConfig) String(key, def string) string {
	if v, ok := s.Credentials[key]; ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return def
}

// Bool parses the credential for key as a boolean.
func (s *SecurityConfig) Bool(key string, def bool) (bool, error) {
	v := s.String(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// Int parses the credential for key as an integer.
func (s *SecurityConfig) Int(key string, def int) (int, error) {
	v := s.String(key, "")
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

// List splits the credential for key on commas, dropping blanks.
func (s *SecurityConfig) List(key string) []string {
	v := s.String(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
