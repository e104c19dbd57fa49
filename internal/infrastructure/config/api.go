package config

import "time"

// APIConfig holds the rate-limited SpaceTraders API client configuration.
type APIConfig struct {
	// Base URL for the SpaceTraders API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Rate limiting settings: `api-rate-limit`, `api-burst`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	// Retry configuration: `api-retry-max`
	Retry RetryConfig `mapstructure:"retry"`

	// Circuit breaker configuration: `api-circuit-threshold`, `api-circuit-cooldown`
	Circuit CircuitConfig `mapstructure:"circuit"`
}

// RateLimitConfig holds per-player token-bucket rate limiting configuration.
type RateLimitConfig struct {
	// Requests is the steady-state refill rate, requests/second. `api-rate-limit`, default 2.
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst is the bucket capacity. `api-burst`, default 2.
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig holds retry configuration for transient API failures.
type RetryConfig struct {
	// MaxAttempts is `api-retry-max`, default 5.
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Base duration for exponential backoff
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CircuitConfig holds per-player circuit breaker configuration.
type CircuitConfig struct {
	// Threshold is the consecutive-failure count that trips the breaker open.
	// `api-circuit-threshold`, default 5.
	Threshold int `mapstructure:"threshold" validate:"min=1"`

	// Cooldown is how long the breaker stays open before probing half-open.
	// `api-circuit-cooldown`, default 60s.
	Cooldown time.Duration `mapstructure:"cooldown"`
}
