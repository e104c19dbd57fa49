package config

import "time"

// HealthConfig holds health monitor configuration.
type HealthConfig struct {
	// Interval is `health-interval`, default 30s: how often the monitor scans
	// active assignments.
	Interval time.Duration `mapstructure:"interval" validate:"required"`
}
