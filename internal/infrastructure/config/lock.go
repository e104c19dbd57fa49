package config

import "time"

// LockConfig holds ship-assignment lock manager configuration.
type LockConfig struct {
	// StaleTimeout is `lock-stale-timeout`, default 1800s (30min): assignments
	// held past this are eligible for clean_stale release.
	StaleTimeout time.Duration `mapstructure:"stale_timeout"`
}
