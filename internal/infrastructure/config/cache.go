package config

import "time"

// CacheConfig holds waypoint and system-graph cache configuration.
type CacheConfig struct {
	// WaypointTTL is `waypoint-ttl`, default 7200s (2h).
	WaypointTTL time.Duration `mapstructure:"waypoint_ttl"`
}
