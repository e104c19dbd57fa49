package config

import "time"

// SetDefaults applies the defaults named in spec §6 to any field left zero
// after file and environment loading.
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "fleetd"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "fleetd"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	// db-pool-size, default 5
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 5
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}
	// db-query-timeout, default 30s
	if cfg.Database.QueryTimeout == 0 {
		cfg.Database.QueryTimeout = 30 * time.Second
	}

	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.spacetraders.io/v2"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	// api-rate-limit, default 2 requests/second
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 2
	}
	// api-burst, default 2
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 2
	}
	// api-retry-max, default 5
	if cfg.API.Retry.MaxAttempts == 0 {
		cfg.API.Retry.MaxAttempts = 5
	}
	if cfg.API.Retry.BackoffBase == 0 {
		cfg.API.Retry.BackoffBase = 1 * time.Second
	}
	// api-circuit-threshold, default 5
	if cfg.API.Circuit.Threshold == 0 {
		cfg.API.Circuit.Threshold = 5
	}
	// api-circuit-cooldown, default 60s
	if cfg.API.Circuit.Cooldown == 0 {
		cfg.API.Circuit.Cooldown = 60 * time.Second
	}

	// Routing defaults (out-of-scope external collaborator, JSON-over-HTTP client)
	if cfg.Routing.Address == "" {
		cfg.Routing.Address = "http://localhost:8090"
	}
	if cfg.Routing.Timeout.Connect == 0 {
		cfg.Routing.Timeout.Connect = 10 * time.Second
	}
	if cfg.Routing.Timeout.Dijkstra == 0 {
		cfg.Routing.Timeout.Dijkstra = 30 * time.Second
	}
	if cfg.Routing.Timeout.TSP == 0 {
		cfg.Routing.Timeout.TSP = 60 * time.Second
	}
	if cfg.Routing.Timeout.VRP == 0 {
		cfg.Routing.Timeout.VRP = 120 * time.Second
	}
	if cfg.Routing.Circuit.Threshold == 0 {
		cfg.Routing.Circuit.Threshold = 5
	}
	if cfg.Routing.Circuit.Cooldown == 0 {
		cfg.Routing.Circuit.Cooldown = 60 * time.Second
	}

	// Daemon defaults
	if cfg.Daemon.StateDir == "" {
		cfg.Daemon.StateDir = "/tmp/fleetd"
	}
	// socket-path, default <state-dir>/daemon.sock
	if cfg.Daemon.SocketPath == "" {
		cfg.Daemon.SocketPath = cfg.Daemon.StateDir + "/daemon.sock"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = cfg.Daemon.StateDir + "/daemon.pid"
	}
	// shutdown-deadline, default 30s
	if cfg.Daemon.ShutdownDeadline == 0 {
		cfg.Daemon.ShutdownDeadline = 30 * time.Second
	}

	// container-max-restarts, default 3
	if cfg.Container.MaxRestarts == 0 {
		cfg.Container.MaxRestarts = 3
	}

	// lock-stale-timeout, default 1800s (30min)
	if cfg.Lock.StaleTimeout == 0 {
		cfg.Lock.StaleTimeout = 30 * time.Minute
	}

	// health-interval, default 30s
	if cfg.Health.Interval == 0 {
		cfg.Health.Interval = 30 * time.Second
	}

	// waypoint-ttl, default 7200s (2h)
	if cfg.Cache.WaypointTTL == 0 {
		cfg.Cache.WaypointTTL = 2 * time.Hour
	}

	// Metrics defaults
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
