package config

// MetricsConfig holds the Prometheus metrics HTTP endpoint configuration.
type MetricsConfig struct {
	// Enabled turns on the Prometheus registry and /metrics listener.
	Enabled bool `mapstructure:"enabled"`

	// Addr is the listen address for the /metrics endpoint, e.g. ":9090".
	Addr string `mapstructure:"addr"`
}
