package config

// ContainerConfig holds container supervisor configuration.
type ContainerConfig struct {
	// MaxRestarts is `container-max-restarts`, default 3. The supervisor
	// assigns it as max_restarts to every container it starts.
	MaxRestarts int `mapstructure:"max_restarts" validate:"min=0"`
}
