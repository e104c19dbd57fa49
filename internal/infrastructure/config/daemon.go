package config

import "time"

// DaemonConfig holds the daemon process and socket server configuration.
type DaemonConfig struct {
	// SocketPath is `socket-path`, default `<state-dir>/daemon.sock`, created with 0600.
	SocketPath string `mapstructure:"socket_path"`

	// StateDir is `state-dir`: the base directory for the socket, PID file, and
	// any other on-disk daemon state.
	StateDir string `mapstructure:"state_dir"`

	// PIDFile location, used to prevent multiple instances.
	PIDFile string `mapstructure:"pid_file"`

	// ShutdownDeadline is `shutdown-deadline`, default 30s: how long graceful
	// stop waits for all containers to reach STOPPED before giving up.
	ShutdownDeadline time.Duration `mapstructure:"shutdown_deadline" validate:"required"`
}
