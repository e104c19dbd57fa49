// Package clicmd implements fleetctl, the operator-facing command-line
// client for fleetd. It talks to the daemon exclusively over the Unix
// socket described in internal/adapters/socket — no direct database or
// API access, so fleetctl never competes with the daemon for the
// single-writer guarantee pidfile enforces.
package clicmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	socketPath string
	playerID   int
	verbose    bool
)

// NewRootCommand builds the fleetctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "fleetctl",
		Short: "Operator CLI for the fleetd daemon",
		Long: `fleetctl inspects and controls a running fleetd daemon over its local
Unix socket.

Examples:
  fleetctl health
  fleetctl container list
  fleetctl container logs <container-id>
  fleetctl container stop <container-id>
  fleetctl register --type NAVIGATE --player-id 1`,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	root.PersistentFlags().StringVar(&socketPath, "socket", defaultSocketPath(), "path to the daemon's Unix socket")
	root.PersistentFlags().IntVar(&playerID, "player-id", 0, "player ID to scope the request to")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newHealthCommand())
	root.AddCommand(newContainerCommand())
	root.AddCommand(newRegisterCommand())

	return root
}

func defaultSocketPath() string {
	if path := os.Getenv("FLEETD_SOCKET"); path != "" {
		return path
	}
	return "/tmp/fleetd/daemon.sock"
}

// Execute runs the root command, printing any error to stderr.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
