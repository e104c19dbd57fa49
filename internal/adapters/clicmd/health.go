package clicmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/fleetd/internal/adapters/socket"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := socket.Dial(socketPath, 5*time.Second)
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			health, err := client.Health()
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}

			fmt.Println("daemon is healthy")
			fmt.Printf("  version:            %s\n", health.Version)
			fmt.Printf("  active containers:  %d\n", health.ActiveContainers)
			fmt.Printf("  uptime:             %s\n", (time.Duration(health.UptimeSeconds) * time.Second).String())
			return nil
		},
	}
}
