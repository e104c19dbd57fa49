package clicmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/fleetd/internal/adapters/socket"
)

func newContainerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Inspect and control running containers",
	}
	cmd.AddCommand(newContainerListCommand())
	cmd.AddCommand(newContainerGetCommand())
	cmd.AddCommand(newContainerStopCommand())
	cmd.AddCommand(newContainerLogsCommand())
	return cmd
}

func dial() (*socket.Client, error) {
	return socket.Dial(socketPath, 10*time.Second)
}

func newContainerListCommand() *cobra.Command {
	var status, containerType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List containers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			containers, err := client.ListContainers(socket.ListContainersRequest{
				PlayerID: playerID,
				Type:     containerType,
				Status:   status,
			})
			if err != nil {
				return fmt.Errorf("list containers: %w", err)
			}
			if len(containers) == 0 {
				fmt.Println("no containers found")
				return nil
			}

			fmt.Printf("%-40s %-28s %-10s %-10s\n", "CONTAINER ID", "TYPE", "STATUS", "ITERATION")
			for _, c := range containers {
				iteration := fmt.Sprintf("%d/%d", c.CurrentIteration, c.MaxIterations)
				if c.MaxIterations < 0 {
					iteration = fmt.Sprintf("%d/inf", c.CurrentIteration)
				}
				fmt.Printf("%-40s %-28s %-10s %-10s\n", c.ID, c.Type, c.Status, iteration)
			}
			fmt.Printf("\ntotal: %d\n", len(containers))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&containerType, "type", "", "filter by container type")
	return cmd
}

func newContainerGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <container-id>",
		Short: "Show detailed container state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			c, err := client.GetContainer(socket.GetContainerRequest{ContainerID: args[0], PlayerID: playerID})
			if err != nil {
				return fmt.Errorf("get container: %w", err)
			}

			fmt.Printf("container: %s\n", c.ID)
			fmt.Printf("  type:             %s\n", c.Type)
			fmt.Printf("  status:           %s\n", c.Status)
			fmt.Printf("  player id:        %d\n", c.PlayerID)
			fmt.Printf("  iteration:        %d/%d\n", c.CurrentIteration, c.MaxIterations)
			fmt.Printf("  restarts:         %d/%d\n", c.RestartCount, c.MaxRestarts)
			fmt.Printf("  created at:       %s\n", c.CreatedAt.Format(time.RFC3339))
			if c.LastError != "" {
				fmt.Printf("  last error:       %s\n", c.LastError)
			}
			return nil
		},
	}
}

func newContainerStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <container-id>",
		Short: "Stop a running container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			if err := client.StopContainer(socket.StopContainerRequest{ContainerID: args[0], PlayerID: playerID}); err != nil {
				return fmt.Errorf("stop container: %w", err)
			}
			fmt.Printf("stop requested: %s\n", args[0])
			return nil
		},
	}
}

func newContainerLogsCommand() *cobra.Command {
	var limit int
	var level string

	cmd := &cobra.Command{
		Use:   "logs <container-id>",
		Short: "Fetch logs for a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dial()
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			entries, err := client.GetContainerLogs(socket.GetContainerLogsRequest{
				ContainerID: args[0],
				PlayerID:    playerID,
				Level:       level,
				Limit:       limit,
			})
			if err != nil {
				return fmt.Errorf("get logs: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("no log entries found")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("[%s] [%s] %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Level, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of log entries")
	cmd.Flags().StringVar(&level, "level", "", "filter by log level")
	return cmd
}
