package clicmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fleetgrid/fleetd/internal/adapters/socket"
	"github.com/fleetgrid/fleetd/internal/domain/container"
)

func newRegisterCommand() *cobra.Command {
	var containerType string
	var maxIterations int
	var metadataJSON string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Start a new container",
		Long: `Register a new container on the daemon. --type must be one of the
fixed container types fleetd understands; --metadata is a JSON object
interpreted by that type's workflow step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !container.Type(containerType).Valid() {
				return fmt.Errorf("unknown container type %q", containerType)
			}
			if playerID == 0 {
				return fmt.Errorf("--player-id is required")
			}

			metadata := map[string]interface{}{}
			if metadataJSON != "" {
				if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
					return fmt.Errorf("decode --metadata: %w", err)
				}
			}

			client, err := dial()
			if err != nil {
				return fmt.Errorf("connect to daemon: %w", err)
			}
			defer client.Close()

			id, err := client.RegisterContainer(socket.RegisterContainerRequest{
				Type:          containerType,
				PlayerID:      playerID,
				MaxIterations: maxIterations,
				Metadata:      metadata,
			})
			if err != nil {
				return fmt.Errorf("register container: %w", err)
			}
			fmt.Printf("container registered: %s\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&containerType, "type", "", "container type, e.g. NAVIGATE")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", -1, "iteration cap, -1 for unbounded")
	cmd.Flags().StringVar(&metadataJSON, "metadata", "", "JSON object passed through as container metadata")
	cmd.MarkFlagRequired("type")
	return cmd
}
