package container

import "context"

// Repository persists Container state changes and serves the supervisor's
// startup-recovery and restart-policy queries. All operations are
// player_id-scoped except where noted.
type Repository interface {
	Add(ctx context.Context, c *Container) error
	Update(ctx context.Context, c *Container) error
	FindByID(ctx context.Context, playerID int, id string) (*Container, error)

	// FindRunningByType backs singleton-coordinator checks (e.g. at most one
	// RUNNING MINING_COORDINATOR per player); workflow factories decide what
	// "running" means for their type, this just answers the query.
	FindRunningByType(ctx context.Context, playerID int, containerType Type) ([]*Container, error)

	ListByStatus(ctx context.Context, playerID int, status ContainerStatus) ([]*Container, error)

	// ListNonTerminal backs startup recovery: every container not in a
	// terminal status when the supervisor last exited.
	ListNonTerminal(ctx context.Context, playerID int) ([]*Container, error)
}
