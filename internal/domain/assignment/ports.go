package assignment

import (
	"context"
	"time"
)

// Repository persists ship assignments. Acquire-time exclusivity is enforced
// by the database's partial-unique index on (ship_symbol) WHERE
// released_at IS NULL; concurrent Create calls for the same ship are
// resolved by the database, not by application-level locking.
type Repository interface {
	// Create inserts a new active assignment. Returns shared.KindAlreadyAssigned
	// if an active assignment for the ship already exists.
	Create(ctx context.Context, a *ShipAssignment) error

	FindActiveByShip(ctx context.Context, shipSymbol string) (*ShipAssignment, error)
	FindActiveByContainer(ctx context.Context, containerID string) ([]*ShipAssignment, error)
	ListActive(ctx context.Context) ([]*ShipAssignment, error)

	// Release marks the active assignment for shipSymbol released. Returns
	// shared.KindConflict if there is no active assignment (NoOp on
	// double-release), unless force is true.
	Release(ctx context.Context, shipSymbol, reason string, force bool) error

	// ReleaseByContainer releases every active assignment owned by containerID.
	ReleaseByContainer(ctx context.Context, containerID, reason string) (int, error)

	// ReleaseAllActive releases every active assignment regardless of owner,
	// used for the daemon-startup sweep.
	ReleaseAllActive(ctx context.Context, reason string) (int, error)

	// ReleaseOrphans releases active assignments whose container id is not
	// in liveContainerIDs.
	ReleaseOrphans(ctx context.Context, liveContainerIDs map[string]bool, reason string) (int, error)

	// ReleaseStale releases active assignments older than timeout.
	ReleaseStale(ctx context.Context, timeout time.Duration, reason string) (int, error)
}
