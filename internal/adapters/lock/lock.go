// Package lock implements the ship-assignment lock manager: the exclusion
// mechanism preventing two containers from driving the same ship. It is a
// thin, database-backed layer over assignment.Repository — exclusivity is
// enforced by the repository's partial-unique index, not in-process
// locking, so acquire() is safe across multiple daemon goroutines without
// an application-level mutex.
package lock

import (
	"context"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/assignment"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

const DefaultStaleTimeout = 30 * time.Minute

type Manager struct {
	repo  assignment.Repository
	clock shared.Clock
}

func NewManager(repo assignment.Repository, clock shared.Clock) *Manager {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Manager{repo: repo, clock: clock}
}

// Acquire creates a new active assignment, failing with KindAlreadyAssigned
// if the ship is already locked to another container.
func (m *Manager) Acquire(ctx context.Context, shipSymbol string, playerID int, containerID string) (*assignment.ShipAssignment, error) {
	a := assignment.New(shipSymbol, playerID, containerID, m.clock.Now())
	if err := m.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (m *Manager) Release(ctx context.Context, shipSymbol, reason string) error {
	return m.repo.Release(ctx, shipSymbol, reason, false)
}

func (m *Manager) ForceRelease(ctx context.Context, shipSymbol, reason string) error {
	return m.repo.Release(ctx, shipSymbol, reason, true)
}

func (m *Manager) ReleaseByContainer(ctx context.Context, containerID, reason string) (int, error) {
	return m.repo.ReleaseByContainer(ctx, containerID, reason)
}

// ReleaseAllActive is the daemon-startup sweep dropping assignments left
// over from a previous run.
func (m *Manager) ReleaseAllActive(ctx context.Context, reason string) (int, error) {
	return m.repo.ReleaseAllActive(ctx, reason)
}

func (m *Manager) CleanOrphans(ctx context.Context, liveContainerIDs map[string]bool, reason string) (int, error) {
	return m.repo.ReleaseOrphans(ctx, liveContainerIDs, reason)
}

func (m *Manager) CleanStale(ctx context.Context, timeout time.Duration, reason string) (int, error) {
	if timeout <= 0 {
		timeout = DefaultStaleTimeout
	}
	return m.repo.ReleaseStale(ctx, timeout, reason)
}

func (m *Manager) FindByShip(ctx context.Context, shipSymbol string) (*assignment.ShipAssignment, error) {
	return m.repo.FindActiveByShip(ctx, shipSymbol)
}

func (m *Manager) ListActive(ctx context.Context) ([]*assignment.ShipAssignment, error) {
	return m.repo.ListActive(ctx)
}
