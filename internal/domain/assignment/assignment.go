// Package assignment holds the ShipAssignment entity: the mutual-exclusion
// record that prevents two containers from driving the same ship.
package assignment

import (
	"fmt"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// ShipAssignment is the tuple (ship_symbol, player_id, container_id,
// assigned_at, released_at, release_reason). While released_at is nil the
// assignment is active and the ship is locked to container_id.
type ShipAssignment struct {
	ShipSymbol    string
	PlayerID      int
	ContainerID   string
	AssignedAt    time.Time
	ReleasedAt    *time.Time
	ReleaseReason string
}

// New creates a new active assignment.
func New(shipSymbol string, playerID int, containerID string, now time.Time) *ShipAssignment {
	return &ShipAssignment{
		ShipSymbol:  shipSymbol,
		PlayerID:    playerID,
		ContainerID: containerID,
		AssignedAt:  now,
	}
}

func (a *ShipAssignment) IsActive() bool { return a.ReleasedAt == nil }

// Release marks the assignment released. Re-releasing an already-released
// assignment is a NoOp error per spec; ForceRelease bypasses that check.
func (a *ShipAssignment) Release(reason string, now time.Time) error {
	if !a.IsActive() {
		return shared.NewConflictError(fmt.Sprintf("assignment for %s already released", a.ShipSymbol))
	}
	a.ForceRelease(reason, now)
	return nil
}

func (a *ShipAssignment) ForceRelease(reason string, now time.Time) {
	a.ReleasedAt = &now
	a.ReleaseReason = reason
}

// IsStale reports whether assigned_at + timeout <= now.
func (a *ShipAssignment) IsStale(timeout time.Duration, now time.Time) bool {
	if !a.IsActive() {
		return false
	}
	return !a.AssignedAt.Add(timeout).After(now)
}

func (a *ShipAssignment) String() string {
	return fmt.Sprintf("ShipAssignment[ship=%s container=%s active=%v]", a.ShipSymbol, a.ContainerID, a.IsActive())
}
