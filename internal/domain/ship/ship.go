// Package ship holds the Ship snapshot: a point-in-time view of a ship's
// state as reported by the remote API. The authoritative copy lives behind
// that API; this is not a persisted row, only a value that flows through
// caches, workflow handlers, and the health monitor.
package ship

import (
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

type NavStatus string

const (
	NavStatusDocked   NavStatus = "DOCKED"
	NavStatusInOrbit  NavStatus = "IN_ORBIT"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

// Ship is a snapshot of a ship's reported state. ArrivalAt is non-nil iff
// NavStatus is IN_TRANSIT.
type Ship struct {
	Symbol      string
	PlayerID    int
	Location    string
	NavStatus   NavStatus
	Fuel        shared.Fuel
	Cargo       shared.Cargo
	EngineSpeed int
	ArrivalAt   *time.Time
}

// Valid checks the snapshot's invariants: arrival_at set iff IN_TRANSIT,
// fuel and cargo internally consistent.
func (s *Ship) Valid() bool {
	if (s.ArrivalAt != nil) != (s.NavStatus == NavStatusInTransit) {
		return false
	}
	if s.Fuel.Current < 0 || s.Fuel.Current > s.Fuel.Capacity {
		return false
	}
	if s.Cargo.Units < 0 || s.Cargo.Units > s.Cargo.Capacity {
		return false
	}
	return true
}

// IsArrived is true once arrival_at has passed, for ships still reported as
// IN_TRANSIT by a stale cache entry.
func (s *Ship) IsArrived(now time.Time) bool {
	return s.NavStatus == NavStatusInTransit && s.ArrivalAt != nil && !s.ArrivalAt.After(now)
}

func (s *Ship) String() string {
	return "Ship(" + s.Symbol + ")"
}
