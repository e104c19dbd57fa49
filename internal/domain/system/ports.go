package system

import (
	"context"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// WaypointRepository is the database-backed store the waypoint cache reads
// through and refills into. ListBySystem returns the oldest synced_at
// alongside the rows so the cache can apply the TTL check without a second
// query.
type WaypointRepository interface {
	ListBySystem(ctx context.Context, systemSymbol string) (waypoints []*shared.Waypoint, oldestSyncedAt *time.Time, err error)
	Upsert(ctx context.Context, waypoints []*shared.Waypoint) error
}

// SystemGraphRepository persists one row per system, keyed by system symbol.
type SystemGraphRepository interface {
	Get(ctx context.Context, systemSymbol string) (*NavigationGraph, error)
	Put(ctx context.Context, graph *NavigationGraph) error
}

// WaypointFilters narrows a waypoint-cache read; applied after the read,
// never influencing the upstream API query (spec requirement).
type WaypointFilters struct {
	Trait        string
	ExcludeTrait string
	HasFuel      *bool
	Type         string
}

func (f WaypointFilters) Matches(w *shared.Waypoint) bool {
	if f.Trait != "" && !containsTrait(w.Traits, f.Trait) {
		return false
	}
	if f.ExcludeTrait != "" && containsTrait(w.Traits, f.ExcludeTrait) {
		return false
	}
	if f.HasFuel != nil && w.HasFuel != *f.HasFuel {
		return false
	}
	if f.Type != "" && w.Type != f.Type {
		return false
	}
	return true
}

func containsTrait(traits []string, trait string) bool {
	for _, t := range traits {
		if t == trait {
			return true
		}
	}
	return false
}
