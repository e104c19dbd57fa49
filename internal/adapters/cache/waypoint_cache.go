// Package cache implements the two-layer world-model cache: per-waypoint
// records with a TTL-gated refill from the remote API, and per-system
// navigation graphs built on top of it. Both caches upsert through the same
// waypoint repository, closing the divergence the teacher's graph cache
// used to have between its own row and the waypoint table.
package cache

import (
	"context"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/system"
)

const DefaultWaypointTTL = 2 * time.Hour

// Refiller fetches the authoritative waypoint list for a system from the
// remote API; nil if no token is available for the refill.
type Refiller func(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error)

// WaypointCache is the read-through/refill-on-stale cache described in
// spec §4.4. Reads are lock-free; two concurrent refills for the same
// system may both hit the API, the later upsert simply wins.
type WaypointCache struct {
	repo  system.WaypointRepository
	clock shared.Clock
	ttl   time.Duration
}

func NewWaypointCache(repo system.WaypointRepository, clock shared.Clock, ttl time.Duration) *WaypointCache {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultWaypointTTL
	}
	return &WaypointCache{repo: repo, clock: clock, ttl: ttl}
}

// List returns the system's waypoints matching filters, refilling from the
// API via refill when the cached set is empty or stale. refill may be nil,
// in which case step 3 of the read path is skipped and whatever is cached
// (possibly empty) is returned filtered.
func (c *WaypointCache) List(ctx context.Context, systemSymbol string, filters system.WaypointFilters, refill Refiller) ([]*shared.Waypoint, error) {
	waypoints, oldestSynced, err := c.repo.ListBySystem(ctx, systemSymbol)
	if err != nil {
		return nil, err
	}

	fresh := len(waypoints) > 0 && oldestSynced != nil && c.clock.Now().Sub(*oldestSynced) < c.ttl
	if !fresh && refill != nil {
		fetched, err := refill(ctx, systemSymbol)
		if err == nil && len(fetched) > 0 {
			now := c.clock.Now()
			for _, w := range fetched {
				w.SyncedAt = now
			}
			if err := c.repo.Upsert(ctx, fetched); err == nil {
				waypoints = fetched
			}
		}
	}

	return filterWaypoints(waypoints, filters), nil
}

// Save upserts records as authoritative, stamping synced_at = now. It never
// merges traits with what's stored; the caller's records win outright.
func (c *WaypointCache) Save(ctx context.Context, records []*shared.Waypoint) error {
	now := c.clock.Now()
	for _, w := range records {
		w.SyncedAt = now
	}
	return c.repo.Upsert(ctx, records)
}

func filterWaypoints(waypoints []*shared.Waypoint, filters system.WaypointFilters) []*shared.Waypoint {
	out := make([]*shared.Waypoint, 0, len(waypoints))
	for _, w := range waypoints {
		if filters.Matches(w) {
			out = append(out, w)
		}
	}
	return out
}
