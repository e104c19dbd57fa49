package workflow

import (
	"context"
	"fmt"

	"github.com/fleetgrid/fleetd/internal/adapters/cache"
	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/system"
)

// refillFunc builds a cache.Refiller bound to a player/token, the shape
// every workflow handler passes to the waypoint and system-graph caches so
// a stale cache entry refills from the authoritative API. One page only:
// large systems paginating past it simply serve a partial (but still
// cached) waypoint set until the next refill.
func refillFunc(rc *supervisor.RunContext, systemSymbol string) cache.Refiller {
	return func(ctx context.Context, sym string) ([]*shared.Waypoint, error) {
		waypoints, _, err := rc.Deps.API.ListWaypoints(ctx, rc.Container.PlayerID(), rc.Token, sym, 1, 20)
		return waypoints, err
	}
}

// ScoutTour visits a system's waypoints one per iteration, recording the
// index it has reached so a restart resumes mid-tour instead of
// re-visiting from scratch. Route planning between stops is delegated to
// the routing service; visiting itself has no further domain semantics.
func ScoutTour(rc *supervisor.RunContext) error {
	systemSymbol, err := metadataString(rc, "system_symbol")
	if err != nil {
		return err
	}
	index := metadataInt(rc, "visited_index", 0)

	waypoints, err := rc.Deps.Waypoints.List(rc.Ctx, systemSymbol, system.WaypointFilters{}, refillFunc(rc, systemSymbol))
	if err != nil {
		return err
	}
	if index >= len(waypoints) {
		return supervisor.ErrDone
	}

	w := waypoints[index]
	rc.Log("INFO", fmt.Sprintf("scouting %s (%d/%d)", w.Symbol, index+1, len(waypoints)))
	index++
	rc.Container.UpdateMetadata(map[string]interface{}{"visited_index": index})

	if index >= len(waypoints) {
		return supervisor.ErrDone
	}
	return nil
}

// ScoutMarkets is ScoutTour's market-trait-filtered sibling: it only visits
// waypoints the cache reports as having a marketplace, one per iteration.
func ScoutMarkets(rc *supervisor.RunContext) error {
	systemSymbol, err := metadataString(rc, "system_symbol")
	if err != nil {
		return err
	}
	index := metadataInt(rc, "visited_index", 0)

	filters := system.WaypointFilters{Trait: "MARKETPLACE"}
	waypoints, err := rc.Deps.Waypoints.List(rc.Ctx, systemSymbol, filters, refillFunc(rc, systemSymbol))
	if err != nil {
		return err
	}
	if index >= len(waypoints) {
		return supervisor.ErrDone
	}

	w := waypoints[index]
	rc.Log("INFO", fmt.Sprintf("scanning market at %s (%d/%d)", w.Symbol, index+1, len(waypoints)))
	index++
	rc.Container.UpdateMetadata(map[string]interface{}{"visited_index": index})

	if index >= len(waypoints) {
		return supervisor.ErrDone
	}
	return nil
}
