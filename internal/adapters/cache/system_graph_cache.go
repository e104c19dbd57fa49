package cache

import (
	"context"

	"github.com/fleetgrid/fleetd/internal/domain/system"
)

// SystemGraphCache builds and caches a complete graph over a system's
// waypoints. It has no TTL: invalidation is only explicit (force_refresh)
// or implicit (a downstream waypoint refill changing what List returns).
type SystemGraphCache struct {
	graphs     system.SystemGraphRepository
	waypoints  *WaypointCache
}

func NewSystemGraphCache(graphs system.SystemGraphRepository, waypoints *WaypointCache) *SystemGraphCache {
	return &SystemGraphCache{graphs: graphs, waypoints: waypoints}
}

// GetGraph returns the cached graph unless forceRefresh is set or none
// exists, in which case it rebuilds from the waypoint cache (which may
// itself refill from the API) and persists a single row for the system.
func (c *SystemGraphCache) GetGraph(ctx context.Context, systemSymbol string, forceRefresh bool, refill Refiller) (*system.NavigationGraph, error) {
	if !forceRefresh {
		if g, err := c.graphs.Get(ctx, systemSymbol); err == nil && g != nil {
			return g, nil
		}
	}

	waypoints, err := c.waypoints.List(ctx, systemSymbol, system.WaypointFilters{}, refill)
	if err != nil {
		return nil, err
	}

	graph := system.NewNavigationGraph(systemSymbol)
	for _, w := range waypoints {
		graph.AddWaypoint(w)
	}
	for i, a := range waypoints {
		for _, b := range waypoints[i+1:] {
			edgeType := system.EdgeTypeNormal
			if a.IsOrbitalOf(b) {
				edgeType = system.EdgeTypeOrbital
			}
			distance := a.DistanceTo(b)
			graph.AddEdge(a.Symbol, b.Symbol, distance, edgeType)
		}
	}

	if err := c.graphs.Put(ctx, graph); err != nil {
		return nil, err
	}
	return graph, nil
}
