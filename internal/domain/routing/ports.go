// Package routing holds the port to the external route-optimization
// service. Route/tour planning math itself is out of scope here; the
// substrate only needs a stable client contract a workflow handler can call
// and a circuit-breaker-friendly shape for its errors.
package routing

import (
	"context"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// Client plans a path between two waypoints in a system, given the
// waypoints the caller already has cached. The service is a separate
// process reached over HTTP; business logic beyond "ask for a plan" stays
// on its side of the boundary.
type Client interface {
	PlanRoute(ctx context.Context, req PlanRequest) (*Plan, error)
}

type PlanRequest struct {
	SystemSymbol  string
	StartWaypoint string
	GoalWaypoint  string
	FuelCapacity  int
	CurrentFuel   int
	EngineSpeed   int
	Waypoints     []*shared.Waypoint
}

type Plan struct {
	Steps            []PlanStep
	TotalFuelCost    int
	TotalTimeSeconds int
}

type PlanStep struct {
	Waypoint    string
	Mode        string // "BURN", "CRUISE", or "DRIFT"
	FuelCost    int
	TimeSeconds int
	Refuel      bool
}
