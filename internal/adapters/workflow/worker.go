package workflow

import (
	"fmt"

	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/routing"
	"github.com/fleetgrid/fleetd/internal/domain/system"
)

// workerTick is the shared substrate for every *_WORKER type and
// GOODS_FACTORY: fetch the assigned ship's live snapshot through the
// rate-limited client and log its cargo/nav state. A worker's actual job
// logic (what to mine, what to buy low and sell high, what recipe to run)
// is business logic out of scope here.
func workerTick(label string) supervisor.Step {
	return func(rc *supervisor.RunContext) error {
		shipSymbol, err := metadataString(rc, "ship_symbol")
		if err != nil {
			return err
		}
		s, err := rc.Deps.API.GetShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol)
		if err != nil {
			return err
		}
		rc.Log("INFO", fmt.Sprintf("%s: %s at %s (%s), cargo %d/%d", label, shipSymbol, s.Location, s.NavStatus, s.Cargo.Units, s.Cargo.Capacity))
		return nil
	}
}

// ArbitrageWorker drives one ship through a buy-low/sell-high loop.
func ArbitrageWorker(rc *supervisor.RunContext) error {
	return workerTick("arbitrage-worker")(rc)
}

// MiningWorker drives one ship through an extraction loop.
func MiningWorker(rc *supervisor.RunContext) error {
	return workerTick("mining-worker")(rc)
}

// ManufacturingWorker drives one ship feeding raw goods into a factory.
func ManufacturingWorker(rc *supervisor.RunContext) error {
	return workerTick("manufacturing-worker")(rc)
}

// GoodsFactory drives the conversion step at a fixed factory waypoint; it
// has no single assigned ship, so it reports against the factory id
// instead.
func GoodsFactory(rc *supervisor.RunContext) error {
	factoryID, err := metadataString(rc, "factory_id")
	if err != nil {
		return err
	}
	rc.Log("INFO", "goods-factory: tick for "+factoryID)
	return nil
}

// TransportWorker moves cargo between two waypoints, planning each leg
// through the external routing service rather than a hand-rolled pathing
// algorithm.
func TransportWorker(rc *supervisor.RunContext) error {
	shipSymbol, err := metadataString(rc, "ship_symbol")
	if err != nil {
		return err
	}
	goal, err := metadataString(rc, "goal_waypoint")
	if err != nil {
		return err
	}

	s, err := rc.Deps.API.GetShip(rc.Ctx, rc.Container.PlayerID(), rc.Token, shipSymbol)
	if err != nil {
		return err
	}
	if s.Location == goal {
		return supervisor.ErrDone
	}
	if rc.Deps.Routing == nil {
		rc.Log("WARN", "transport-worker: no routing client configured, holding position")
		return nil
	}

	systemSymbol, err := metadataString(rc, "system_symbol")
	if err != nil {
		return err
	}
	waypoints, werr := rc.Deps.Waypoints.List(rc.Ctx, systemSymbol, system.WaypointFilters{}, refillFunc(rc, systemSymbol))
	if werr != nil {
		return werr
	}

	plan, err := rc.Deps.Routing.PlanRoute(rc.Ctx, routing.PlanRequest{
		SystemSymbol:  systemSymbol,
		StartWaypoint: s.Location,
		GoalWaypoint:  goal,
		FuelCapacity:  s.Fuel.Capacity,
		CurrentFuel:   s.Fuel.Current,
		EngineSpeed:   s.EngineSpeed,
		Waypoints:     waypoints,
	})
	if err != nil {
		return err
	}
	rc.Log("INFO", fmt.Sprintf("transport-worker: %s plan has %d leg(s), %ds estimated", shipSymbol, len(plan.Steps), plan.TotalTimeSeconds))
	return nil
}
