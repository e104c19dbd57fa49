package workflow

import (
	"fmt"
	"time"

	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
)

const coordinatorTickInterval = 10 * time.Second

// coordinatorTick is the shared substrate for every *_COORDINATOR type: a
// heartbeat that reports how many ships this player currently has assigned
// to any container, then sleeps one scan interval. A coordinator's actual
// dispatch decisions (which ship gets which job, in what order) are
// business logic out of scope here; this only keeps the lifecycle and
// lock-manager substrate exercised.
func coordinatorTick(label string) supervisor.Step {
	return func(rc *supervisor.RunContext) error {
		if rc.Deps.Locks != nil {
			active, err := rc.Deps.Locks.ListActive(rc.Ctx)
			if err != nil {
				return err
			}
			mine := 0
			for _, a := range active {
				if a.PlayerID == rc.Container.PlayerID() {
					mine++
				}
			}
			rc.Log("INFO", fmt.Sprintf("%s: %d ship(s) assigned", label, mine))
		}
		return rc.Deps.Clock.Sleep(rc.Ctx, coordinatorTickInterval)
	}
}

// ContractFleetCoordinator oversees ships working a contract fleet.
func ContractFleetCoordinator(rc *supervisor.RunContext) error {
	return coordinatorTick("contract-fleet-coordinator")(rc)
}

// ArbitrageCoordinator oversees ships running trade-arbitrage routes.
func ArbitrageCoordinator(rc *supervisor.RunContext) error {
	return coordinatorTick("arbitrage-coordinator")(rc)
}

// MiningCoordinator oversees ships running extraction loops.
func MiningCoordinator(rc *supervisor.RunContext) error {
	return coordinatorTick("mining-coordinator")(rc)
}

// ManufacturingCoordinator oversees ships feeding a manufacturing chain.
func ManufacturingCoordinator(rc *supervisor.RunContext) error {
	return coordinatorTick("manufacturing-coordinator")(rc)
}
