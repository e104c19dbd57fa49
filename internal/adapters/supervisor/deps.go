package supervisor

import (
	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/adapters/cache"
	"github.com/fleetgrid/fleetd/internal/adapters/lock"
	"github.com/fleetgrid/fleetd/internal/domain/command"
	"github.com/fleetgrid/fleetd/internal/domain/player"
	"github.com/fleetgrid/fleetd/internal/domain/routing"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// Deps is the substrate a workflow Step draws on. A Step uses whichever
// fields its type needs; none is required to use all of them. Business
// logic beyond substrate dispatch (profitability math, extraction
// heuristics, arbitrage scoring) is not part of this collaborator set.
type Deps struct {
	API        *api.Client
	Players    player.Repository
	Locks      *lock.Manager
	Waypoints  *cache.WaypointCache
	Graphs     *cache.SystemGraphCache
	Routing    routing.Client
	Dispatcher command.Dispatcher

	// Clock is the one wall-clock source a Step may use; every wait or
	// backoff in a workflow goes through it so MockClock can drive tests
	// deterministically, per shared.Clock's no-direct-time-reads invariant.
	Clock shared.Clock
}
