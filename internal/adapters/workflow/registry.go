package workflow

import (
	"github.com/fleetgrid/fleetd/internal/adapters/supervisor"
	"github.com/fleetgrid/fleetd/internal/domain/container"
)

// NewRegistry builds the supervisor.Registry with every container.Type
// bound to its Step. Start rejects any type this registry is missing, so
// callers should check Validate() once at startup.
func NewRegistry() *supervisor.Registry {
	r := supervisor.NewRegistry()

	r.Register(container.TypeNavigate, Navigate)
	r.Register(container.TypeDock, Dock)
	r.Register(container.TypeOrbit, Orbit)
	r.Register(container.TypeRefuel, Refuel)
	r.Register(container.TypePurchaseShip, PurchaseShip)
	r.Register(container.TypeBatchPurchaseShips, BatchPurchaseShips)

	r.Register(container.TypeScoutTour, ScoutTour)
	r.Register(container.TypeScoutMarkets, ScoutMarkets)

	r.Register(container.TypeContractWorkflow, ContractWorkflow)
	r.Register(container.TypeContractFleetCoordinator, ContractFleetCoordinator)

	r.Register(container.TypeArbitrageCoordinator, ArbitrageCoordinator)
	r.Register(container.TypeArbitrageWorker, ArbitrageWorker)

	r.Register(container.TypeMiningCoordinator, MiningCoordinator)
	r.Register(container.TypeMiningWorker, MiningWorker)

	r.Register(container.TypeTransportWorker, TransportWorker)

	r.Register(container.TypeManufacturingCoordinator, ManufacturingCoordinator)
	r.Register(container.TypeManufacturingWorker, ManufacturingWorker)
	r.Register(container.TypeGoodsFactory, GoodsFactory)

	return r
}
