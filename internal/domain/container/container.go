package container

import (
	"fmt"
	"time"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// ContainerStatus is the externally-visible status of a Container, matching
// shared.LifecycleStatus one for one (Container composes the lifecycle state
// machine rather than reimplementing it).
type ContainerStatus = shared.LifecycleStatus

const (
	ContainerStatusPending   = shared.LifecycleStatusPending
	ContainerStatusRunning   = shared.LifecycleStatusRunning
	ContainerStatusStopping  = shared.LifecycleStatusStopping
	ContainerStatusStopped   = shared.LifecycleStatusStopped
	ContainerStatusCompleted = shared.LifecycleStatusCompleted
	ContainerStatusFailed    = shared.LifecycleStatusFailed
)

// Type is the closed, build-time-fixed set of container workflows. Adding a
// new type requires a code change (a new factory registration), not a config
// change — this is intentional: it replaces runtime polymorphism with a
// tagged union the supervisor can exhaustively switch over.
type Type string

const (
	TypeNavigate                 Type = "NAVIGATE"
	TypeDock                     Type = "DOCK"
	TypeOrbit                    Type = "ORBIT"
	TypeRefuel                   Type = "REFUEL"
	TypeContractWorkflow         Type = "CONTRACT_WORKFLOW"
	TypeContractFleetCoordinator Type = "CONTRACT_FLEET_COORDINATOR"
	TypeArbitrageCoordinator     Type = "ARBITRAGE_COORDINATOR"
	TypeArbitrageWorker          Type = "ARBITRAGE_WORKER"
	TypeMiningCoordinator        Type = "MINING_COORDINATOR"
	TypeMiningWorker             Type = "MINING_WORKER"
	TypeTransportWorker          Type = "TRANSPORT_WORKER"
	TypeManufacturingCoordinator Type = "MANUFACTURING_COORDINATOR"
	TypeManufacturingWorker      Type = "MANUFACTURING_WORKER"
	TypeGoodsFactory             Type = "GOODS_FACTORY"
	TypeScoutTour                Type = "SCOUT_TOUR"
	TypeScoutMarkets             Type = "SCOUT_MARKETS"
	TypePurchaseShip             Type = "PURCHASE_SHIP"
	TypeBatchPurchaseShips       Type = "BATCH_PURCHASE_SHIPS"
)

// AllTypes enumerates the closed set, for validation and for the supervisor's
// factory registry completeness check at startup.
var AllTypes = []Type{
	TypeNavigate, TypeDock, TypeOrbit, TypeRefuel,
	TypeContractWorkflow, TypeContractFleetCoordinator,
	TypeArbitrageCoordinator, TypeArbitrageWorker,
	TypeMiningCoordinator, TypeMiningWorker, TypeTransportWorker,
	TypeManufacturingCoordinator, TypeManufacturingWorker, TypeGoodsFactory,
	TypeScoutTour, TypeScoutMarkets, TypePurchaseShip, TypeBatchPurchaseShips,
}

func (t Type) Valid() bool {
	for _, candidate := range AllTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// resumableTypes is the fixed, build-time table spec.md §4.7.7 requires:
// per type, whether a non-terminal container found at startup is resumed by
// re-invoking its factory (true) or marked FAILED("orphaned-at-startup")
// with its ship assignments released (false). One-shot action types are not
// resumable: re-running NAVIGATE/DOCK/ORBIT/REFUEL/PURCHASE_SHIP mid-flight
// against whatever the ship actually did while the daemon was down risks a
// duplicate actuation the coordinators and workers can tolerate by simply
// re-evaluating fleet state on their next iteration.
var resumableTypes = map[Type]bool{
	TypeContractWorkflow:         true,
	TypeContractFleetCoordinator: true,
	TypeArbitrageCoordinator:     true,
	TypeArbitrageWorker:          true,
	TypeMiningCoordinator:        true,
	TypeMiningWorker:             true,
	TypeTransportWorker:          true,
	TypeManufacturingCoordinator: true,
	TypeManufacturingWorker:      true,
	TypeGoodsFactory:             true,
	TypeScoutTour:                true,
	TypeScoutMarkets:             true,
}

// Resumable reports whether t is resumed across a daemon restart rather than
// failed and released.
func (t Type) Resumable() bool {
	return resumableTypes[t]
}

// DefaultMaxRestarts is the spec default for max_restarts.
const DefaultMaxRestarts = 3

// Container is a long-running supervised task with typed metadata and a
// lifecycle, executing one workflow instance. It composes
// shared.LifecycleStateMachine for status/timestamps and layers on
// iteration control, restart bookkeeping, and opaque metadata.
type Container struct {
	id            string
	containerType Type
	playerID      int

	lifecycle *shared.LifecycleStateMachine

	currentIteration int
	maxIterations    int // -1 means unbounded

	restartCount int
	maxRestarts  int

	metadata map[string]interface{}
	clock    shared.Clock
}

// New creates a Container in PENDING state. maxIterations = -1 means unbounded.
func New(id string, containerType Type, playerID int, maxIterations int, metadata map[string]interface{}, clock shared.Clock) (*Container, error) {
	if id == "" {
		return nil, shared.NewBadRequestError("container id cannot be empty")
	}
	if !containerType.Valid() {
		return nil, shared.NewBadRequestError(fmt.Sprintf("unknown container type %q", containerType))
	}
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &Container{
		id:            id,
		containerType: containerType,
		playerID:      playerID,
		lifecycle:     shared.NewLifecycleStateMachine(clock),
		maxIterations: maxIterations,
		maxRestarts:   DefaultMaxRestarts,
		metadata:      metadata,
		clock:         clock,
	}, nil
}

func (c *Container) ID() string                       { return c.id }
func (c *Container) Type() Type                        { return c.containerType }
func (c *Container) PlayerID() int                     { return c.playerID }
func (c *Container) CurrentIteration() int             { return c.currentIteration }
func (c *Container) MaxIterations() int                { return c.maxIterations }
func (c *Container) RestartCount() int                 { return c.restartCount }
func (c *Container) MaxRestarts() int                  { return c.maxRestarts }
func (c *Container) Metadata() map[string]interface{}  { return c.metadata }
func (c *Container) Status() ContainerStatus           { return c.lifecycle.Status() }
func (c *Container) CreatedAt() time.Time              { return c.lifecycle.CreatedAt() }
func (c *Container) StartedAt() *time.Time             { return c.lifecycle.StartedAt() }
func (c *Container) StoppedAt() *time.Time             { return c.lifecycle.StoppedAt() }
func (c *Container) LastError() error                  { return c.lifecycle.LastError() }

// SetMaxRestarts overrides the default, e.g. from configuration.
func (c *Container) SetMaxRestarts(n int) { c.maxRestarts = n }

func (c *Container) Start() error            { return c.lifecycle.Start() }
func (c *Container) Complete() error         { return c.lifecycle.Complete() }
func (c *Container) Fail(err error) error    { return c.lifecycle.Fail(err) }
func (c *Container) Stop() error             { return c.lifecycle.Stop() }
func (c *Container) MarkStopped() error      { return c.lifecycle.MarkStopped() }

// IncrementIteration advances the counter; legal only while RUNNING.
func (c *Container) IncrementIteration() error {
	if c.Status() != ContainerStatusRunning {
		return shared.NewInvalidTransitionError("cannot increment iteration in " + string(c.Status()))
	}
	c.currentIteration++
	return nil
}

// ShouldContinue is true iff max_iterations = -1 or current < max.
func (c *Container) ShouldContinue() bool {
	if c.maxIterations == -1 {
		return true
	}
	return c.currentIteration < c.maxIterations
}

// CanRestart is true iff FAILED and restart_count < max_restarts.
func (c *Container) CanRestart() bool {
	return c.Status() == ContainerStatusFailed && c.restartCount < c.maxRestarts
}

// ResetForRestart implements FAILED -> PENDING, incrementing restart_count.
// Fails with InvalidTransition if CanRestart() is false.
func (c *Container) ResetForRestart() error {
	if !c.CanRestart() {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("container %s cannot restart (restarts %d/%d, status %s)", c.id, c.restartCount, c.maxRestarts, c.Status()))
	}
	if err := c.lifecycle.ResetForRestart(); err != nil {
		return err
	}
	c.restartCount++
	return nil
}

func (c *Container) UpdateMetadata(updates map[string]interface{}) {
	if c.metadata == nil {
		c.metadata = make(map[string]interface{})
	}
	for k, v := range updates {
		c.metadata[k] = v
	}
}

func (c *Container) MetadataValue(key string) (interface{}, bool) {
	v, ok := c.metadata[key]
	return v, ok
}

func (c *Container) IsRunning() bool  { return c.Status() == ContainerStatusRunning }
func (c *Container) IsStopping() bool { return c.Status() == ContainerStatusStopping }
func (c *Container) IsFinished() bool { return c.lifecycle.IsTerminal() }

// RuntimeDuration is wall time since started_at, up to stopped_at if set
// or now otherwise. Zero if the container has never started.
func (c *Container) RuntimeDuration() time.Duration {
	started := c.StartedAt()
	if started == nil {
		return 0
	}
	end := c.clock.Now()
	if stopped := c.StoppedAt(); stopped != nil {
		end = *stopped
	}
	return end.Sub(*started)
}

// Recover restores a Container's lifecycle state from persisted fields,
// for use only by the persistence layer's Container reconstruction path.
func Recover(
	id string, containerType Type, playerID int,
	status ContainerStatus,
	currentIteration, maxIterations, restartCount, maxRestarts int,
	metadata map[string]interface{},
	createdAt time.Time, startedAt, stoppedAt *time.Time, lastError error,
	clock shared.Clock,
) *Container {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	c := &Container{
		id:               id,
		containerType:    containerType,
		playerID:         playerID,
		lifecycle:        shared.NewLifecycleStateMachine(clock),
		currentIteration: currentIteration,
		maxIterations:    maxIterations,
		restartCount:     restartCount,
		maxRestarts:      maxRestarts,
		metadata:         metadata,
		clock:            clock,
	}
	c.lifecycle.RecoverFromPersistence(status, createdAt, startedAt, stoppedAt, lastError)
	return c
}

func (c *Container) String() string {
	return fmt.Sprintf("Container[%s type=%s status=%s iter=%d/%d restarts=%d/%d]",
		c.id, c.containerType, c.Status(), c.currentIteration, c.maxIterations, c.restartCount, c.maxRestarts)
}
