// Package persistence implements the GORM-backed database gateway: one
// model and repository per persisted entity, plus opaque JSON-payload
// tables for the domains this substrate doesn't interpret (market data,
// contracts, mining operations, goods factories).
package persistence

import "time"

// PlayerModel is the players table.
type PlayerModel struct {
	ID              int       `gorm:"column:id;primaryKey;autoIncrement"`
	AgentSymbol     string    `gorm:"column:agent_symbol;unique;not null"`
	Token           string    `gorm:"column:token;not null"`
	Credits         int       `gorm:"column:credits;not null;default:0"`
	StartingFaction string    `gorm:"column:starting_faction"`
	Metadata        string    `gorm:"column:metadata;type:text"`
	LastActive      time.Time `gorm:"column:last_active;not null"`
}

func (PlayerModel) TableName() string { return "players" }

// WaypointModel is the waypoints table, unique on symbol.
type WaypointModel struct {
	Symbol       string    `gorm:"column:symbol;primaryKey"`
	SystemSymbol string    `gorm:"column:system_symbol;not null;index"`
	Type         string    `gorm:"column:type;not null"`
	X            float64   `gorm:"column:x;not null"`
	Y            float64   `gorm:"column:y;not null"`
	Traits       string    `gorm:"column:traits;type:text"`
	HasFuel      bool      `gorm:"column:has_fuel;not null;default:false"`
	Orbitals     string    `gorm:"column:orbitals;type:text"`
	SyncedAt     time.Time `gorm:"column:synced_at;not null"`
}

func (WaypointModel) TableName() string { return "waypoints" }

// SystemGraphModel is the system_graphs table: one row per system.
type SystemGraphModel struct {
	SystemSymbol string    `gorm:"column:system_symbol;primaryKey"`
	GraphData    string    `gorm:"column:graph_data;type:text;not null"`
	BuiltAt      time.Time `gorm:"column:built_at;not null"`
}

func (SystemGraphModel) TableName() string { return "system_graphs" }

// ContainerModel is the containers table.
type ContainerModel struct {
	ID               string     `gorm:"column:id;primaryKey"`
	PlayerID         int        `gorm:"column:player_id;not null;index"`
	ContainerType    string     `gorm:"column:container_type;not null"`
	Status           string     `gorm:"column:status;not null"`
	CurrentIteration int        `gorm:"column:current_iteration;not null;default:0"`
	MaxIterations    int        `gorm:"column:max_iterations;not null;default:-1"`
	RestartCount     int        `gorm:"column:restart_count;not null;default:0"`
	MaxRestarts      int        `gorm:"column:max_restarts;not null;default:3"`
	Metadata         string     `gorm:"column:metadata;type:text"`
	LastError        string     `gorm:"column:last_error;type:text"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	StartedAt        *time.Time `gorm:"column:started_at"`
	StoppedAt        *time.Time `gorm:"column:stopped_at"`
}

func (ContainerModel) TableName() string { return "containers" }

// ContainerLogModel is the container_logs table: append-only, queried by
// (container_id, level, since, limit, offset).
type ContainerLogModel struct {
	ID          int       `gorm:"column:id;primaryKey;autoIncrement"`
	ContainerID string    `gorm:"column:container_id;not null;index"`
	PlayerID    int       `gorm:"column:player_id;not null"`
	Level       string    `gorm:"column:level;not null"`
	Message     string    `gorm:"column:message;type:text;not null"`
	Timestamp   time.Time `gorm:"column:timestamp;not null;index"`
}

func (ContainerLogModel) TableName() string { return "container_logs" }

// ShipAssignmentModel is the ship_assignments table. released_at is
// nullable; a partial unique index on (ship_symbol) WHERE released_at IS
// NULL, created by AutoMigrate on both postgres and sqlite, enforces the
// "at most one active assignment per ship" invariant.
type ShipAssignmentModel struct {
	ID            uint       `gorm:"column:id;primaryKey;autoIncrement"`
	ShipSymbol    string     `gorm:"column:ship_symbol;not null;index;uniqueIndex:idx_ship_assignments_active_ship,where:released_at IS NULL"`
	PlayerID      int        `gorm:"column:player_id;not null"`
	ContainerID   string     `gorm:"column:container_id;not null;index"`
	AssignedAt    time.Time  `gorm:"column:assigned_at;not null"`
	ReleasedAt    *time.Time `gorm:"column:released_at"`
	ReleaseReason string     `gorm:"column:release_reason"`
}

func (ShipAssignmentModel) TableName() string { return "ship_assignments" }

// Opaque per-player-isolated tables: the core imposes no semantics on
// these beyond storing and retrieving a JSON payload under an id the
// owning business-logic layer defines.

type MarketDataModel struct {
	WaypointSymbol string    `gorm:"column:waypoint_symbol;primaryKey"`
	PlayerID       int       `gorm:"column:player_id;primaryKey"`
	Payload        string    `gorm:"column:payload;type:text;not null"`
	LastUpdated    time.Time `gorm:"column:last_updated;not null"`
}

func (MarketDataModel) TableName() string { return "market_data" }

type ContractModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PlayerID    int       `gorm:"column:player_id;not null;index"`
	Payload     string    `gorm:"column:payload;type:text;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (ContractModel) TableName() string { return "contracts" }

type MiningOperationModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PlayerID    int       `gorm:"column:player_id;not null;index"`
	Payload     string    `gorm:"column:payload;type:text;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (MiningOperationModel) TableName() string { return "mining_operations" }

type GoodsFactoryModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	PlayerID    int       `gorm:"column:player_id;not null;index"`
	Payload     string    `gorm:"column:payload;type:text;not null"`
	LastUpdated time.Time `gorm:"column:last_updated;not null"`
}

func (GoodsFactoryModel) TableName() string { return "goods_factories" }

// AllModels lists every model for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&PlayerModel{},
		&WaypointModel{},
		&SystemGraphModel{},
		&ContainerModel{},
		&ContainerLogModel{},
		&ShipAssignmentModel{},
		&MarketDataModel{},
		&ContractModel{},
		&MiningOperationModel{},
		&GoodsFactoryModel{},
	}
}
