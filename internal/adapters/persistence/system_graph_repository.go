package persistence

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/system"
)

// SystemGraphRepository implements system.SystemGraphRepository using GORM,
// one row per system with no TTL: invalidation is explicit (Put overwrites).
type SystemGraphRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

func NewSystemGraphRepository(db *gorm.DB, clock shared.Clock) *SystemGraphRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SystemGraphRepository{db: db, clock: clock}
}

type graphJSON struct {
	Waypoints map[string]*shared.Waypoint `json:"waypoints"`
	Edges     []system.GraphEdge          `json:"edges"`
}

func (r *SystemGraphRepository) Get(ctx context.Context, systemSymbol string) (*system.NavigationGraph, error) {
	var model SystemGraphModel
	err := r.db.WithContext(ctx).Where("system_symbol = ?", systemSymbol).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, shared.NewInternalError("get system graph", err)
	}

	var payload graphJSON
	if err := json.Unmarshal([]byte(model.GraphData), &payload); err != nil {
		return nil, shared.NewInternalError("unmarshal system graph", err)
	}

	graph := system.NewNavigationGraph(systemSymbol)
	graph.Waypoints = payload.Waypoints
	graph.Edges = payload.Edges
	return graph, nil
}

func (r *SystemGraphRepository) Put(ctx context.Context, graph *system.NavigationGraph) error {
	payload := graphJSON{Waypoints: graph.Waypoints, Edges: graph.Edges}
	data, err := json.Marshal(payload)
	if err != nil {
		return shared.NewInternalError("marshal system graph", err)
	}

	model := SystemGraphModel{
		SystemSymbol: graph.SystemSymbol,
		GraphData:    string(data),
		BuiltAt:      r.clock.Now(),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "system_symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"graph_data", "built_at"}),
	}).Create(&model).Error
	if err != nil {
		return shared.NewInternalError("put system graph", err)
	}
	return nil
}
