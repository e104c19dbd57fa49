package persistence

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// WaypointRepository implements system.WaypointRepository using GORM.
type WaypointRepository struct {
	db *gorm.DB
}

func NewWaypointRepository(db *gorm.DB) *WaypointRepository {
	return &WaypointRepository{db: db}
}

func (r *WaypointRepository) ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, *time.Time, error) {
	var models []WaypointModel
	if err := r.db.WithContext(ctx).Where("system_symbol = ?", systemSymbol).Find(&models).Error; err != nil {
		return nil, nil, shared.NewInternalError("list waypoints by system", err)
	}

	waypoints := make([]*shared.Waypoint, 0, len(models))
	var oldest *time.Time
	for i := range models {
		w, err := modelToWaypoint(&models[i])
		if err != nil {
			return nil, nil, err
		}
		waypoints = append(waypoints, w)
		if oldest == nil || w.SyncedAt.Before(*oldest) {
			t := w.SyncedAt
			oldest = &t
		}
	}
	return waypoints, oldest, nil
}

// Upsert inserts or overwrites waypoints keyed by symbol; the API response
// is authoritative so traits and coordinates are replaced, never merged.
func (r *WaypointRepository) Upsert(ctx context.Context, waypoints []*shared.Waypoint) error {
	if len(waypoints) == 0 {
		return nil
	}
	models := make([]*WaypointModel, 0, len(waypoints))
	for _, w := range waypoints {
		model, err := waypointToModel(w)
		if err != nil {
			return err
		}
		models = append(models, model)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		UpdateAll: true,
	}).Create(&models).Error
	if err != nil {
		return shared.NewInternalError("upsert waypoints", err)
	}
	return nil
}

func modelToWaypoint(model *WaypointModel) (*shared.Waypoint, error) {
	var traits []string
	if model.Traits != "" {
		_ = json.Unmarshal([]byte(model.Traits), &traits)
	}
	var orbitals []string
	if model.Orbitals != "" {
		_ = json.Unmarshal([]byte(model.Orbitals), &orbitals)
	}
	return &shared.Waypoint{
		Symbol:       model.Symbol,
		X:            model.X,
		Y:            model.Y,
		SystemSymbol: model.SystemSymbol,
		Type:         model.Type,
		Traits:       traits,
		HasFuel:      model.HasFuel,
		Orbitals:     orbitals,
		SyncedAt:     model.SyncedAt,
	}, nil
}

func waypointToModel(w *shared.Waypoint) (*WaypointModel, error) {
	var traitsJSON, orbitalsJSON string
	if len(w.Traits) > 0 {
		b, err := json.Marshal(w.Traits)
		if err != nil {
			return nil, shared.NewInternalError("marshal traits", err)
		}
		traitsJSON = string(b)
	}
	if len(w.Orbitals) > 0 {
		b, err := json.Marshal(w.Orbitals)
		if err != nil {
			return nil, shared.NewInternalError("marshal orbitals", err)
		}
		orbitalsJSON = string(b)
	}
	return &WaypointModel{
		Symbol:       w.Symbol,
		SystemSymbol: w.SystemSymbol,
		Type:         w.Type,
		X:            w.X,
		Y:            w.Y,
		Traits:       traitsJSON,
		HasFuel:      w.HasFuel,
		Orbitals:     orbitalsJSON,
		SyncedAt:     w.SyncedAt,
	}, nil
}
