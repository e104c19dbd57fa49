package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/domain/assignment"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// ShipAssignmentRepository implements assignment.Repository using GORM.
// Exclusivity relies on the database's partial-unique index on
// ship_symbol WHERE released_at IS NULL; Create pre-checks for an active
// row, and an insert that loses a race on the index is reported the same way.
type ShipAssignmentRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

func NewShipAssignmentRepository(db *gorm.DB, clock shared.Clock) *ShipAssignmentRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ShipAssignmentRepository{db: db, clock: clock}
}

func (r *ShipAssignmentRepository) Create(ctx context.Context, a *assignment.ShipAssignment) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("ship_symbol = ? AND released_at IS NULL", a.ShipSymbol).
		Count(&count).Error
	if err != nil {
		return shared.NewInternalError("check active assignment", err)
	}
	if count > 0 {
		return shared.NewAlreadyAssignedError("ship " + a.ShipSymbol + " already assigned")
	}

	model := &ShipAssignmentModel{
		ShipSymbol:  a.ShipSymbol,
		PlayerID:    a.PlayerID,
		ContainerID: a.ContainerID,
		AssignedAt:  a.AssignedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		var active int64
		if r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
			Where("ship_symbol = ? AND released_at IS NULL", a.ShipSymbol).
			Count(&active).Error == nil && active > 0 {
			return shared.NewAlreadyAssignedError("ship " + a.ShipSymbol + " already assigned")
		}
		return shared.NewInternalError("create ship assignment", err)
	}
	return nil
}

func (r *ShipAssignmentRepository) FindActiveByShip(ctx context.Context, shipSymbol string) (*assignment.ShipAssignment, error) {
	var model ShipAssignmentModel
	err := r.db.WithContext(ctx).
		Where("ship_symbol = ? AND released_at IS NULL", shipSymbol).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("no active assignment for ship " + shipSymbol)
		}
		return nil, shared.NewInternalError("find active assignment by ship", err)
	}
	return modelToAssignment(&model), nil
}

func (r *ShipAssignmentRepository) FindActiveByContainer(ctx context.Context, containerID string) ([]*assignment.ShipAssignment, error) {
	var models []ShipAssignmentModel
	err := r.db.WithContext(ctx).
		Where("container_id = ? AND released_at IS NULL", containerID).
		Find(&models).Error
	if err != nil {
		return nil, shared.NewInternalError("find active assignments by container", err)
	}
	return modelsToAssignments(models), nil
}

func (r *ShipAssignmentRepository) ListActive(ctx context.Context) ([]*assignment.ShipAssignment, error) {
	var models []ShipAssignmentModel
	err := r.db.WithContext(ctx).Where("released_at IS NULL").Find(&models).Error
	if err != nil {
		return nil, shared.NewInternalError("list active assignments", err)
	}
	return modelsToAssignments(models), nil
}

func (r *ShipAssignmentRepository) Release(ctx context.Context, shipSymbol, reason string, force bool) error {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("ship_symbol = ? AND released_at IS NULL", shipSymbol).
		Updates(map[string]interface{}{
			"released_at":    &now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return shared.NewInternalError("release ship assignment", result.Error)
	}
	if result.RowsAffected == 0 && !force {
		return shared.NewConflictError("no active assignment for ship " + shipSymbol)
	}
	return nil
}

func (r *ShipAssignmentRepository) ReleaseByContainer(ctx context.Context, containerID, reason string) (int, error) {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("container_id = ? AND released_at IS NULL", containerID).
		Updates(map[string]interface{}{
			"released_at":    &now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return 0, shared.NewInternalError("release assignments by container", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *ShipAssignmentRepository) ReleaseAllActive(ctx context.Context, reason string) (int, error) {
	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("released_at IS NULL").
		Updates(map[string]interface{}{
			"released_at":    &now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return 0, shared.NewInternalError("release all active assignments", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *ShipAssignmentRepository) ReleaseOrphans(ctx context.Context, liveContainerIDs map[string]bool, reason string) (int, error) {
	var models []ShipAssignmentModel
	if err := r.db.WithContext(ctx).Where("released_at IS NULL").Find(&models).Error; err != nil {
		return 0, shared.NewInternalError("list active assignments for orphan check", err)
	}

	orphanIDs := make([]string, 0)
	for _, m := range models {
		if !liveContainerIDs[m.ContainerID] {
			orphanIDs = append(orphanIDs, m.ShipSymbol)
		}
	}
	if len(orphanIDs) == 0 {
		return 0, nil
	}

	now := r.clock.Now()
	result := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("ship_symbol IN ? AND released_at IS NULL", orphanIDs).
		Updates(map[string]interface{}{
			"released_at":    &now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return 0, shared.NewInternalError("release orphaned assignments", result.Error)
	}
	return int(result.RowsAffected), nil
}

func (r *ShipAssignmentRepository) ReleaseStale(ctx context.Context, timeout time.Duration, reason string) (int, error) {
	now := r.clock.Now()
	cutoff := now.Add(-timeout)
	result := r.db.WithContext(ctx).Model(&ShipAssignmentModel{}).
		Where("released_at IS NULL AND assigned_at <= ?", cutoff).
		Updates(map[string]interface{}{
			"released_at":    &now,
			"release_reason": reason,
		})
	if result.Error != nil {
		return 0, shared.NewInternalError("release stale assignments", result.Error)
	}
	return int(result.RowsAffected), nil
}

func modelsToAssignments(models []ShipAssignmentModel) []*assignment.ShipAssignment {
	assignments := make([]*assignment.ShipAssignment, len(models))
	for i := range models {
		assignments[i] = modelToAssignment(&models[i])
	}
	return assignments
}

func modelToAssignment(model *ShipAssignmentModel) *assignment.ShipAssignment {
	return &assignment.ShipAssignment{
		ShipSymbol:    model.ShipSymbol,
		PlayerID:      model.PlayerID,
		ContainerID:   model.ContainerID,
		AssignedAt:    model.AssignedAt,
		ReleasedAt:    model.ReleasedAt,
		ReleaseReason: model.ReleaseReason,
	}
}
