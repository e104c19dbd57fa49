package persistence

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// ContainerRepository implements container.Repository using GORM.
type ContainerRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

func NewContainerRepository(db *gorm.DB, clock shared.Clock) *ContainerRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ContainerRepository{db: db, clock: clock}
}

func (r *ContainerRepository) Add(ctx context.Context, c *container.Container) error {
	model, err := containerToModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return shared.NewInternalError("add container", err)
	}
	return nil
}

func (r *ContainerRepository) Update(ctx context.Context, c *container.Container) error {
	model, err := containerToModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return shared.NewInternalError("update container", err)
	}
	return nil
}

func (r *ContainerRepository) FindByID(ctx context.Context, playerID int, id string) (*container.Container, error) {
	var model ContainerModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND player_id = ?", id, playerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("container not found")
		}
		return nil, shared.NewInternalError("find container", err)
	}
	return modelToContainer(&model, r.clock)
}

func (r *ContainerRepository) FindRunningByType(ctx context.Context, playerID int, containerType container.Type) ([]*container.Container, error) {
	var models []ContainerModel
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND container_type = ? AND status = ?",
			playerID, string(containerType), string(container.ContainerStatusRunning)).
		Find(&models).Error
	if err != nil {
		return nil, shared.NewInternalError("find running containers by type", err)
	}
	return modelsToContainers(models, r.clock)
}

func (r *ContainerRepository) ListByStatus(ctx context.Context, playerID int, status container.ContainerStatus) ([]*container.Container, error) {
	var models []ContainerModel
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND status = ?", playerID, string(status)).
		Find(&models).Error
	if err != nil {
		return nil, shared.NewInternalError("list containers by status", err)
	}
	return modelsToContainers(models, r.clock)
}

func (r *ContainerRepository) ListNonTerminal(ctx context.Context, playerID int) ([]*container.Container, error) {
	var models []ContainerModel
	terminal := []string{
		string(container.ContainerStatusCompleted),
		string(container.ContainerStatusFailed),
		string(container.ContainerStatusStopped),
	}
	err := r.db.WithContext(ctx).
		Where("player_id = ? AND status NOT IN ?", playerID, terminal).
		Find(&models).Error
	if err != nil {
		return nil, shared.NewInternalError("list non-terminal containers", err)
	}
	return modelsToContainers(models, r.clock)
}

func modelsToContainers(models []ContainerModel, clock shared.Clock) ([]*container.Container, error) {
	containers := make([]*container.Container, 0, len(models))
	for i := range models {
		c, err := modelToContainer(&models[i], clock)
		if err != nil {
			return nil, err
		}
		containers = append(containers, c)
	}
	return containers, nil
}

func modelToContainer(model *ContainerModel, clock shared.Clock) (*container.Container, error) {
	metadata := map[string]interface{}{}
	if model.Metadata != "" {
		_ = json.Unmarshal([]byte(model.Metadata), &metadata)
	}
	var lastErr error
	if model.LastError != "" {
		lastErr = errors.New(model.LastError)
	}
	c := container.Recover(
		model.ID,
		container.Type(model.ContainerType),
		model.PlayerID,
		container.ContainerStatus(model.Status),
		model.CurrentIteration,
		model.MaxIterations,
		model.RestartCount,
		model.MaxRestarts,
		metadata,
		model.CreatedAt,
		model.StartedAt,
		model.StoppedAt,
		lastErr,
		clock,
	)
	return c, nil
}

func containerToModel(c *container.Container) (*ContainerModel, error) {
	metadataJSON := "{}"
	if len(c.Metadata()) > 0 {
		b, err := json.Marshal(c.Metadata())
		if err != nil {
			return nil, shared.NewInternalError("marshal container metadata", err)
		}
		metadataJSON = string(b)
	}
	var lastError string
	if c.LastError() != nil {
		lastError = c.LastError().Error()
	}
	return &ContainerModel{
		ID:               c.ID(),
		PlayerID:         c.PlayerID(),
		ContainerType:    string(c.Type()),
		Status:           string(c.Status()),
		CurrentIteration: c.CurrentIteration(),
		MaxIterations:    c.MaxIterations(),
		RestartCount:     c.RestartCount(),
		MaxRestarts:      c.MaxRestarts(),
		Metadata:         metadataJSON,
		LastError:        lastError,
		CreatedAt:        c.CreatedAt(),
		StartedAt:        c.StartedAt(),
		StoppedAt:        c.StoppedAt(),
	}, nil
}
