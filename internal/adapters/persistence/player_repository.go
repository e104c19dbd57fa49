package persistence

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/domain/player"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// PlayerRepository implements player.Repository using GORM.
type PlayerRepository struct {
	db *gorm.DB
}

func NewPlayerRepository(db *gorm.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) FindByID(ctx context.Context, playerID int) (*player.Player, error) {
	var model PlayerModel
	if err := r.db.WithContext(ctx).Where("id = ?", playerID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.NewNotFoundError("player not found")
		}
		return nil, shared.NewInternalError("find player by id", err)
	}
	return modelToPlayer(&model)
}

func (r *PlayerRepository) FindByAgentSymbol(ctx context.Context, agentSymbol string) (*player.Player, error) {
	var model PlayerModel
	if err := r.db.WithContext(ctx).Where("agent_symbol = ?", agentSymbol).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, shared.NewNotFoundError("player not found")
		}
		return nil, shared.NewInternalError("find player by agent symbol", err)
	}
	return modelToPlayer(&model)
}

func (r *PlayerRepository) List(ctx context.Context) ([]*player.Player, error) {
	var models []PlayerModel
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, shared.NewInternalError("list players", err)
	}
	players := make([]*player.Player, 0, len(models))
	for i := range models {
		p, err := modelToPlayer(&models[i])
		if err != nil {
			continue
		}
		players = append(players, p)
	}
	return players, nil
}

func (r *PlayerRepository) Add(ctx context.Context, p *player.Player) error {
	model, err := playerToModel(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return shared.NewInternalError("add player", err)
	}
	return nil
}

func (r *PlayerRepository) Update(ctx context.Context, p *player.Player) error {
	model, err := playerToModel(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return shared.NewInternalError("update player", err)
	}
	return nil
}

func modelToPlayer(model *PlayerModel) (*player.Player, error) {
	metadata := map[string]interface{}{}
	if model.Metadata != "" {
		_ = json.Unmarshal([]byte(model.Metadata), &metadata)
	}
	return &player.Player{
		ID:              model.ID,
		AgentSymbol:     model.AgentSymbol,
		Token:           model.Token,
		Credits:         model.Credits,
		StartingFaction: model.StartingFaction,
		Metadata:        metadata,
		LastActive:      model.LastActive,
	}, nil
}

func playerToModel(p *player.Player) (*PlayerModel, error) {
	metadataJSON := "{}"
	if len(p.Metadata) > 0 {
		bytes, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, shared.NewInternalError("marshal player metadata", err)
		}
		metadataJSON = string(bytes)
	}
	return &PlayerModel{
		ID:              p.ID,
		AgentSymbol:     p.AgentSymbol,
		Token:           p.Token,
		Credits:         p.Credits,
		StartingFaction: p.StartingFaction,
		Metadata:        metadataJSON,
		LastActive:      p.LastActive,
	}, nil
}
