package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/player"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestPlayerRepository_AddAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewPlayerRepository(db)

	p := &player.Player{
		ID:          1,
		AgentSymbol: "TEST-AGENT",
		Token:       "test-token-123",
		Credits:     100000,
		Metadata:    map[string]interface{}{"faction": "COSMIC"},
		LastActive:  time.Now().UTC(),
	}

	require.NoError(t, repo.Add(context.Background(), p))

	found, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
	assert.Equal(t, p.AgentSymbol, found.AgentSymbol)
	assert.Equal(t, p.Token, found.Token)
	assert.Equal(t, p.Credits, found.Credits)
	assert.NotEmpty(t, found.Metadata)
}

func TestPlayerRepository_FindByAgentSymbol(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewPlayerRepository(db)

	p := &player.Player{ID: 2, AgentSymbol: "AGENT-2", Token: "token-456", Credits: 50000, LastActive: time.Now().UTC()}
	require.NoError(t, repo.Add(context.Background(), p))

	found, err := repo.FindByAgentSymbol(context.Background(), "AGENT-2")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestPlayerRepository_NotFound(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewPlayerRepository(db)

	_, err := repo.FindByID(context.Background(), 999)
	assert.Error(t, err)
}
