package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestContainerRepository_AddAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerRepository(db, clock)

	c, err := container.New("c-1", container.TypeNavigate, 1, -1, map[string]interface{}{"ship": "X1-1"}, clock)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), c))

	found, err := repo.FindByID(context.Background(), 1, "c-1")
	require.NoError(t, err)
	assert.Equal(t, container.ContainerStatusPending, found.Status())
	assert.Equal(t, "X1-1", found.Metadata()["ship"])
}

func TestContainerRepository_UpdateTracksStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerRepository(db, clock)

	c, err := container.New("c-2", container.TypeMiningCoordinator, 1, -1, nil, clock)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), c))

	require.NoError(t, c.Start())
	require.NoError(t, repo.Update(context.Background(), c))

	found, err := repo.FindByID(context.Background(), 1, "c-2")
	require.NoError(t, err)
	assert.Equal(t, container.ContainerStatusRunning, found.Status())
	require.NotNil(t, found.StartedAt())

	running, err := repo.FindRunningByType(context.Background(), 1, container.TypeMiningCoordinator)
	require.NoError(t, err)
	require.Len(t, running, 1)
}

func TestContainerRepository_ListNonTerminal(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerRepository(db, clock)

	running, err := container.New("c-running", container.TypeNavigate, 1, -1, nil, clock)
	require.NoError(t, err)
	require.NoError(t, running.Start())
	require.NoError(t, repo.Add(context.Background(), running))

	done, err := container.New("c-done", container.TypeNavigate, 1, -1, nil, clock)
	require.NoError(t, err)
	require.NoError(t, done.Start())
	require.NoError(t, done.Complete())
	require.NoError(t, repo.Add(context.Background(), done))

	nonTerminal, err := repo.ListNonTerminal(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, nonTerminal, 1)
	assert.Equal(t, "c-running", nonTerminal[0].ID())
}
