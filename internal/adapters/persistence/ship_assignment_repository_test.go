package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/assignment"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestShipAssignmentRepository_CreateRejectsDoubleAssign(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewShipAssignmentRepository(db, clock)

	a := assignment.New("SHIP-1", 1, "c-1", clock.Now())
	require.NoError(t, repo.Create(context.Background(), a))

	dup := assignment.New("SHIP-1", 1, "c-2", clock.Now())
	err := repo.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, shared.KindAlreadyAssigned, shared.KindOf(err))
}

func TestShipAssignmentRepository_ReleaseAndFind(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewShipAssignmentRepository(db, clock)

	a := assignment.New("SHIP-2", 1, "c-1", clock.Now())
	require.NoError(t, repo.Create(context.Background(), a))

	found, err := repo.FindActiveByShip(context.Background(), "SHIP-2")
	require.NoError(t, err)
	assert.Equal(t, "c-1", found.ContainerID)

	require.NoError(t, repo.Release(context.Background(), "SHIP-2", "done", false))

	_, err = repo.FindActiveByShip(context.Background(), "SHIP-2")
	require.Error(t, err)

	err = repo.Release(context.Background(), "SHIP-2", "done-again", false)
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestShipAssignmentRepository_ReleaseStale(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewShipAssignmentRepository(db, clock)

	a := assignment.New("SHIP-3", 1, "c-1", clock.Now())
	require.NoError(t, repo.Create(context.Background(), a))

	clock.Advance(31 * time.Minute)

	n, err := repo.ReleaseStale(context.Background(), 30*time.Minute, "stale")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestShipAssignmentRepository_ReleaseOrphans(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewShipAssignmentRepository(db, clock)

	require.NoError(t, repo.Create(context.Background(), assignment.New("SHIP-4", 1, "c-live", clock.Now())))
	require.NoError(t, repo.Create(context.Background(), assignment.New("SHIP-5", 1, "c-dead", clock.Now())))

	n, err := repo.ReleaseOrphans(context.Background(), map[string]bool{"c-live": true}, "orphaned")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.FindActiveByShip(context.Background(), "SHIP-4")
	require.NoError(t, err)
	_, err = repo.FindActiveByShip(context.Background(), "SHIP-5")
	require.Error(t, err)
}
