package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestWaypointRepository_UpsertAndList(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewWaypointRepository(db)

	wp, err := shared.NewWaypoint("X1-GZ7-A1", 10.5, 20.3)
	require.NoError(t, err)
	wp.SystemSymbol = "X1-GZ7"
	wp.Type = "PLANET"
	wp.Traits = []string{"MARKETPLACE", "SHIPYARD"}
	wp.HasFuel = shared.DeriveHasFuel(wp.Traits)
	wp.Orbitals = []string{"X1-GZ7-A1a", "X1-GZ7-A1b"}

	require.NoError(t, repo.Upsert(context.Background(), []*shared.Waypoint{wp}))

	found, oldest, err := repo.ListBySystem(context.Background(), "X1-GZ7")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotNil(t, oldest)
	assert.Equal(t, wp.Symbol, found[0].Symbol)
	assert.Equal(t, wp.Traits, found[0].Traits)
	assert.True(t, found[0].HasFuel)
}

func TestWaypointRepository_ListBySystem_ScopesToSystem(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewWaypointRepository(db)

	wp1, _ := shared.NewWaypoint("X1-GZ7-A1", 10, 20)
	wp1.SystemSymbol = "X1-GZ7"
	wp2, _ := shared.NewWaypoint("X1-GZ7-B2", 30, 40)
	wp2.SystemSymbol = "X1-GZ7"
	wp3, _ := shared.NewWaypoint("X1-ABC-C3", 50, 60)
	wp3.SystemSymbol = "X1-ABC"

	require.NoError(t, repo.Upsert(context.Background(), []*shared.Waypoint{wp1, wp2, wp3}))

	found, _, err := repo.ListBySystem(context.Background(), "X1-GZ7")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestWaypointRepository_UpsertOverwritesTraits(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewWaypointRepository(db)

	wp, _ := shared.NewWaypoint("X1-GZ7-A1", 10, 20)
	wp.SystemSymbol = "X1-GZ7"
	wp.Traits = []string{"MARKETPLACE"}
	require.NoError(t, repo.Upsert(context.Background(), []*shared.Waypoint{wp}))

	wp.Traits = []string{"SHIPYARD"}
	require.NoError(t, repo.Upsert(context.Background(), []*shared.Waypoint{wp}))

	found, _, err := repo.ListBySystem(context.Background(), "X1-GZ7")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"SHIPYARD"}, found[0].Traits)
}
