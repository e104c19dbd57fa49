package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/cache"
	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/internal/domain/system"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestWaypointCache_RefillsWhenEmpty(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.NewWaypointCache(persistence.NewWaypointRepository(db), clock, time.Hour)

	calls := 0
	refill := func(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
		calls++
		wp, err := shared.NewWaypoint("X1-GZ7-A1", 1, 2)
		require.NoError(t, err)
		wp.SystemSymbol = systemSymbol
		return []*shared.Waypoint{wp}, nil
	}

	found, err := c.List(context.Background(), "X1-GZ7", system.WaypointFilters{}, refill)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, calls, "empty cache should trigger exactly one refill")
}

func TestWaypointCache_FreshWithinTTLSkipsRefill(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.NewWaypointCache(persistence.NewWaypointRepository(db), clock, time.Hour)

	wp, err := shared.NewWaypoint("X1-GZ7-A1", 1, 2)
	require.NoError(t, err)
	wp.SystemSymbol = "X1-GZ7"
	require.NoError(t, c.Save(context.Background(), []*shared.Waypoint{wp}))

	calls := 0
	refill := func(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
		calls++
		return nil, nil
	}

	clock.Advance(30 * time.Minute)
	found, err := c.List(context.Background(), "X1-GZ7", system.WaypointFilters{}, refill)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 0, calls, "a read within TTL should never call the refiller")
}

func TestWaypointCache_StaleAfterTTLTriggersRefill(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.NewWaypointCache(persistence.NewWaypointRepository(db), clock, time.Hour)

	wp, err := shared.NewWaypoint("X1-GZ7-A1", 1, 2)
	require.NoError(t, err)
	wp.SystemSymbol = "X1-GZ7"
	require.NoError(t, c.Save(context.Background(), []*shared.Waypoint{wp}))

	refilled, err := shared.NewWaypoint("X1-GZ7-B2", 3, 4)
	require.NoError(t, err)
	refilled.SystemSymbol = "X1-GZ7"
	calls := 0
	refill := func(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
		calls++
		return []*shared.Waypoint{refilled}, nil
	}

	clock.Advance(2 * time.Hour)
	found, err := c.List(context.Background(), "X1-GZ7", system.WaypointFilters{}, refill)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "a read past TTL should refill exactly once")
	require.Len(t, found, 1)
	assert.Equal(t, "X1-GZ7-B2", found[0].Symbol)
}

func TestWaypointCache_NilRefillerReturnsWhatIsCached(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.NewWaypointCache(persistence.NewWaypointRepository(db), clock, time.Hour)

	found, err := c.List(context.Background(), "X1-EMPTY", system.WaypointFilters{}, nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestWaypointCache_FiltersAppliedAfterRead(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c := cache.NewWaypointCache(persistence.NewWaypointRepository(db), clock, time.Hour)

	fuel, err := shared.NewWaypoint("X1-GZ7-FUEL", 1, 2)
	require.NoError(t, err)
	fuel.SystemSymbol = "X1-GZ7"
	fuel.Traits = []string{shared.HasFuelTrait}
	fuel.HasFuel = true

	dry, err := shared.NewWaypoint("X1-GZ7-DRY", 3, 4)
	require.NoError(t, err)
	dry.SystemSymbol = "X1-GZ7"

	require.NoError(t, c.Save(context.Background(), []*shared.Waypoint{fuel, dry}))

	hasFuel := true
	found, err := c.List(context.Background(), "X1-GZ7", system.WaypointFilters{HasFuel: &hasFuel}, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "X1-GZ7-FUEL", found[0].Symbol)
}
