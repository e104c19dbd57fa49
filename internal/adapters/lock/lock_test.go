package lock_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/lock"
	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func newTestManager(t *testing.T) (*lock.Manager, *shared.MockClock) {
	t.Helper()
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewShipAssignmentRepository(db, clock)
	return lock.NewManager(repo, clock), clock
}

func TestManager_AcquireReleaseRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	a, err := m.Acquire(ctx, "SHIP-1", 1, "c-1")
	require.NoError(t, err)
	assert.True(t, a.IsActive())

	found, err := m.FindByShip(ctx, "SHIP-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", found.ContainerID)

	require.NoError(t, m.Release(ctx, "SHIP-1", "done"))

	_, err = m.FindByShip(ctx, "SHIP-1")
	require.Error(t, err)
}

func TestManager_AcquireRejectsDoubleLock(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-2", 1, "c-1")
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "SHIP-2", 1, "c-2")
	require.Error(t, err)
	assert.Equal(t, shared.KindAlreadyAssigned, shared.KindOf(err))
}

func TestManager_ReleaseIsNotIdempotentWithoutForce(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-3", 1, "c-1")
	require.NoError(t, err)
	require.NoError(t, m.Release(ctx, "SHIP-3", "first"))

	err = m.Release(ctx, "SHIP-3", "second")
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestManager_ForceReleaseBypassesConflict(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-4", 1, "c-1")
	require.NoError(t, err)
	require.NoError(t, m.Release(ctx, "SHIP-4", "first"))
	require.NoError(t, m.ForceRelease(ctx, "SHIP-4", "second"))
}

func TestManager_ReleaseByContainer(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-5", 1, "c-shared")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "SHIP-6", 1, "c-shared")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "SHIP-7", 1, "c-other")
	require.NoError(t, err)

	n, err := m.ReleaseByContainer(ctx, "c-shared", "container-stopped")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "SHIP-7", active[0].ShipSymbol)
}

func TestManager_ReleaseAllActive(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-8", 1, "c-1")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "SHIP-9", 2, "c-2")
	require.NoError(t, err)

	n, err := m.ReleaseAllActive(ctx, "daemon-startup-sweep")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := m.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestManager_CleanOrphansReleasesOnlyDeadContainers(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-10", 1, "c-live")
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "SHIP-11", 1, "c-dead")
	require.NoError(t, err)

	n, err := m.CleanOrphans(ctx, map[string]bool{"c-live": true}, "health-orphan-cleanup")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.FindByShip(ctx, "SHIP-10")
	require.NoError(t, err)
	_, err = m.FindByShip(ctx, "SHIP-11")
	require.Error(t, err)
}

func TestManager_CleanStaleReleasesPastTimeout(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-12", 1, "c-1")
	require.NoError(t, err)

	n, err := m.CleanStale(ctx, 30*time.Minute, "health-stale-cleanup")
	require.NoError(t, err)
	assert.Equal(t, 0, n, "not yet stale")

	clock.Advance(31 * time.Minute)

	n, err = m.CleanStale(ctx, 30*time.Minute, "health-stale-cleanup")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestManager_CleanStaleDefaultsTimeout(t *testing.T) {
	m, clock := newTestManager(t)
	ctx := context.Background()

	_, err := m.Acquire(ctx, "SHIP-13", 1, "c-1")
	require.NoError(t, err)

	clock.Advance(lock.DefaultStaleTimeout + time.Minute)

	n, err := m.CleanStale(ctx, 0, "health-stale-cleanup")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
