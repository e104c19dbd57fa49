package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/persistence"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
	"github.com/fleetgrid/fleetd/test/helpers"
)

func TestContainerLogRepository_DedupWithinWindow(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerLogRepository(db, clock)

	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "same message"))
	clock.Advance(10 * time.Second)
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "same message"))

	entries, err := repo.List(ctx, "c-1", 1, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestContainerLogRepository_DistinctLevelsNotDeduped(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerLogRepository(db, clock)

	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "msg"))
	require.NoError(t, repo.Log(ctx, "c-1", 1, "ERROR", "msg"))

	entries, err := repo.List(ctx, "c-1", 1, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestContainerLogRepository_DedupExpiresAfterWindow(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerLogRepository(db, clock)

	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "same message"))
	clock.Advance(61 * time.Second)
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "same message"))

	entries, err := repo.List(ctx, "c-1", 1, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestContainerLogRepository_ListFiltersByLevelAndSince(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := persistence.NewContainerLogRepository(db, clock)

	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "c-1", 1, "INFO", "one"))
	clock.Advance(time.Minute)
	since := clock.Now()
	clock.Advance(time.Minute)
	require.NoError(t, repo.Log(ctx, "c-1", 1, "ERROR", "two"))

	level := "ERROR"
	entries, err := repo.List(ctx, "c-1", 1, &level, &since, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "two", entries[0].Message)
}
