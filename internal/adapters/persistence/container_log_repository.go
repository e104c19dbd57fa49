package persistence

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

// ContainerLogRepository persists container log entries with time-windowed
// dedup on (container_id, level, message): writes are totally ordered per
// container id but deduplication is an in-process best effort, not
// transactional, since it only ever collapses noise, never drops a unique
// entry.
type ContainerLogRepository struct {
	db    *gorm.DB
	clock shared.Clock

	dedupMu      sync.Mutex
	dedupCache   map[string]time.Time
	dedupWindow  time.Duration
	dedupMaxSize int
}

// ContainerLogEntry is the read-side projection of a log row.
type ContainerLogEntry struct {
	ID          int
	ContainerID string
	PlayerID    int
	Level       string
	Message     string
	Timestamp   time.Time
}

const (
	logDedupWindow  = 60 * time.Second
	logDedupMaxSize = 10000
)

func NewContainerLogRepository(db *gorm.DB, clock shared.Clock) *ContainerLogRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &ContainerLogRepository{
		db:           db,
		clock:        clock,
		dedupCache:   make(map[string]time.Time),
		dedupWindow:  logDedupWindow,
		dedupMaxSize: logDedupMaxSize,
	}
}

// Log appends a log entry, collapsing it into a NoOp if an identical
// (container_id, level, message) was logged within the dedup window.
func (r *ContainerLogRepository) Log(ctx context.Context, containerID string, playerID int, level, message string) error {
	now := r.clock.Now()
	key := containerID + "|" + level + "|" + message

	r.dedupMu.Lock()
	if last, ok := r.dedupCache[key]; ok && now.Sub(last) < r.dedupWindow {
		r.dedupMu.Unlock()
		return nil
	}
	if len(r.dedupCache) >= r.dedupMaxSize {
		r.cleanupDedupCacheLocked(now)
	}
	r.dedupCache[key] = now
	r.dedupMu.Unlock()

	entry := &ContainerLogModel{
		ContainerID: containerID,
		PlayerID:    playerID,
		Level:       level,
		Message:     message,
		Timestamp:   now,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return shared.NewInternalError("write container log", err)
	}
	return nil
}

func (r *ContainerLogRepository) cleanupDedupCacheLocked(now time.Time) {
	cutoff := now.Add(-r.dedupWindow)
	for key, ts := range r.dedupCache {
		if ts.Before(cutoff) {
			delete(r.dedupCache, key)
		}
	}
}

// List retrieves a container's logs filtered by level and since, newest
// first, with limit/offset pagination. A nil level or since means
// unfiltered on that dimension.
func (r *ContainerLogRepository) List(
	ctx context.Context,
	containerID string,
	playerID int,
	level *string,
	since *time.Time,
	limit, offset int,
) ([]ContainerLogEntry, error) {
	var models []ContainerLogModel

	query := r.db.WithContext(ctx).
		Where("container_id = ? AND player_id = ?", containerID, playerID)
	if level != nil {
		query = query.Where("level = ?", *level)
	}
	if since != nil {
		query = query.Where("timestamp > ?", *since)
	}
	query = query.Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, shared.NewInternalError("list container logs", err)
	}

	entries := make([]ContainerLogEntry, len(models))
	for i, model := range models {
		entries[i] = ContainerLogEntry{
			ID:          model.ID,
			ContainerID: model.ContainerID,
			PlayerID:    model.PlayerID,
			Level:       model.Level,
			Message:     model.Message,
			Timestamp:   model.Timestamp,
		}
	}
	return entries, nil
}
