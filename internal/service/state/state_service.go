package state

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"fishguard/internal/service/storage"

	"github.com/mdobak/go-xerrors"
	"github.com/redis/go-redis/v9"
)

// WarningLevelRedisKey is the Redis hash holding the last warning level per boat
const WarningLevelRedisKey = "fishguard:warning_level"

// StateService keeps the last reported warning level of every boat in memory
// and mirrors changes to Redis so de-duplication survives restarts.
type StateService struct {
	levels storage.Storage[string, int]
	client *redis.Client
}

// NewStateService creates a state service; client may be nil to keep state in memory only
func NewStateService(client *redis.Client) *StateService {
	return &StateService{
		levels: storage.NewMemoryStorage[string, int](),
		client: client,
	}
}

// LastLevel returns the last level stored for the boat, 0 if unknown
func (s *StateService) LastLevel(boatID string) int {
	level, _ := s.levels.Get(boatID)
	return level
}

// SetLevel records the boat's current level
func (s *StateService) SetLevel(boatID string, level int) {
	s.levels.Set(boatID, level)
}

// SwapLevel stores level for the boat unless it is already current and reports
// the previous level. Concurrent reports for one boat see exactly one change.
func (s *StateService) SwapLevel(boatID string, level int) (int, bool) {
	var previous int
	changed := s.levels.SetIf(boatID, func(current int, _ bool) (int, bool) {
		previous = current
		return level, current != level
	})
	return previous, changed
}

// Restore loads all stored levels from Redis
func (s *StateService) Restore(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, nil
	}

	stored, err := s.client.HGetAll(ctx, WarningLevelRedisKey).Result()
	if err != nil {
		return 0, xerrors.New(fmt.Errorf("load warning levels from redis: %w", err))
	}

	restored := 0
	for boatID, raw := range stored {
		level, err := strconv.Atoi(raw)
		if err != nil {
			slog.Warn("skipping malformed warning level", slog.String("boat_id", boatID), slog.String("raw", raw))
			continue
		}
		s.levels.Restore(boatID, level)
		restored++
	}
	return restored, nil
}

// Flush writes changed levels to Redis and returns how many were saved
func (s *StateService) Flush(ctx context.Context) (int, error) {
	if s.client == nil {
		return 0, nil
	}

	dirty := s.levels.GetDirty()
	if len(dirty) == 0 {
		return 0, nil
	}

	values := make(map[string]interface{}, len(dirty))
	for boatID, level := range dirty {
		values[boatID] = level
	}

	if err := s.client.HSet(ctx, WarningLevelRedisKey, values).Err(); err != nil {
		return 0, xerrors.New(fmt.Errorf("save warning levels to redis: %w", err))
	}

	// levels set while writing stay dirty for the next flush
	s.levels.ClearDirtyIf(dirty, func(current, flushed int) bool { return current == flushed })
	return len(dirty), nil
}
