package worker

import (
	"context"
	"log/slog"
	"time"

	"fishguard/internal/config"
	"fishguard/internal/service/zone"
)

// Flusher persists changed state and reports how many entries were written
type Flusher interface {
	Flush(ctx context.Context) (int, error)
}

// ZoneWarmer loads a zone source into the shared cache
type ZoneWarmer interface {
	LoadOrGetCached(source string) (*zone.ZoneSet, error)
}

// Workers holds the dependencies of the background workers
type Workers struct {
	State     Flusher
	Zones     ZoneWarmer
	ZonesPath string
}

// StartAllWorkers initializes and starts all background workers.
// They stop when ctx is cancelled.
func StartAllWorkers(ctx context.Context, w Workers) {
	slog.Info("starting all workers")

	WarmZoneCache(w.Zones, w.ZonesPath)
	StartStateBackupWorker(ctx, w.State, config.StateBackupInterval)
	StartMemoryReporter(ctx, config.MemoryReportInterval)

	slog.Info("all workers started")
}

// runEvery calls fn on every tick until ctx is done
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}
