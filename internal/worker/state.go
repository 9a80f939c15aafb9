package worker

import (
	"context"
	"log/slog"
	"time"
)

// StartStateBackupWorker periodically saves changed warning levels
func StartStateBackupWorker(ctx context.Context, state Flusher, interval time.Duration) {
	runEvery(ctx, interval, func() {
		FlushState(ctx, state)
	})

	slog.Info("state backup worker started", slog.Duration("interval", interval))
}

// FlushState runs one flush and logs the outcome
func FlushState(ctx context.Context, state Flusher) {
	n, err := state.Flush(ctx)
	if err != nil {
		slog.Error("failed to flush warning state", slog.Any("error", err))
		return
	}
	if n > 0 {
		slog.Debug("flushed warning state", slog.Int("boats", n))
	}
}
