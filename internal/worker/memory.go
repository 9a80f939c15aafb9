package worker

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// StartMemoryReporter logs runtime memory stats on every interval
func StartMemoryReporter(ctx context.Context, interval time.Duration) {
	runEvery(ctx, interval, func() {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		slog.Info("memory stats",
			slog.Uint64("alloc_mib", m.Alloc/1024/1024),
			slog.Uint64("total_alloc_mib", m.TotalAlloc/1024/1024),
			slog.Uint64("sys_mib", m.Sys/1024/1024),
			slog.Uint64("num_gc", uint64(m.NumGC)),
		)
	})
}
