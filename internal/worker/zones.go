package worker

import (
	"log/slog"
)

// WarmZoneCache loads the zone source once so the first report does not pay
// for parsing. A failure is logged; reports will retry the load.
func WarmZoneCache(zones ZoneWarmer, source string) {
	zs, err := zones.LoadOrGetCached(source)
	if err != nil {
		slog.Error("failed to warm zone cache",
			slog.String("source", source),
			slog.Any("error", err),
		)
		return
	}

	slog.Info("zone cache warmed",
		slog.String("source", source),
		slog.Int("zones", zs.Len()),
	)
}
