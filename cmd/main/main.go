package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fishguard/internal/api"
	"fishguard/internal/config"
	"fishguard/internal/postgres"
	"fishguard/internal/redis"
	"fishguard/internal/service/broadcast"
	"fishguard/internal/service/state"
	"fishguard/internal/service/tracking"
	"fishguard/internal/service/warning"
	"fishguard/internal/service/zone"
	"fishguard/internal/worker"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
)

type healthInfo struct {
	zones       *zone.ZoneService
	broadcaster *broadcast.SocketBroadcaster
}

func (h healthInfo) ZoneCount() int {
	if zs := h.zones.Current(); zs != nil {
		return zs.Len()
	}
	return 0
}

func (h healthInfo) Clients() int {
	return h.broadcaster.Count()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	analysis, err := cfg.Analysis()
	if err != nil {
		slog.Error("invalid analysis configuration", slog.Any("error", err))
		os.Exit(1)
	}

	initializeDatabaseAndCache(cfg)
	defer closeConnections()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := state.NewStateService(redis.GetClient())
	if n, err := states.Restore(ctx); err != nil {
		slog.Warn("failed to restore warning state", slog.Any("error", err))
	} else {
		slog.Info("restored warning state", slog.Int("boats", n))
	}

	socketServer := broadcast.NewSocketServer()
	broadcaster := broadcast.NewSocketBroadcaster(socketServer)
	zoneService := zone.GetZoneService()
	repo := postgres.NewTrackingRepository(postgres.GetDB())

	trackingService := tracking.NewTrackingService(tracking.Options{
		Store:        repo,
		Analyzer:     warning.NewEvaluator(zoneService, slog.Default()),
		Levels:       states,
		Broadcaster:  broadcaster,
		ZonesPath:    cfg.ZonesPath,
		Analysis:     analysis,
		SendInterval: cfg.SendInterval,
		Logger:       slog.Default(),
	})

	worker.StartAllWorkers(ctx, worker.Workers{
		State:     states,
		Zones:     zoneService,
		ZonesPath: cfg.ZonesPath,
	})

	setupSignalHandler(cancel, states, socketServer)

	runAPIServer(cfg, api.Dependencies{
		Reports:       trackingService,
		History:       repo,
		Health:        healthInfo{zones: zoneService, broadcaster: broadcaster},
		Socket:        socketServer,
		SendInterval:  cfg.SendInterval,
		HistoryPoints: cfg.HistoryPoints,
	}, socketServer)
}

func setupLogging(cfg config.Config) {
	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		// The file stays open for the lifetime of the process.
		out = io.MultiWriter(os.Stdout, logFile)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func initializeDatabaseAndCache(cfg config.Config) {
	postgres.Init(cfg.DBUrl)
	redis.Init(cfg.RedisUrl)
}

func runAPIServer(cfg config.Config, deps api.Dependencies, socketServer *socketio.Server) {
	go func() {
		if err := socketServer.Serve(); err != nil {
			slog.Error("socket.io server stopped", slog.Any("error", err))
		}
	}()

	r := gin.Default()
	api.SetupRouter(r, deps)

	slog.Info("starting API server", slog.String("addr", cfg.Port))
	if err := r.Run(cfg.Port); err != nil {
		slog.Error("API server stopped", slog.Any("error", err))
	}
}

func closeConnections() {
	if err := postgres.Close(); err != nil {
		slog.Error("error closing PostgreSQL connection", slog.Any("error", err))
	}

	if err := redis.Close(); err != nil {
		slog.Error("error closing Redis connection", slog.Any("error", err))
	}

	slog.Info("PostgreSQL and Redis connections closed")
}

func setupSignalHandler(cancel context.CancelFunc, states worker.Flusher, socketServer *socketio.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		slog.Info("shutdown signal received, flushing state and closing connections")
		cancel()

		flushCtx, done := context.WithTimeout(context.Background(), config.ShutdownFlushTimeout)
		worker.FlushState(flushCtx, states)
		done()

		if err := socketServer.Close(); err != nil {
			slog.Warn("error closing socket.io server", slog.Any("error", err))
		}
		closeConnections()
		os.Exit(0)
	}()
}
