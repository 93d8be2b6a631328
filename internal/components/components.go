package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"lifeline/internal/api"
	"lifeline/internal/config"
	"lifeline/internal/dispatch"
	"lifeline/internal/geo"
	"lifeline/internal/metrics"
	"lifeline/internal/redis"
	"lifeline/internal/service"
	"lifeline/internal/storage/postgres"
	"lifeline/pkg/logger"
)

type Components struct {
	logger      *slog.Logger
	HttpServer  *api.Server
	Coordinator *dispatch.Coordinator
	Postgres    *postgres.Postgres
	Redis       *redis.Redis
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")
	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres", slog.Any("error", err))
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	outbox := redis.NewOfferOutbox(redisClient.Client)
	statusCache := redis.NewStatusCache(redisClient)

	sink, err := metrics.NewPromSink(nil)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	// Default ranking runs the PostGIS nearest query off the volunteers
	// table; the in-memory index is for single-instance deployments where a
	// round trip per round is not worth it. The mirror routes every
	// availability transition through the index so reserved volunteers drop
	// out of the ranking.
	var (
		candidates dispatch.CandidateSource = storage.Volunteers
		registry   geo.Registry             = storage.Volunteers
	)
	if cfg.Dispatch.InMemoryIndex {
		idx := geo.NewIndex(cfg.Dispatch.PositionMaxAge)
		candidates = idx
		registry = geo.NewMirror(storage.Volunteers, idx)
	}

	coordinator, err := dispatch.NewCoordinator(
		dispatch.Config{
			OfferTTL:       cfg.Dispatch.OfferTTL,
			Candidates:     cfg.Dispatch.Candidates,
			SearchRadiusKM: cfg.Dispatch.SearchRadiusKM,
			MaxRadiusKM:    cfg.Dispatch.MaxRadiusKM,
			MaxRounds:      cfg.Dispatch.MaxRounds,
		},
		registry,
		storage.Incidents,
		candidates,
		outbox,
		sink,
		logger,
	)
	if err != nil {
		storage.Pool.Close()
		return nil, fmt.Errorf("failed to init dispatch coordinator: %w", err)
	}

	patientSvc := service.NewPatientService(storage.Incidents, registry, coordinator, statusCache, sink, logger)
	volunteerSvc := service.NewVolunteerService(storage.Incidents, registry, coordinator, outbox, statusCache, sink, logger)
	srv := service.NewService(patientSvc, volunteerSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	logger.Info("Initialized server")

	return &Components{
		logger:      logger,
		HttpServer:  httpServer,
		Coordinator: coordinator,
		Postgres:    storage,
		Redis:       redisClient,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

// ShutdownAll drains in-flight dispatch goroutines before closing the stores
// they write to.
func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("component shutdown started")

	c.Coordinator.Wait()

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("all components stopped",
		slog.Duration("latency", time.Since(start)))
}
