package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Karethoth/noirion-backend/api/routes"
	"github.com/Karethoth/noirion-backend/internal/annotations"
	"github.com/Karethoth/noirion-backend/internal/assets"
	"github.com/Karethoth/noirion-backend/internal/entities"
	"github.com/Karethoth/noirion-backend/internal/events"
	"github.com/Karethoth/noirion-backend/internal/graph"
	"github.com/Karethoth/noirion-backend/internal/interpolate"
	"github.com/Karethoth/noirion-backend/internal/presence"
	"github.com/Karethoth/noirion-backend/internal/settings"
	"github.com/Karethoth/noirion-backend/internal/timeline"
	"github.com/Karethoth/noirion-backend/pkg/config"
	"github.com/Karethoth/noirion-backend/pkg/db"
	"github.com/Karethoth/noirion-backend/pkg/logger"
	"github.com/Karethoth/noirion-backend/pkg/metrics"
	"github.com/Karethoth/noirion-backend/pkg/migrate"
	"github.com/Karethoth/noirion-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay disabled")
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	gormDB := dbClient.DB()
	assetsRepo := assets.NewRepository(gormDB)
	annotationsRepo := annotations.NewRepository(gormDB)
	entitiesRepo := entities.NewRepository(gormDB)
	eventsRepo := events.NewRepository(gormDB)
	presenceRepo := presence.NewRepository(gormDB)
	settingsRepo := settings.NewRepository(gormDB)

	// The asset and annotation services feed the synchronizer its metadata
	// and link facts, and both fire it after mutations, so the syncer is
	// bound after all three exist.
	assetsSvc := assets.NewService(assetsRepo, nil, logg)
	annotationsSvc := annotations.NewService(annotationsRepo, assetsSvc, nil, logg)
	synchronizer := presence.NewSynchronizer(presenceRepo, assetsSvc, assetsSvc, annotationsSvc, logg, syncMetrics)
	assetsSvc.BindSyncer(synchronizer)
	annotationsSvc.BindSyncer(synchronizer)

	entitiesSvc := entities.NewService(entitiesRepo, logg)
	eventsSvc := events.NewService(eventsRepo, logg)
	presenceSvc := presence.NewService(presenceRepo, logg)

	aggregator := settings.NewAggregator(assetsSvc, presenceRepo, eventsSvc, entitiesSvc)
	settingsSvc := settings.NewService(settingsRepo, aggregator, cfg.FeatureFlags.HomeLocationAutoUpdate, logg)

	resolver := graph.NewResolver(gormDB)
	timelineSvc := timeline.NewService(resolver, presenceRepo, eventsSvc, logg)
	suggester := interpolate.NewSuggester(assetsSvc, cfg.Interpolation, logg, syncMetrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Assets:      assetsSvc,
			Annotations: annotationsSvc,
			Entities:    entitiesSvc,
			Events:      eventsSvc,
			Presences:   presenceSvc,
			Settings:    settingsSvc,
			Timeline:    timelineSvc,
			Suggester:   suggester,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
