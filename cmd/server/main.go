package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/echofort/threatintel/internal/api"
	"github.com/echofort/threatintel/internal/auth"
	"github.com/echofort/threatintel/internal/config"
	"github.com/echofort/threatintel/internal/database"
	"github.com/echofort/threatintel/internal/logging"
	"github.com/echofort/threatintel/internal/metrics"
	"github.com/echofort/threatintel/internal/scanner"
	"github.com/echofort/threatintel/internal/scheduler"
	"github.com/echofort/threatintel/internal/server"
	_ "github.com/lib/pq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting threatintel")

	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.Database.URL

	logger.Info("connecting to database")
	db, err := database.Connect(context.Background(), dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	// Run pending migrations (non-fatal to allow app to start even if migrations fail)
	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Warn("failed to run migrations, continuing anyway", "error", err)
	}

	// Create repositories
	sourceRepo := database.NewPostgresSourceRepository(db)
	scanRepo := database.NewPostgresScanRepository(db)
	itemRepo := database.NewPostgresItemRepository(db)
	patternRepo := database.NewPostgresPatternRepository(db)
	alertRepo := database.NewPostgresAlertRepository(db)
	statsRepo := database.NewPostgresStatsRepository(db)

	// Seed the source registry from the YAML file on first boot
	if cfg.Scanner.SourcesFile != "" {
		if err := seedSources(context.Background(), sourceRepo, cfg.Scanner.SourcesFile, logger); err != nil {
			logger.Error("failed to seed sources", "file", cfg.Scanner.SourcesFile, "error", err)
			os.Exit(1)
		}
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	pipeline := scanner.NewPipeline(
		sourceRepo,
		scanRepo,
		itemRepo,
		patternRepo,
		alertRepo,
		scanner.Config{
			MaxParallelFetches:     cfg.Scanner.MaxParallelFetches,
			PatternMinOccurrences:  cfg.Scanner.PatternMinOccurrences,
			AlertSeverityThreshold: cfg.Scanner.AlertSeverityThreshold,
			MaxPhoneNumbers:        cfg.Scanner.MaxPhoneNumbers,
			MaxURLs:                cfg.Scanner.MaxURLs,
			MaxKeywords:            cfg.Scanner.MaxKeywords,
			ExcerptLimit:           cfg.Scanner.MaxExcerptLength,
			FetchTimeout:           cfg.Scanner.FetchTimeout,
		},
		collector,
		logger,
	)

	// Start the recurring scan. Failure here leaves the service in
	// manual-trigger-only mode rather than aborting startup.
	scanScheduler := scheduler.NewScanScheduler(pipeline, scanRepo, cfg.Scheduler.ScanInterval, cfg.Scheduler.MisfireGrace, logger)
	if err := scanScheduler.Start(context.Background()); err != nil {
		logger.Error("failed to start scan scheduler, manual triggers only", "error", err)
	}

	statsScheduler := scheduler.NewStatsScheduler(statsRepo, cfg.Scheduler.StatsTimeOfDay, logger)
	go statsScheduler.Start(context.Background())

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	mux := http.NewServeMux()
	handler := api.NewHandler(pipeline, scanRepo, itemRepo, patternRepo, alertRepo, sourceRepo, statsRepo, logger)
	api.SetupRoutes(mux, handler, authConfig, db, collector.Handler(), logger)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("threatintel started successfully")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	scanScheduler.Stop()
	statsScheduler.Stop()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

// seedSources loads the YAML source list into an empty registry. A
// non-empty registry is left untouched so admin edits survive restarts.
func seedSources(ctx context.Context, repo *database.PostgresSourceRepository, path string, logger *slog.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count sources: %w", err)
	}
	if count > 0 {
		logger.Debug("source registry already populated, skipping seed", "count", count)
		return nil
	}

	sources, err := config.LoadSources(path)
	if err != nil {
		return err
	}

	for _, source := range sources {
		if err := repo.Store(ctx, source); err != nil {
			return fmt.Errorf("failed to store source %s: %w", source.ID, err)
		}
	}

	logger.Info("seeded source registry", "count", len(sources))
	return nil
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
