// Package wire provides dependency injection for the tarmac
// application. It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"sync"
	"time"

	"github.com/example/tarmac/internal/adapters/flightfile"
	"github.com/example/tarmac/internal/adapters/prediction"
	"github.com/example/tarmac/internal/adapters/sqlite"
	"github.com/example/tarmac/internal/app"
	"github.com/example/tarmac/internal/config"
	"github.com/example/tarmac/internal/core/scoring"
	"github.com/example/tarmac/internal/db"
	"github.com/example/tarmac/internal/logging"
	"github.com/example/tarmac/internal/notify"
	"github.com/example/tarmac/internal/ports/primary"
	"github.com/example/tarmac/internal/ports/secondary"

	"go.uber.org/zap"
)

var (
	cfg               *config.Config
	logger            *zap.Logger
	allocationService primary.AllocationService
	recallService     primary.RecallService
	ingestService     primary.IngestService
	statsService      primary.StatsService
	notificationRepo  secondary.NotificationRepository
	standRepo         secondary.StandRepository
	once              sync.Once
)

// flightSourcePath is set by the CLI before services are first used.
var flightSourcePath = "flights.json"

// SetFlightSourcePath overrides the JSON flight feed location. Must be
// called before any service accessor.
func SetFlightSourcePath(path string) {
	flightSourcePath = path
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return logger
}

// AllocationService returns the singleton AllocationService instance.
func AllocationService() primary.AllocationService {
	once.Do(initServices)
	return allocationService
}

// RecallService returns the singleton RecallService instance.
func RecallService() primary.RecallService {
	once.Do(initServices)
	return recallService
}

// IngestService returns the singleton IngestService instance.
func IngestService() primary.IngestService {
	once.Do(initServices)
	return ingestService
}

// StatsService returns the singleton StatsService instance.
func StatsService() primary.StatsService {
	once.Do(initServices)
	return statsService
}

// NotificationRepository returns the notification store for read-side
// commands.
func NotificationRepository() secondary.NotificationRepository {
	once.Do(initServices)
	return notificationRepo
}

// StandRepository returns the stand store for read-side commands.
func StandRepository() secondary.StandRepository {
	once.Do(initServices)
	return standRepo
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	standRepo = sqlite.NewStandRepository(database)
	allocationRepo := sqlite.NewAllocationRepository(database)
	flightRepo := sqlite.NewFlightRepository(database)
	notificationRepo = sqlite.NewNotificationRepository(database)

	notifier := notify.NewNotifier(notificationRepo, logger)

	var predictor secondary.PredictionClient
	if cfg.Prediction.UseMock {
		predictor = prediction.Mock{}
	} else {
		predictor = prediction.NewClient(prediction.Options{
			Endpoint:   cfg.Prediction.Endpoint,
			Timeout:    cfg.Prediction.Timeout,
			MaxRetries: cfg.Prediction.MaxRetries,
			CacheTTL:   cfg.Prediction.CacheTTL,
		}, logger)
	}

	weights := scoring.Weights{
		SizeFit:      cfg.Scoring.SizeFit,
		Jetway:       cfg.Scoring.Jetway,
		Distance:     cfg.Scoring.Distance,
		Availability: cfg.Scoring.Availability,
	}

	allocationService = app.NewAllocationService(
		allocationRepo, standRepo, flightRepo, predictor, notifier, logger,
		app.AllocationOptions{
			Weights:                weights,
			CommitRetries:          cfg.AllocateRetries,
			DefaultDurationMinutes: cfg.Prediction.DefaultDurationMinutes,
			PredictionTimeout:      cfg.Prediction.Timeout + time.Second,
			SaturationThreshold:    cfg.SaturationThreshold,
		})

	recallService = app.NewRecallService(
		allocationRepo, standRepo, flightRepo, notifier, logger,
		app.RecallOptions{
			Weights:             weights,
			SaturationThreshold: cfg.SaturationThreshold,
		})

	ingestService = app.NewIngestService(
		allocationService, flightfile.New(flightSourcePath), notifier, logger,
		app.IngestOptions{
			Parallelism:       cfg.BatchParallelism,
			ItemTimeout:       cfg.ItemTimeout(),
			DelayAlertMinutes: cfg.DelayAlertMinutes,
		})

	statsService = app.NewStatsService(allocationRepo, standRepo)
}
