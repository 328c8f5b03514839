// Package main is the entry point for the Stagehand tour management backend.
// It wires the stores, the scoring engine and its scheduler, the rate sync
// and maintenance jobs, and the HTTP API the dashboard talks to.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/stagehand/internal/actions"
	"github.com/aristath/stagehand/internal/clientdata"
	"github.com/aristath/stagehand/internal/clients/exchangerate"
	"github.com/aristath/stagehand/internal/config"
	"github.com/aristath/stagehand/internal/currency"
	"github.com/aristath/stagehand/internal/database"
	"github.com/aristath/stagehand/internal/events"
	"github.com/aristath/stagehand/internal/modules/finance"
	"github.com/aristath/stagehand/internal/modules/prefs"
	"github.com/aristath/stagehand/internal/modules/shows"
	"github.com/aristath/stagehand/internal/modules/travel"
	"github.com/aristath/stagehand/internal/reliability"
	"github.com/aristath/stagehand/internal/scheduler"
	"github.com/aristath/stagehand/internal/server"
	"github.com/aristath/stagehand/internal/services"
	"github.com/aristath/stagehand/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Stagehand")

	// Databases: tour.db holds shows, travel and prefs; client_data.db is
	// the ephemeral cache for external API responses.
	tourDB, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "tour.db"),
		Name: "tour",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open tour database")
	}
	defer tourDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	// Repositories
	showRepo, err := shows.NewRepository(tourDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize show repository")
	}
	travelRepo, err := travel.NewRepository(tourDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize travel repository")
	}
	prefsRepo, err := prefs.NewRepository(tourDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize prefs repository")
	}
	cacheRepo, err := clientdata.NewRepository(cacheDB.Conn())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize client data repository")
	}

	// Core services
	bus := events.NewBus(log)
	rateProvider := currency.NewProvider(currency.DefaultTable())
	engine := actions.NewEngine(log)
	sched := scheduler.New(engine, bus, scheduler.Options{
		WorkerThreshold: cfg.WorkerThreshold,
		WorkerTimeout:   cfg.WorkerTimeout,
		WorkerEnabled:   cfg.WorkerEnabled,
		Idle:            &scheduler.GoroutineIdleRunner{},
	}, log)
	financeSvc := finance.NewService(showRepo, rateProvider, log)

	var rateSync *services.RateSyncService
	if cfg.RateSyncEnabled {
		rateClient := exchangerate.NewClient(cfg.RateAPIURL, cacheRepo, log)
		rateSync = services.NewRateSyncService(rateClient, rateProvider, bus, log)
	}

	// Cron jobs
	jobs := cron.New()
	if rateSync != nil {
		if _, err := jobs.AddFunc(cfg.RateSyncCron, func() {
			if err := rateSync.Sync(); err != nil {
				log.Warn().Err(err).Msg("Scheduled rate sync failed")
			}
		}); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.RateSyncCron).Msg("Invalid rate sync schedule")
		}
	}

	prefsCleanup := prefs.NewCleanupJob(prefsRepo, bus, time.Duration(cfg.SnoozeTTLDays)*24*time.Hour, log)
	cacheCleanup := clientdata.NewCleanupJob(cacheRepo, log)
	maintenance := reliability.NewMaintenanceJob(map[string]*database.DB{
		"tour":  tourDB,
		"cache": cacheDB,
	}, log)

	mustSchedule(jobs, "0 3 * * *", prefsCleanup.Run, log)
	mustSchedule(jobs, "30 3 * * *", cacheCleanup.Run, log)
	mustSchedule(jobs, "0 2 * * *", maintenance.Run, log)

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), reliability.S3ClientConfig{
			Endpoint:        cfg.Backup.Endpoint,
			Bucket:          cfg.Backup.Bucket,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup client")
		}

		backupSvc := reliability.NewBackupService(s3Client, map[string]*database.DB{
			"tour": tourDB,
		}, cfg.DataDir, log)

		mustSchedule(jobs, "0 4 * * *", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			if err := backupSvc.CreateAndUploadBackup(ctx); err != nil {
				return err
			}
			return backupSvc.RotateOldBackups(ctx, cfg.Backup.Keep)
		}, log)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Cloud backups enabled")
	}

	jobs.Start()
	defer jobs.Stop()

	// Seed the rate table on boot so the first computation already has
	// this month's rates. A failure is fine; the bundled table covers it.
	if rateSync != nil {
		go func() {
			if err := rateSync.Sync(); err != nil {
				log.Warn().Err(err).Msg("Initial rate sync failed, using bundled table")
			}
		}()
	}

	// HTTP server
	srv := server.New(server.Config{
		Log:          log,
		Config:       cfg,
		TourDB:       tourDB,
		CacheDB:      cacheDB,
		Scheduler:    sched,
		RateProvider: rateProvider,
		EventBus:     bus,
		ShowRepo:     showRepo,
		TravelRepo:   travelRepo,
		PrefsRepo:    prefsRepo,
		Finance:      financeSvc,
		RateSync:     rateSync,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Stagehand stopped")
}

// mustSchedule registers a job on a fixed cron spec and logs failures.
func mustSchedule(jobs *cron.Cron, spec string, run func() error, log zerolog.Logger) {
	if _, err := jobs.AddFunc(spec, func() {
		if err := run(); err != nil {
			log.Warn().Err(err).Str("cron", spec).Msg("Scheduled job failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("cron", spec).Msg("Invalid cron schedule")
	}
}
