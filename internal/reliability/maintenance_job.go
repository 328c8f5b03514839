package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stagehand/internal/database"
	"github.com/rs/zerolog"
)

// MaintenanceJob performs daily database maintenance: integrity checks,
// WAL checkpoints and cache vacuuming. Scheduled for the quiet hours.
type MaintenanceJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job over the named databases.
func NewMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Run executes the maintenance job.
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", name).Msg("Integrity check failed")
			return fmt.Errorf("integrity check failed for %s: %w", name, err)
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			// Not critical; the autocheckpoint will catch up.
			j.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed")
		}

		if db.Profile() == database.ProfileCache {
			if err := db.Vacuum(); err != nil {
				j.log.Warn().Err(err).Str("database", name).Msg("Vacuum failed")
			}
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Int("databases", len(j.databases)).
		Msg("Daily maintenance completed")

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}
