package prefs

import (
	"time"

	"github.com/aristath/stagehand/internal/events"
	"github.com/rs/zerolog"
)

// CleanupJob purges lapsed snoozes and aged-out dismissals.
// It should be scheduled to run daily.
type CleanupJob struct {
	repo   *Repository
	bus    *events.Bus
	maxAge time.Duration
	log    zerolog.Logger
}

// NewCleanupJob creates a new prefs cleanup job. maxAge is how long plain
// dismissals are honored before the action may resurface.
func NewCleanupJob(repo *Repository, bus *events.Bus, maxAge time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:   repo,
		bus:    bus,
		maxAge: maxAge,
		log:    log.With().Str("job", "prefs_cleanup").Logger(),
	}
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	removed, err := j.repo.DeleteExpired(time.Now().UTC(), j.maxAge)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired prefs")
		return err
	}

	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Prefs cleanup completed")
		j.bus.Publish(&events.PrefsCleanedData{Removed: removed})
	}

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "prefs_cleanup"
}
