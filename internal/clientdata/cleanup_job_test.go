package clientdata

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestCleanupJobName(t *testing.T) {
	repo, _ := setupTestRepo(t)
	job := NewCleanupJob(repo, zerolog.Nop())

	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	repo, db := setupTestRepo(t)
	job := NewCleanupJob(repo, zerolog.Nop())

	require.NoError(t, repo.Store("exchangerate", "EUR:USD", map[string]float64{"rate": 1.1}, -time.Hour))
	require.NoError(t, repo.Store("exchangerate", "EUR:GBP", map[string]float64{"rate": 0.85}, time.Hour))
	require.NoError(t, repo.Store("monthly_rates", "2024-01", map[string]float64{"USD": 1.07}, -time.Hour))
	require.NoError(t, repo.Store("monthly_rates", "2025-08", map[string]float64{"USD": 1.08}, time.Hour))

	require.NoError(t, job.Run())

	var count int
	require.NoError(t, db.QueryRow(
		"SELECT (SELECT COUNT(*) FROM exchangerate) + (SELECT COUNT(*) FROM monthly_rates)",
	).Scan(&count))
	assert.Equal(t, 2, count, "only fresh entries survive cleanup")

	fresh, err := repo.GetIfFresh("monthly_rates", "2025-08")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}
