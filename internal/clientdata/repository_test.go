package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTestRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // each :memory: connection is its own database
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db)
	require.NoError(t, err)

	return repo, db
}

func TestNewRepositoryCreatesSchema(t *testing.T) {
	repo, db := setupTestRepo(t)
	assert.NotNil(t, repo)

	for _, table := range AllTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s must exist", table)
	}
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo, _ := setupTestRepo(t)

	rates := map[string]float64{"USD": 1.08, "GBP": 0.85}
	require.NoError(t, repo.Store("monthly_rates", "2025-08", rates, TTLMonthlyRates))

	data, err := repo.GetIfFresh("monthly_rates", "2025-08")
	require.NoError(t, err)
	require.NotNil(t, data)

	var parsed map[string]float64
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, 1.08, parsed["USD"])
	assert.Equal(t, 0.85, parsed["GBP"])
}

func TestGetIfFreshMissesExpired(t *testing.T) {
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.Store("exchangerate", "EUR:USD", map[string]float64{"rate": 1.1}, -time.Hour))

	data, err := repo.GetIfFresh("exchangerate", "EUR:USD")
	require.NoError(t, err)
	assert.Nil(t, data, "expired entry must not be returned as fresh")

	// Stale read still works as a fallback.
	stale, err := repo.Get("exchangerate", "EUR:USD")
	require.NoError(t, err)
	assert.NotNil(t, stale)
}

func TestGetMissingKey(t *testing.T) {
	repo, _ := setupTestRepo(t)

	data, err := repo.Get("exchangerate", "EUR:JPY")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStoreUpserts(t *testing.T) {
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.Store("monthly_rates", "2025-08", map[string]float64{"USD": 1.05}, TTLMonthlyRates))
	require.NoError(t, repo.Store("monthly_rates", "2025-08", map[string]float64{"USD": 1.09}, TTLMonthlyRates))

	data, err := repo.GetIfFresh("monthly_rates", "2025-08")
	require.NoError(t, err)
	require.NotNil(t, data)

	var parsed map[string]float64
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, 1.09, parsed["USD"])
}

func TestDelete(t *testing.T) {
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.Store("exchangerate", "EUR:USD", map[string]float64{"rate": 1.1}, time.Hour))
	require.NoError(t, repo.Delete("exchangerate", "EUR:USD"))

	data, err := repo.Get("exchangerate", "EUR:USD")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestDeleteExpired(t *testing.T) {
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.Store("exchangerate", "EUR:USD", map[string]float64{"rate": 1.1}, -time.Hour))
	require.NoError(t, repo.Store("exchangerate", "EUR:GBP", map[string]float64{"rate": 0.85}, time.Hour))

	deleted, err := repo.DeleteExpired("exchangerate")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	fresh, err := repo.GetIfFresh("exchangerate", "EUR:GBP")
	require.NoError(t, err)
	assert.NotNil(t, fresh, "fresh entry must survive cleanup")
}

func TestDeleteAllExpired(t *testing.T) {
	repo, _ := setupTestRepo(t)

	require.NoError(t, repo.Store("exchangerate", "EUR:USD", map[string]float64{"rate": 1.1}, -time.Hour))
	require.NoError(t, repo.Store("monthly_rates", "2024-01", map[string]float64{"USD": 1.07}, -time.Hour))

	results, err := repo.DeleteAllExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results["exchangerate"])
	assert.Equal(t, int64(1), results["monthly_rates"])
}

func TestInvalidTableRejected(t *testing.T) {
	repo, _ := setupTestRepo(t)

	err := repo.Store("shows; DROP TABLE exchangerate", "x", "y", time.Hour)
	assert.Error(t, err)

	_, err = repo.Get("nope", "x")
	assert.Error(t, err)
}
