package shows

import (
	"database/sql"
	"testing"

	"github.com/aristath/stagehand/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // each :memory: connection is its own database
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func sampleShow(id string) domain.Show {
	return domain.Show{
		ID:          id,
		Date:        "2025-07-12T20:00:00Z",
		City:        "Berlin",
		Country:     "DE",
		Fee:         2500,
		FeeCurrency: "EUR",
		Status:      domain.StatusConfirmed,
	}
}

func TestUpsertAndGet(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Upsert(sampleShow("s1")))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Berlin", got.City)
	assert.Equal(t, 2500.0, got.Fee)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestUpsertUpdatesExisting(t *testing.T) {
	repo := setupRepo(t)

	show := sampleShow("s1")
	require.NoError(t, repo.Upsert(show))

	show.Fee = 3000
	show.Status = domain.StatusPending
	require.NoError(t, repo.Upsert(show))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3000.0, got.Fee)
	assert.Equal(t, domain.StatusPending, got.Status)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetMissingReturnsNil(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListOrdersByDate(t *testing.T) {
	repo := setupRepo(t)

	late := sampleShow("late")
	late.Date = "2025-09-01T20:00:00Z"
	early := sampleShow("early")
	early.Date = "2025-05-01T20:00:00Z"

	require.NoError(t, repo.Upsert(late))
	require.NoError(t, repo.Upsert(early))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "early", list[0].ID)
	assert.Equal(t, "late", list[1].ID)
}

func TestListByStatus(t *testing.T) {
	repo := setupRepo(t)

	confirmed := sampleShow("c1")
	pending := sampleShow("p1")
	pending.Status = domain.StatusPending
	offer := sampleShow("o1")
	offer.Status = domain.StatusOffer

	require.NoError(t, repo.Upsert(confirmed))
	require.NoError(t, repo.Upsert(pending))
	require.NoError(t, repo.Upsert(offer))

	pendings, err := repo.ListByStatus(domain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pendings, 1)
	assert.Equal(t, "p1", pendings[0].ID)
}

func TestDelete(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Upsert(sampleShow("s1")))
	require.NoError(t, repo.Delete("s1"))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing id is a no-op.
	assert.NoError(t, repo.Delete("s1"))
}
