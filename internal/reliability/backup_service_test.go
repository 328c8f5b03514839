package reliability

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/stagehand/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotDatabase(t *testing.T) {
	dir := t.TempDir()

	db, err := database.New(database.Config{Path: filepath.Join(dir, "tour.db"), Name: "tour"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE shows (id TEXT PRIMARY KEY, fee REAL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO shows VALUES ('s1', 2500)")
	require.NoError(t, err)

	svc := NewBackupService(nil, map[string]*database.DB{"tour": db}, dir, zerolog.Nop())

	snapPath := filepath.Join(dir, "snapshot.db")
	require.NoError(t, svc.SnapshotDatabase("tour", snapPath))

	// Snapshot is a standalone database with the data intact.
	snap, err := database.New(database.Config{Path: snapPath, Name: "snapshot"})
	require.NoError(t, err)
	defer snap.Close()

	var fee float64
	require.NoError(t, snap.QueryRow("SELECT fee FROM shows WHERE id = 's1'").Scan(&fee))
	assert.Equal(t, 2500.0, fee)
}

func TestSnapshotUnknownDatabase(t *testing.T) {
	svc := NewBackupService(nil, map[string]*database.DB{}, t.TempDir(), zerolog.Nop())
	assert.Error(t, svc.SnapshotDatabase("nope", "/tmp/x.db"))
}

func TestCreateArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.db"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.db"), []byte("bravo"), 0644))

	archivePath := filepath.Join(dir, "backup.tar.gz")
	require.NoError(t, createArchive(archivePath, dir, []string{"a.db", "b.db"}))

	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	contents := map[string]string{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		contents[hdr.Name] = string(data)
	}

	assert.Equal(t, map[string]string{"a.db": "alpha", "b.db": "bravo"}, contents)
}

func TestFileChecksumStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(path, []byte("stagehand"), 0644))

	first, err := fileChecksum(path)
	require.NoError(t, err)
	second, err := fileChecksum(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestMaintenanceJobRun(t *testing.T) {
	dir := t.TempDir()

	tourDB, err := database.New(database.Config{Path: filepath.Join(dir, "tour.db"), Name: "tour"})
	require.NoError(t, err)
	defer tourDB.Close()

	cacheDB, err := database.New(database.Config{Path: filepath.Join(dir, "cache.db"), Profile: database.ProfileCache, Name: "cache"})
	require.NoError(t, err)
	defer cacheDB.Close()

	job := NewMaintenanceJob(map[string]*database.DB{"tour": tourDB, "cache": cacheDB}, zerolog.Nop())
	assert.Equal(t, "maintenance", job.Name())

	start := time.Now()
	require.NoError(t, job.Run())
	assert.Less(t, time.Since(start), time.Minute)
}
