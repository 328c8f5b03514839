package reliability

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aristath/stagehand/internal/database"
	"github.com/rs/zerolog"
)

// backupPrefix names every uploaded archive; rotation keys off it.
const backupPrefix = "stagehand-backup-"

// BackupMetadata describes the contents of one backup archive.
type BackupMetadata struct {
	Timestamp time.Time          `json:"timestamp"`
	Version   string             `json:"version"`
	Databases []DatabaseMetadata `json:"databases"`
}

// DatabaseMetadata describes a single database file inside a backup.
type DatabaseMetadata struct {
	Name      string `json:"name"`
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// BackupInfo summarizes one stored backup for listing and rotation.
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// BackupService snapshots the SQLite databases and ships tar.gz archives
// to an S3-compatible store.
type BackupService struct {
	s3        *S3Client
	databases map[string]*database.DB
	dataDir   string
	log       zerolog.Logger
}

// NewBackupService creates a backup service over the given named databases.
func NewBackupService(s3 *S3Client, databases map[string]*database.DB, dataDir string, log zerolog.Logger) *BackupService {
	return &BackupService{
		s3:        s3,
		databases: databases,
		dataDir:   dataDir,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// SnapshotDatabase writes a consistent copy of one database to destPath.
// VACUUM INTO produces a compact single-file snapshot that is safe to
// take while the database is in use.
func (s *BackupService) SnapshotDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	if _, err := db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", name, err)
	}
	return nil
}

// CreateAndUploadBackup snapshots every database, archives the snapshots
// with a metadata file and uploads the archive.
func (s *BackupService) CreateAndUploadBackup(ctx context.Context) error {
	s.log.Info().Msg("Starting backup")
	startTime := time.Now()

	stagingDir, err := os.MkdirTemp(s.dataDir, "backup-staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	metadata := BackupMetadata{
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Databases: make([]DatabaseMetadata, 0, len(s.databases)),
	}

	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)

	fileNames := make([]string, 0, len(names)+1)
	for _, name := range names {
		fileName := name + ".db"
		dbPath := filepath.Join(stagingDir, fileName)

		s.log.Debug().Str("database", name).Msg("Snapshotting database")
		if err := s.SnapshotDatabase(name, dbPath); err != nil {
			return err
		}

		info, err := os.Stat(dbPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s snapshot: %w", name, err)
		}

		checksum, err := fileChecksum(dbPath)
		if err != nil {
			return fmt.Errorf("failed to checksum %s snapshot: %w", name, err)
		}

		metadata.Databases = append(metadata.Databases, DatabaseMetadata{
			Name:      name,
			Filename:  fileName,
			SizeBytes: info.Size(),
			Checksum:  checksum,
		})
		fileNames = append(fileNames, fileName)
	}

	metadataPath := filepath.Join(stagingDir, "backup-metadata.json")
	if err := writeMetadata(metadataPath, metadata); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	fileNames = append(fileNames, "backup-metadata.json")

	archiveName := fmt.Sprintf("%s%s.tar.gz", backupPrefix, time.Now().Format("2006-01-02-150405"))
	archivePath := filepath.Join(stagingDir, archiveName)
	if err := createArchive(archivePath, stagingDir, fileNames); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer archiveFile.Close()

	if err := s.s3.Upload(ctx, archiveName, archiveFile); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	archiveInfo, _ := os.Stat(archivePath)
	var sizeMB int64
	if archiveInfo != nil {
		sizeMB = archiveInfo.Size() / 1024 / 1024
	}

	s.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Str("archive", archiveName).
		Int64("size_mb", sizeMB).
		Msg("Backup completed")

	return nil
}

// ListBackups lists all stored backups, newest first.
func (s *BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.s3.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := time.Now()

	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := *obj.Key
		if !strings.HasPrefix(filename, backupPrefix) || !strings.HasSuffix(filename, ".tar.gz") {
			continue
		}

		timestampStr := strings.TrimSuffix(strings.TrimPrefix(filename, backupPrefix), ".tar.gz")
		timestamp, err := time.Parse("2006-01-02-150405", timestampStr)
		if err != nil {
			s.log.Warn().Str("filename", filename).Msg("Failed to parse timestamp from filename")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}

		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes backups beyond keep, newest first retained.
// A minimum of 3 backups survives regardless of keep.
func (s *BackupService) RotateOldBackups(ctx context.Context, keep int) error {
	const minBackupsToKeep = 3
	if keep < minBackupsToKeep {
		keep = minBackupsToKeep
	}

	backups, err := s.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}

	deleted := 0
	for _, backup := range backups[keep:] {
		if err := s.s3.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().Err(err).Str("filename", backup.Filename).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("Backup rotation completed")

	return nil
}

// fileChecksum calculates the SHA256 checksum of a file.
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// writeMetadata writes the backup metadata file.
func writeMetadata(path string, metadata BackupMetadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// createArchive builds a tar.gz containing the named files from sourceDir.
func createArchive(archivePath, sourceDir string, fileNames []string) error {
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer archiveFile.Close()

	gzWriter := gzip.NewWriter(archiveFile)
	defer gzWriter.Close()

	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	for _, name := range fileNames {
		if err := addFileToArchive(tarWriter, filepath.Join(sourceDir, name), name); err != nil {
			return fmt.Errorf("failed to archive %s: %w", name, err)
		}
	}

	return nil
}

// addFileToArchive appends one file to the tar stream.
func addFileToArchive(tarWriter *tar.Writer, filePath, nameInArchive string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    nameInArchive,
		Size:    info.Size(),
		Mode:    0644,
		ModTime: info.ModTime(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}

	_, err = io.Copy(tarWriter, file)
	return err
}
