// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	Port     int
	LogLevel string
	DevMode  bool

	// CORSOrigins lists the allowed browser origins for the API.
	CORSOrigins []string

	// Scheduler tuning. Zero values fall back to the scheduler package
	// defaults.
	WorkerThreshold int
	WorkerTimeout   time.Duration
	WorkerEnabled   bool

	// Exchange-rate sync
	RateSyncEnabled bool
	RateAPIURL      string
	RateSyncCron    string

	// SnoozeTTLDays is how long dismissed/snoozed actions stay suppressed
	// before the cleanup job purges them.
	SnoozeTTLDays int

	Backup *BackupConfig
}

// BackupConfig holds S3-compatible backup settings. Disabled unless both
// credentials are present.
type BackupConfig struct {
	Enabled         bool
	Endpoint        string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Keep            int // number of daily archives to retain
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check STAGEHAND_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("STAGEHAND_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("STAGEHAND_PORT", 8010),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		CORSOrigins:     getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		WorkerThreshold: getEnvAsInt("WORKER_THRESHOLD", 0),
		WorkerTimeout:   time.Duration(getEnvAsInt("WORKER_TIMEOUT_SEC", 0)) * time.Second,
		WorkerEnabled:   getEnvAsBool("WORKER_ENABLED", true),
		RateSyncEnabled: getEnvAsBool("RATE_SYNC_ENABLED", true),
		RateAPIURL:      getEnv("RATE_API_URL", "https://api.frankfurter.app"),
		RateSyncCron:    getEnv("RATE_SYNC_CRON", "0 * * * *"),
		SnoozeTTLDays:   getEnvAsInt("SNOOZE_TTL_DAYS", 30),
		Backup:          loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SnoozeTTLDays < 1 {
		return fmt.Errorf("snooze TTL must be at least one day, got %d", c.SnoozeTTLDays)
	}
	if c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("backup enabled but BACKUP_BUCKET is empty")
	}
	return nil
}

// loadBackupConfig loads backup settings; backups stay disabled when
// credentials are missing so local development needs no setup.
func loadBackupConfig() *BackupConfig {
	accessKey := getEnv("BACKUP_ACCESS_KEY_ID", "")
	secretKey := getEnv("BACKUP_SECRET_ACCESS_KEY", "")

	return &BackupConfig{
		Enabled:         getEnvAsBool("BACKUP_ENABLED", false) && accessKey != "" && secretKey != "",
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		AccessKeyID:     accessKey,
		SecretAccessKey: secretKey,
		Prefix:          getEnv("BACKUP_PREFIX", "stagehand"),
		Keep:            getEnvAsInt("BACKUP_KEEP", 14),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
