// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool

	Naver   NaverConfig
	Scoring ScoringConfig
	Jobs    JobsConfig
	Backup  BackupConfig
}

// NaverConfig configures the market data client
type NaverConfig struct {
	BaseURL     string
	MobileURL   string
	ChartURL    string
	RateLimit   float64 // requests per second, 0 = unlimited
	Timeout     time.Duration
	HistoryDays int
}

// ScoringConfig configures the analysis service
type ScoringConfig struct {
	BatchConcurrency  int
	LargeCapThreshold float64 // KRW
	WeightsFile       string  // optional YAML weight profiles
}

// JobsConfig holds cron specs (with seconds) for background jobs.
// An empty spec disables the job.
type JobsConfig struct {
	WatchlistCron    string
	CacheCleanupCron string
	HistoryCron      string
	MaintenanceCron  string
	HistoryRetention time.Duration
}

// BackupConfig configures cloud backups of the history database
type BackupConfig struct {
	Bucket          string // empty disables backups
	Endpoint        string // S3-compatible endpoint (R2, MinIO); empty uses AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Cron            string
	RetentionDays   int
}

// Enabled reports whether cloud backups are configured
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Naver: NaverConfig{
			BaseURL:     getEnv("NAVER_BASE_URL", ""),
			MobileURL:   getEnv("NAVER_MOBILE_URL", ""),
			ChartURL:    getEnv("NAVER_CHART_URL", ""),
			RateLimit:   getEnvAsFloat("FETCH_RATE_LIMIT", 2),
			Timeout:     time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
			HistoryDays: getEnvAsInt("PRICE_HISTORY_DAYS", 120),
		},
		Scoring: ScoringConfig{
			BatchConcurrency:  getEnvAsInt("BATCH_CONCURRENCY", 4),
			LargeCapThreshold: getEnvAsFloat("LARGE_CAP_THRESHOLD", 1e13),
			WeightsFile:       getEnv("WEIGHTS_FILE", ""),
		},
		Jobs: JobsConfig{
			WatchlistCron:    getEnv("WATCHLIST_CRON", "0 0 16 * * MON-FRI"), // after KRX close
			CacheCleanupCron: getEnv("CACHE_CLEANUP_CRON", "0 */30 * * * *"),
			HistoryCron:      getEnv("HISTORY_CLEANUP_CRON", "0 30 3 * * *"),
			MaintenanceCron:  getEnv("MAINTENANCE_CRON", "0 0 2 * * *"),
			HistoryRetention: time.Duration(getEnvAsInt("HISTORY_RETENTION_DAYS", 365)) * 24 * time.Hour,
		},
		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Cron:            getEnv("BACKUP_CRON", "0 0 4 * * *"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Scoring.BatchConcurrency <= 0 {
		return fmt.Errorf("BATCH_CONCURRENCY must be positive, got %d", c.Scoring.BatchConcurrency)
	}
	if c.Scoring.LargeCapThreshold <= 0 {
		return fmt.Errorf("LARGE_CAP_THRESHOLD must be positive, got %g", c.Scoring.LargeCapThreshold)
	}
	if c.Naver.RateLimit < 0 {
		return fmt.Errorf("FETCH_RATE_LIMIT must not be negative, got %g", c.Naver.RateLimit)
	}
	if c.Scoring.WeightsFile != "" {
		if _, err := os.Stat(c.Scoring.WeightsFile); err != nil {
			return fmt.Errorf("weights file: %w", err)
		}
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	specs := map[string]string{
		"WATCHLIST_CRON":       c.Jobs.WatchlistCron,
		"CACHE_CLEANUP_CRON":   c.Jobs.CacheCleanupCron,
		"HISTORY_CLEANUP_CRON": c.Jobs.HistoryCron,
		"MAINTENANCE_CRON":     c.Jobs.MaintenanceCron,
	}
	if c.Backup.Enabled() {
		specs["BACKUP_CRON"] = c.Backup.Cron
	}
	for key, spec := range specs {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, spec, err)
		}
	}

	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
