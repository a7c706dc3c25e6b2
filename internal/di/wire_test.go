package di

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/stockscore/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir: t.TempDir(),
		Port:    8001,
		Scoring: config.ScoringConfig{
			BatchConcurrency:  2,
			LargeCapThreshold: 1e13,
		},
		Jobs: config.JobsConfig{
			WatchlistCron:    "0 0 16 * * MON-FRI",
			CacheCleanupCron: "0 */30 * * * *",
			HistoryRetention: 30 * 24 * time.Hour,
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.HistoryDB)
	assert.NotNil(t, container.CacheDB)
	assert.NotNil(t, container.HistoryRepo)
	assert.NotNil(t, container.WatchlistRepo)
	assert.NotNil(t, container.CacheRepo)
	assert.NotNil(t, container.NaverClient)
	assert.NotNil(t, container.MarketData)
	assert.NotNil(t, container.Engine)
	assert.NotNil(t, container.AnalysisService)
	assert.Nil(t, container.BackupService, "backups are off without a bucket")

	require.NotNil(t, jobs)
	assert.NotNil(t, jobs.WatchlistAnalysis)
	assert.NotNil(t, jobs.CacheCleanup)
	assert.NotNil(t, jobs.HistoryCleanup)
	assert.NotNil(t, jobs.CheckDatabases)
	assert.Nil(t, jobs.Backup)

	// only jobs with a schedule are registered
	assert.Equal(t, []string{"cache_cleanup", "watchlist_analysis"}, container.Scheduler.JobNames())

	assert.FileExists(t, filepath.Join(cfg.DataDir, "history.db"))
	assert.FileExists(t, filepath.Join(cfg.DataDir, "cache.db"))
}

func TestWire_WithBackups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backup = config.BackupConfig{
		Bucket:          "stockscore",
		Endpoint:        "http://127.0.0.1:9",
		Region:          "auto",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Cron:            "0 0 4 * * *",
		RetentionDays:   30,
	}

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.BackupService)
	assert.NotNil(t, jobs.Backup)
	assert.Contains(t, container.Scheduler.JobNames(), "cloud_backup")
}

func TestWire_BadWeightsFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scoring.WeightsFile = filepath.Join(cfg.DataDir, "missing.yaml")

	_, _, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeRepositories_RequiresDatabases(t *testing.T) {
	assert.Error(t, InitializeRepositories(&Container{}, zerolog.Nop()))
}

func TestContainer_ClosePartial(t *testing.T) {
	assert.NoError(t, (&Container{}).Close())
}
