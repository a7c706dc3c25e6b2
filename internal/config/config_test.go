package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Setenv("DATA_DIR", dataDir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.DirExists(t, dataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)

	assert.Equal(t, 2.0, cfg.Naver.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Naver.Timeout)
	assert.Equal(t, 120, cfg.Naver.HistoryDays)

	assert.Equal(t, 4, cfg.Scoring.BatchConcurrency)
	assert.Equal(t, 1e13, cfg.Scoring.LargeCapThreshold)

	assert.Equal(t, "0 0 16 * * MON-FRI", cfg.Jobs.WatchlistCron)
	assert.Equal(t, 365*24*time.Hour, cfg.Jobs.HistoryRetention)

	assert.False(t, cfg.Backup.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("FETCH_RATE_LIMIT", "0.5")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("BATCH_CONCURRENCY", "8")
	t.Setenv("LARGE_CAP_THRESHOLD", "5e12")
	t.Setenv("BACKUP_BUCKET", "stockscore")
	t.Setenv("BACKUP_ENDPOINT", "https://r2.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 0.5, cfg.Naver.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.Naver.Timeout)
	assert.Equal(t, 8, cfg.Scoring.BatchConcurrency)
	assert.Equal(t, 5e12, cfg.Scoring.LargeCapThreshold)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "https://r2.example.com", cfg.Backup.Endpoint)
	assert.Equal(t, "auto", cfg.Backup.Region)
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "eighty")
	t.Setenv("DEV_MODE", "maybe")
	t.Setenv("FETCH_RATE_LIMIT", "fast")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 2.0, cfg.Naver.RateLimit)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:    8001,
			Scoring: ScoringConfig{BatchConcurrency: 4, LargeCapThreshold: 1e13},
			Jobs:    JobsConfig{WatchlistCron: "0 0 16 * * MON-FRI"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Port = 70000 }, true},
		{"zero concurrency", func(c *Config) { c.Scoring.BatchConcurrency = 0 }, true},
		{"zero threshold", func(c *Config) { c.Scoring.LargeCapThreshold = 0 }, true},
		{"negative rate limit", func(c *Config) { c.Naver.RateLimit = -1 }, true},
		{"missing weights file", func(c *Config) { c.Scoring.WeightsFile = "/nonexistent/weights.yaml" }, true},
		{"five-field cron", func(c *Config) { c.Jobs.WatchlistCron = "0 16 * * MON-FRI" }, true},
		{"disabled job", func(c *Config) { c.Jobs.WatchlistCron = "" }, false},
		{"bad backup cron", func(c *Config) {
			c.Backup.Bucket = "b"
			c.Backup.Cron = "never"
		}, true},
		{"backup cron ignored when disabled", func(c *Config) { c.Backup.Cron = "never" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_WeightsFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: {}\n"), 0644))

	cfg := &Config{
		Port:    8001,
		Scoring: ScoringConfig{BatchConcurrency: 1, LargeCapThreshold: 1, WeightsFile: path},
	}
	assert.NoError(t, cfg.Validate())
}
