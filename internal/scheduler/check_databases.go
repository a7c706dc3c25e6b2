package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockscore/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"
)

const (
	// walFramesCheckpointThreshold triggers a TRUNCATE checkpoint
	walFramesCheckpointThreshold = 1000
	// minFreeDiskBytes fails the job below 500MB free
	minFreeDiskBytes = 500 * 1024 * 1024
)

// CheckDatabasesJob verifies database integrity, keeps WAL files small and
// watches free disk space under the data directory
type CheckDatabasesJob struct {
	databases []*database.DB
	dataDir   string
	log       zerolog.Logger
}

// NewCheckDatabasesJob creates a new CheckDatabasesJob. nil databases are skipped.
func NewCheckDatabasesJob(dataDir string, log zerolog.Logger, databases ...*database.DB) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		databases: databases,
		dataDir:   dataDir,
		log:       log.With().Str("job", "check_databases").Logger(),
	}
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run executes the check databases job
func (j *CheckDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	checked := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database integrity check failed")
			return fmt.Errorf("%s integrity check failed: %w", db.Name(), err)
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to check WAL checkpoint")
		} else if frames > walFramesCheckpointThreshold {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL file is large, truncating")
			if err := db.WALCheckpoint("TRUNCATE"); err != nil {
				j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			}
		}

		checked++
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().Int("checked", checked).Msg("Database check completed")
	return nil
}

func (j *CheckDatabasesJob) checkDiskSpace() error {
	if j.dataDir == "" {
		return nil
	}

	usage, err := disk.Usage(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("dir", j.dataDir).Msg("Failed to read disk usage")
		return nil
	}

	if usage.Free < minFreeDiskBytes {
		j.log.Error().
			Uint64("free_bytes", usage.Free).
			Msg("Insufficient disk space")
		return fmt.Errorf("only %d MB free under %s", usage.Free/1024/1024, j.dataDir)
	}

	j.log.Debug().Float64("used_percent", usage.UsedPercent).Msg("Disk space check")
	return nil
}
