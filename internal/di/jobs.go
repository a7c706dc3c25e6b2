package di

import (
	"fmt"

	"github.com/aristath/stockscore/internal/clientdata"
	"github.com/aristath/stockscore/internal/config"
	"github.com/aristath/stockscore/internal/modules/history"
	"github.com/aristath/stockscore/internal/reliability"
	"github.com/aristath/stockscore/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and schedules those with a cron spec.
// Returns JobInstances for manual triggering via API.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.Scheduler == nil {
		return nil, fmt.Errorf("services must be initialized first")
	}

	instances := &JobInstances{
		WatchlistAnalysis: scheduler.NewWatchlistAnalysisJob(container.WatchlistRepo, container.AnalysisService, log),
		CacheCleanup:      clientdata.NewCleanupJob(container.CacheRepo, log),
		HistoryCleanup:    history.NewCleanupJob(container.HistoryRepo, cfg.Jobs.HistoryRetention, log),
		CheckDatabases:    scheduler.NewCheckDatabasesJob(cfg.DataDir, log, container.HistoryDB, container.CacheDB),
	}
	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
	}

	schedules := []struct {
		spec string
		job  scheduler.Job
	}{
		{cfg.Jobs.WatchlistCron, instances.WatchlistAnalysis},
		{cfg.Jobs.CacheCleanupCron, instances.CacheCleanup},
		{cfg.Jobs.HistoryCron, instances.HistoryCleanup},
		{cfg.Jobs.MaintenanceCron, instances.CheckDatabases},
	}
	if instances.Backup != nil {
		schedules = append(schedules, struct {
			spec string
			job  scheduler.Job
		}{cfg.Backup.Cron, instances.Backup})
	}

	for _, s := range schedules {
		if s.spec == "" {
			log.Info().Str("job", s.job.Name()).Msg("Job disabled (no schedule)")
			continue
		}
		if err := container.Scheduler.AddJob(s.spec, s.job); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", s.job.Name(), err)
		}
	}

	return instances, nil
}
