package di

import (
	"context"
	"fmt"

	"github.com/aristath/stockscore/internal/clientdata"
	"github.com/aristath/stockscore/internal/clients/naver"
	"github.com/aristath/stockscore/internal/config"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/scoring/scorers"
	"github.com/aristath/stockscore/internal/reliability"
	"github.com/aristath/stockscore/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeServices creates clients and services on top of the repositories
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.HistoryRepo == nil || container.CacheRepo == nil {
		return fmt.Errorf("repositories must be initialized first")
	}

	container.NaverClient = naver.NewClient(naver.Config{
		BaseURL:     cfg.Naver.BaseURL,
		MobileURL:   cfg.Naver.MobileURL,
		ChartURL:    cfg.Naver.ChartURL,
		RateLimit:   cfg.Naver.RateLimit,
		Timeout:     cfg.Naver.Timeout,
		HistoryDays: cfg.Naver.HistoryDays,
	}, log)
	container.MarketData = clientdata.NewCachedSource(container.NaverClient, container.CacheRepo, log)

	profiles, err := scorers.LoadWeightProfiles(cfg.Scoring.WeightsFile)
	if err != nil {
		return fmt.Errorf("failed to load weight profiles: %w", err)
	}
	container.Engine = scorers.NewRecommendationEngine(profiles, cfg.Scoring.LargeCapThreshold)

	container.AnalysisService = analysis.NewService(
		container.MarketData,
		container.Engine,
		log,
		analysis.WithResolver(container.NaverClient),
		analysis.WithRecorder(container.HistoryRepo),
		analysis.WithConcurrency(cfg.Scoring.BatchConcurrency),
	)

	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Store(context.Background(), reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize backup store: %w", err)
		}
		// cache.db is rebuildable and left out
		container.BackupService = reliability.NewBackupService(store, cfg.DataDir, log, container.HistoryDB)
	}

	container.Scheduler = scheduler.New(log)

	log.Debug().
		Bool("backups", container.BackupService != nil).
		Msg("Services initialized")
	return nil
}
