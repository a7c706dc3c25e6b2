// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/stockscore/internal/clientdata"
	"github.com/aristath/stockscore/internal/clients/naver"
	"github.com/aristath/stockscore/internal/database"
	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/history"
	"github.com/aristath/stockscore/internal/modules/scoring/scorers"
	"github.com/aristath/stockscore/internal/modules/watchlist"
	"github.com/aristath/stockscore/internal/reliability"
	"github.com/aristath/stockscore/internal/scheduler"
)

// Container holds all application dependencies.
// It is the single source of truth for service instances and is passed to
// the server for access to services.
type Container struct {
	// Databases
	HistoryDB *database.DB // analyses and watchlist
	CacheDB   *database.DB // rebuildable market data cache

	// Repositories
	CacheRepo     *clientdata.Repository
	HistoryRepo   *history.Repository
	WatchlistRepo *watchlist.Repository

	// Clients
	NaverClient *naver.Client
	MarketData  market.MarketDataSource // cache-backed view of NaverClient

	// Services
	Engine          *scorers.RecommendationEngine
	AnalysisService *analysis.Service
	BackupService   *reliability.BackupService // nil when backups are disabled

	Scheduler *scheduler.Scheduler
}

// JobInstances holds job references for manual triggering via API
type JobInstances struct {
	WatchlistAnalysis scheduler.Job
	CacheCleanup      scheduler.Job
	HistoryCleanup    scheduler.Job
	CheckDatabases    scheduler.Job
	Backup            scheduler.Job // nil when backups are disabled
}

// Close releases the databases. Safe on a partially built container.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range []*database.DB{c.HistoryDB, c.CacheDB} {
		if db == nil {
			continue
		}
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
