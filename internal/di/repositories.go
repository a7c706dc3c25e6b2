package di

import (
	"fmt"

	"github.com/aristath/stockscore/internal/clientdata"
	"github.com/aristath/stockscore/internal/modules/history"
	"github.com/aristath/stockscore/internal/modules/watchlist"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.HistoryDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized first")
	}

	container.CacheRepo = clientdata.NewRepository(container.CacheDB.Conn())
	container.HistoryRepo = history.NewRepository(container.HistoryDB.Conn(), log)
	container.WatchlistRepo = watchlist.NewRepository(container.HistoryDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
