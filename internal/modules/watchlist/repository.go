package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/rs/zerolog"
)

// Repository handles watchlist persistence in history.db
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new watchlist repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "watchlist").Logger(),
	}
}

// Add inserts a stock or updates its name and memo. The original added_at is kept.
func (r *Repository) Add(ctx context.Context, item Item) (*Item, error) {
	item.Code = strings.TrimSpace(item.Code)
	if item.Code == "" {
		return nil, fmt.Errorf("stock code is required")
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (code, name, memo, added_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name, memo = excluded.memo`,
		item.Code, item.Name, item.Memo, item.AddedAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s to watchlist: %w", item.Code, err)
	}

	r.log.Info().Str("code", item.Code).Msg("Watchlist updated")
	return r.Get(ctx, item.Code)
}

// Get returns one watched stock
func (r *Repository) Get(ctx context.Context, code string) (*Item, error) {
	var (
		item    Item
		addedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT code, name, memo, added_at FROM watchlist WHERE code = ?", code,
	).Scan(&item.Code, &item.Name, &item.Memo, &addedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.NewStockError(code, market.ErrNotFound, "not in watchlist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist item %s: %w", code, err)
	}

	item.AddedAt = time.UnixMilli(addedAt)
	return &item, nil
}

// Remove deletes a stock from the watchlist
func (r *Repository) Remove(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM watchlist WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return market.NewStockError(code, market.ErrNotFound, "not in watchlist")
	}

	r.log.Info().Str("code", code).Msg("Removed from watchlist")
	return nil
}

// List returns all watched stocks, oldest first
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT code, name, memo, added_at FROM watchlist ORDER BY added_at, code")
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var (
			item    Item
			addedAt int64
		)
		if err := rows.Scan(&item.Code, &item.Name, &item.Memo, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		item.AddedAt = time.UnixMilli(addedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return items, nil
}

// Codes returns the watched stock codes, oldest first
func (r *Repository) Codes(ctx context.Context) ([]string, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(items))
	for i, item := range items {
		codes[i] = item.Code
	}
	return codes, nil
}

// Contains reports whether code is watched
func (r *Repository) Contains(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM watchlist WHERE code = ?)", code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist for %s: %w", code, err)
	}
	return exists, nil
}
