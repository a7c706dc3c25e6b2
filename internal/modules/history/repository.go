package history

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

const summaryColumns = `id, code, name, stock_type, technical_score, fundamental_score,
	total_score, recommendation, tech_weight, fund_weight, analyzed_at`

// Repository handles analysis history persistence in history.db
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new history repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "history").Logger(),
	}
}

// Record stores a finished analysis under a new id
func (r *Repository) Record(ctx context.Context, a *analysis.Analysis) error {
	if a == nil {
		return fmt.Errorf("nil analysis")
	}

	payload, err := encodeAnalysis(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis for %s: %w", a.Code, err)
	}

	analyzedAt := a.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	id := uuid.New().String()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analyses (id, code, name, stock_type, technical_score, fundamental_score,
			total_score, recommendation, tech_weight, fund_weight, payload, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.Code, a.Name, string(a.StockType), a.TechnicalScore, a.FundamentalScore,
		a.TotalScore, string(a.Recommendation), a.Weights.Technical, a.Weights.Fundamental,
		payload, analyzedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis for %s: %w", a.Code, err)
	}

	r.log.Debug().Str("id", id).Str("code", a.Code).Float64("total", a.TotalScore).Msg("Recorded analysis")
	return nil
}

// List returns entries newest first, without the full analysis payload
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	query := "SELECT " + summaryColumns + " FROM analyses"
	var args []interface{}
	if filter.Code != "" {
		query += " WHERE code = ?"
		args = append(args, filter.Code)
	}
	query += " ORDER BY analyzed_at DESC, rowid DESC LIMIT ?"
	args = append(args, filter.limit())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// Get returns one entry with its full analysis
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+summaryColumns+", payload FROM analyses WHERE id = ?", id)
	return r.scanFull(row, id)
}

// Latest returns the most recent entry for a stock with its full analysis
func (r *Repository) Latest(ctx context.Context, code string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+", payload FROM analyses WHERE code = ? ORDER BY analyzed_at DESC, rowid DESC LIMIT 1",
		code,
	)
	return r.scanFull(row, code)
}

// DeleteOlderThan removes entries analyzed before cutoff
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE analyzed_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return result.RowsAffected()
}

func (r *Repository) scanFull(row *sql.Row, key string) (*Entry, error) {
	var (
		e       Entry
		payload []byte
	)
	err := scanInto(row, &e, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, market.NewStockError(key, market.ErrNotFound, "no analysis history")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load history entry %s: %w", key, err)
	}

	a, err := decodeAnalysis(payload)
	if err != nil {
		// summary columns are still usable
		r.log.Warn().Err(err).Str("id", e.ID).Msg("Failed to decode stored analysis")
		return &e, nil
	}
	e.Analysis = a
	return &e, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInto(s scanner, e *Entry, extra ...interface{}) error {
	var (
		stockType, recommendation string
		analyzedAt                int64
	)
	dest := []interface{}{
		&e.ID, &e.Code, &e.Name, &stockType, &e.TechnicalScore, &e.FundamentalScore,
		&e.TotalScore, &recommendation, &e.TechWeight, &e.FundWeight, &analyzedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return err
	}

	e.StockType = domain.StockType(stockType)
	e.Recommendation = domain.Recommendation(recommendation)
	e.AnalyzedAt = time.UnixMilli(analyzedAt)
	return nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var e Entry
	if err := scanInto(rows, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to scan history entry: %w", err)
	}
	return e, nil
}

func encodeAnalysis(a *analysis.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAnalysis(data []byte) (*analysis.Analysis, error) {
	var a analysis.Analysis
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&a); err != nil {
		return nil, err
	}
	for _, signals := range [][]domain.Signal{a.TechnicalSignals, a.FundamentalSignals} {
		for _, sig := range signals {
			if !sig.Sentiment.Valid() {
				return nil, fmt.Errorf("signal %q has unknown sentiment %q", sig.Indicator, sig.Sentiment)
			}
		}
	}
	return &a, nil
}
