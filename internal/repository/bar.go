package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockpulse/pulse-backend/internal/models"
)

const upsertBarSQL = `
	INSERT INTO market_bars (symbol, bar_date, open, high, low, close, volume)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (symbol, bar_date) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume`

type BarRepo struct {
	pool *pgxpool.Pool
}

func NewBarRepo(pool *pgxpool.Pool) *BarRepo {
	return &BarRepo{pool: pool}
}

// BulkUpsert writes all bars for one symbol in a single batch, keyed by
// (symbol, bar_date). Each row is independently idempotent, so a mid-batch
// failure leaves a valid (if incomplete) state; no rollback is attempted.
func (r *BarRepo) BulkUpsert(ctx context.Context, symbol string, bars []models.Bar) (int64, error) {
	if len(bars) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(upsertBarSQL,
			symbol, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var written int64
	for range bars {
		tag, err := results.Exec()
		if err != nil {
			return written, fmt.Errorf("upsert bar for %s: %w", symbol, err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

// RecentBars returns up to limit bars for symbol, newest first.
func (r *BarRepo) RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, bar_date, open, high, low, close, volume
		 FROM market_bars WHERE symbol = $1
		 ORDER BY bar_date DESC LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBars(rows)
}

// LatestBar returns the most recent bar for symbol, or nil when none exist.
func (r *BarRepo) LatestBar(ctx context.Context, symbol string) (*models.Bar, error) {
	bars, err := r.RecentBars(ctx, symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}
	return &bars[0], nil
}

// --- scan helpers ---

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectBars(rows rowsIter) ([]models.Bar, error) {
	var out []models.Bar
	for rows.Next() {
		var b models.Bar
		var d time.Time
		if err := rows.Scan(&b.Symbol, &d, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Date = d
		out = append(out, b)
	}
	return out, rows.Err()
}
