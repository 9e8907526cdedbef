package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/stockpulse/pulse-backend/internal/external"
	"github.com/stockpulse/pulse-backend/internal/models"
)

// QuoteSource fetches one symbol's daily series. Every call costs one
// request against the provider quota, whatever the outcome.
type QuoteSource interface {
	FetchDaily(ctx context.Context, symbol string) (map[string]external.DailyQuote, error)
}

// BarStore persists normalized bars. The cycle is the only writer.
type BarStore interface {
	BulkUpsert(ctx context.Context, symbol string, bars []models.Bar) (int64, error)
}

// Notifier receives operator-facing alerts. May be nil.
type Notifier interface {
	Send(msg string)
}

// CycleStats summarizes one ingestion pass. Requests counts every fetch
// attempt this cycle, successful or not; it is reset by construction at
// the start of each pass and never persisted.
type CycleStats struct {
	Requests int
	Upserted int
	Skipped  int
	Aborted  bool
}

type Config struct {
	Symbols        []string
	PacingInterval time.Duration // courtesy delay between symbols
	CycleInterval  time.Duration // sleep between full passes
}

type Cycle struct {
	source QuoteSource
	store  BarStore
	notify Notifier
	cfg    Config
}

func New(source QuoteSource, store BarStore, notify Notifier, cfg Config) *Cycle {
	if cfg.PacingInterval <= 0 {
		cfg.PacingInterval = 15 * time.Second
	}
	if cfg.CycleInterval <= 0 {
		cfg.CycleInterval = 24 * time.Hour
	}
	return &Cycle{source: source, store: store, notify: notify, cfg: cfg}
}

// Run loops full ingestion passes until ctx is cancelled. A long fixed
// sleep between passes is the entire scheduling model: no cron, no
// backoff, no jitter.
func (c *Cycle) Run(ctx context.Context) {
	for {
		stats := c.RunCycle(ctx)

		summary := fmt.Sprintf("Ingestion cycle complete: %d requests, %d symbols upserted, %d skipped, aborted=%v",
			stats.Requests, stats.Upserted, stats.Skipped, stats.Aborted)
		if c.notify != nil {
			c.notify.Send(summary)
		}

		fmt.Printf("[INGEST] Sleeping %s until next cycle\n", c.cfg.CycleInterval)
		select {
		case <-ctx.Done():
			fmt.Println("[INGEST] Stopped")
			return
		case <-time.After(c.cfg.CycleInterval):
		}
	}
}

// RunCycle runs one complete pass over the configured symbols, in order.
// A rate-limit response aborts the remainder of the pass; every other
// failure skips just that symbol.
func (c *Cycle) RunCycle(ctx context.Context) CycleStats {
	fmt.Println("[INGEST] --- Starting daily ingestion cycle ---")
	stats := CycleStats{}

	for i, symbol := range c.cfg.Symbols {
		stats.Requests++
		series, err := c.source.FetchDaily(ctx, symbol)

		switch {
		case errors.Is(err, external.ErrRateLimited):
			fmt.Printf("[INGEST] [%s] Rate limit reached after %d requests this cycle, aborting pass\n",
				symbol, stats.Requests)
			stats.Aborted = true
			if c.notify != nil {
				c.notify.Send(fmt.Sprintf("Ingestion aborted: rate limit hit at %s after %d requests", symbol, stats.Requests))
			}
			fmt.Printf("[INGEST] --- Cycle aborted. Total requests made: %d ---\n", stats.Requests)
			return stats

		case errors.Is(err, external.ErrPremiumEndpoint):
			fmt.Printf("[INGEST] [%s] Premium endpoint, skipping\n", symbol)
			stats.Skipped++

		case err != nil:
			fmt.Printf("[INGEST] [%s] Fetch failed: %v, skipping\n", symbol, err)
			stats.Skipped++

		default:
			bars, err := NormalizeSeries(symbol, series)
			if err != nil {
				// Malformed payloads are indistinguishable from transport
				// failures as far as the cycle is concerned.
				fmt.Printf("[INGEST] [%s] Parse failed: %v, skipping\n", symbol, err)
				stats.Skipped++
				break
			}
			n, err := c.store.BulkUpsert(ctx, symbol, bars)
			if err != nil {
				// Partial writes are fine: each row upserts independently.
				fmt.Printf("[INGEST] [%s] Upsert failed: %v, continuing\n", symbol, err)
				stats.Skipped++
				break
			}
			fmt.Printf("[INGEST] [%s] Upserted %d bars (%d rows written)\n", symbol, len(bars), n)
			stats.Upserted++
		}

		if i < len(c.cfg.Symbols)-1 {
			select {
			case <-ctx.Done():
				fmt.Printf("[INGEST] --- Cycle interrupted. Total requests made: %d ---\n", stats.Requests)
				return stats
			case <-time.After(c.cfg.PacingInterval):
			}
		}
	}

	fmt.Printf("[INGEST] --- Cycle complete. Total requests made: %d ---\n", stats.Requests)
	return stats
}

// NormalizeSeries converts the provider's date-keyed string series into
// Bars sorted ascending by date. Any missing or malformed field fails the
// whole symbol; the caller skips it and moves on.
func NormalizeSeries(symbol string, series map[string]external.DailyQuote) ([]models.Bar, error) {
	bars := make([]models.Bar, 0, len(series))
	for dateStr, q := range series {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", dateStr, err)
		}
		open, err := strconv.ParseFloat(q.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("bad open for %s: %w", dateStr, err)
		}
		high, err := strconv.ParseFloat(q.High, 64)
		if err != nil {
			return nil, fmt.Errorf("bad high for %s: %w", dateStr, err)
		}
		low, err := strconv.ParseFloat(q.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("bad low for %s: %w", dateStr, err)
		}
		closePx, err := strconv.ParseFloat(q.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("bad close for %s: %w", dateStr, err)
		}
		volume, err := strconv.ParseInt(q.Volume, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad volume for %s: %w", dateStr, err)
		}

		bars = append(bars, models.Bar{
			Symbol: symbol,
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePx,
			Volume: volume,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
