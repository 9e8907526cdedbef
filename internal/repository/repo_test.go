package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stockpulse/pulse-backend/internal/models"
	"github.com/stockpulse/pulse-backend/internal/repository"
	"github.com/stockpulse/pulse-backend/internal/testutil"
)

func TestBarRepo_UpsertIdempotent(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewBarRepo(pool)
	ctx := context.Background()

	day := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	first := models.Bar{
		Symbol: "TEST",
		Date:   day,
		Open:   100.0, High: 105.0, Low: 99.0, Close: 104.0,
		Volume: 1_000_000,
	}

	n, err := repo.BulkUpsert(ctx, "TEST", []models.Bar{first})
	if err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row written, got %d", n)
	}

	// Same (symbol, date) with different values must overwrite, not duplicate.
	second := first
	second.Close = 107.5
	second.Volume = 2_000_000
	if _, err := repo.BulkUpsert(ctx, "TEST", []models.Bar{second}); err != nil {
		t.Fatalf("BulkUpsert (second): %v", err)
	}

	bars, err := repo.RecentBars(ctx, "TEST", 1000)
	if err != nil {
		t.Fatalf("RecentBars: %v", err)
	}
	count := 0
	for _, b := range bars {
		if b.Date.Format("2006-01-02") == "2024-03-18" {
			count++
			if b.Close != 107.5 {
				t.Fatalf("expected second write's close 107.5, got %f", b.Close)
			}
			if b.Volume != 2_000_000 {
				t.Fatalf("expected second write's volume, got %d", b.Volume)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one record for the date, got %d", count)
	}
	t.Log("Idempotent upsert verified")
}

func TestBarRepo_RecentBarsOrder(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewBarRepo(pool)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var bars []models.Bar
	for i := 0; i < 5; i++ {
		bars = append(bars, models.Bar{
			Symbol: "TESTORD",
			Date:   base.AddDate(0, 0, i),
			Open:   100 + float64(i), High: 101 + float64(i), Low: 99 + float64(i),
			Close:  100.5 + float64(i),
			Volume: int64(1000 * (i + 1)),
		})
	}
	if _, err := repo.BulkUpsert(ctx, "TESTORD", bars); err != nil {
		t.Fatalf("BulkUpsert: %v", err)
	}

	recent, err := repo.RecentBars(ctx, "TESTORD", 3)
	if err != nil {
		t.Fatalf("RecentBars: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(recent))
	}
	for i := 1; i < len(recent); i++ {
		if !recent[i].Date.Before(recent[i-1].Date) {
			t.Fatalf("expected newest-first order, got %s before %s",
				recent[i-1].Date, recent[i].Date)
		}
	}
	t.Logf("RecentBars newest-first: %s .. %s",
		recent[0].Date.Format("2006-01-02"), recent[2].Date.Format("2006-01-02"))

	latest, err := repo.LatestBar(ctx, "TESTORD")
	if err != nil {
		t.Fatalf("LatestBar: %v", err)
	}
	if latest == nil {
		t.Fatal("expected a latest bar")
	}
	if !latest.Date.Equal(recent[0].Date) {
		t.Fatalf("latest bar mismatch: %s vs %s", latest.Date, recent[0].Date)
	}
}

func TestBarRepo_EmptySymbol(t *testing.T) {
	pool := testutil.SetupPool(t)
	repo := repository.NewBarRepo(pool)
	ctx := context.Background()

	bars, err := repo.RecentBars(ctx, "NOSUCH", 1000)
	if err != nil {
		t.Fatalf("RecentBars: %v", err)
	}
	if len(bars) != 0 {
		t.Fatalf("expected no bars, got %d", len(bars))
	}

	latest, err := repo.LatestBar(ctx, "NOSUCH")
	if err != nil {
		t.Fatalf("LatestBar: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest bar, got %+v", latest)
	}

	n, err := repo.BulkUpsert(ctx, "NOSUCH", nil)
	if err != nil {
		t.Fatalf("BulkUpsert(empty): %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows for empty upsert, got %d", n)
	}
}
