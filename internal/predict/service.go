package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stockpulse/pulse-backend/internal/cache"
	"github.com/stockpulse/pulse-backend/internal/models"
)

// Query limits preserved from the deployed system: predictions look back
// further than the chart view does.
const (
	predictionBarLimit = 1000
	chartBarLimit      = 100
)

// BarReader is the store-side dependency: bars for one symbol, newest first.
type BarReader interface {
	RecentBars(ctx context.Context, symbol string, limit int) ([]models.Bar, error)
}

// SentimentSource fetches the third-party news/sentiment payload.
type SentimentSource interface {
	FetchNewsSentiment(ctx context.Context, symbol string) (json.RawMessage, error)
}

type Config struct {
	Symbols       []string
	PredictionTTL time.Duration
	SentimentTTL  time.Duration
}

// Service serves predictions, chart data and sentiment through a
// read-through cache. Concurrent misses for the same symbol are not
// deduplicated: both compute the same deterministic result and the last
// cache write wins, which is harmless at a 60s TTL.
type Service struct {
	bars      BarReader
	cache     cache.Store
	sentiment SentimentSource
	cfg       Config
}

func NewService(bars BarReader, store cache.Store, sentiment SentimentSource, cfg Config) *Service {
	if cfg.PredictionTTL <= 0 {
		cfg.PredictionTTL = 60 * time.Second
	}
	if cfg.SentimentTTL <= 0 {
		cfg.SentimentTTL = time.Hour
	}
	return &Service{bars: bars, cache: store, sentiment: sentiment, cfg: cfg}
}

// Prediction returns the cached prediction for symbol, computing and
// caching it on a miss. Unknown symbols are rejected before any store or
// cache access.
func (s *Service) Prediction(ctx context.Context, symbol string) (*models.PredictionResult, error) {
	up := strings.ToUpper(symbol)
	if !s.tracked(up) {
		return nil, models.ErrNotTracked
	}

	key := "prediction:" + up
	if cached, ok := s.cache.Get(ctx, key); ok {
		var result models.PredictionResult
		if err := json.Unmarshal(cached, &result); err == nil {
			fmt.Printf("[PREDICT] [%s] Cache hit\n", up)
			return &result, nil
		}
		// Undecodable entries fall through to a fresh compute.
		fmt.Printf("[PREDICT] [%s] Discarding corrupt cache entry\n", up)
	}

	fmt.Printf("[PREDICT] [%s] Cache miss, computing from store\n", up)
	bars, err := s.bars.RecentBars(ctx, up, predictionBarLimit)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", up, err)
	}
	if len(bars) == 0 {
		return nil, models.ErrNoData
	}

	// Store returns newest first; the trend fit wants chronological order.
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[len(bars)-1-i] = b.Close
	}
	latest := closes[len(closes)-1]

	predicted, err := NextClose(closes)
	if errors.Is(err, ErrInsufficientData) {
		return &models.PredictionResult{
			Symbol:         up,
			LatestClose:    latest,
			Prediction:     models.NoPrediction,
			Recommendation: models.RecommendHold,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trend fit for %s: %w", up, err)
	}

	// An exact tie classifies as Sell: the recommendation is Buy only
	// when the predicted close is strictly above the latest.
	recommendation := models.RecommendSell
	if predicted > latest {
		recommendation = models.RecommendBuy
	}

	result := &models.PredictionResult{
		Symbol:         up,
		LatestClose:    round2(latest),
		Prediction:     round2(predicted),
		Recommendation: recommendation,
	}

	if body, err := json.Marshal(result); err == nil {
		s.cache.Set(ctx, key, body, s.cfg.PredictionTTL)
	}
	return result, nil
}

// ChartSeries returns up to the 100 most recent closes in chronological
// order, labelled by bar date.
func (s *Service) ChartSeries(ctx context.Context, symbol string) (*models.ChartSeries, error) {
	up := strings.ToUpper(symbol)
	if !s.tracked(up) {
		return nil, models.ErrNotTracked
	}

	bars, err := s.bars.RecentBars(ctx, up, chartBarLimit)
	if err != nil {
		return nil, fmt.Errorf("load chart bars for %s: %w", up, err)
	}

	series := &models.ChartSeries{
		Labels: make([]string, len(bars)),
		Data:   make([]float64, len(bars)),
	}
	for i, b := range bars {
		j := len(bars) - 1 - i
		series.Labels[j] = b.Date.Format("2006-01-02")
		series.Data[j] = b.Close
	}
	return series, nil
}

// Sentiment proxies the third-party news/sentiment payload through a
// 1-hour cache. The payload is opaque: provider-side error bodies pass
// through just like data.
func (s *Service) Sentiment(ctx context.Context, symbol string) (json.RawMessage, error) {
	up := strings.ToUpper(symbol)
	key := "sentiment:" + up

	if s.cache.Exists(ctx, key) {
		if cached, ok := s.cache.Get(ctx, key); ok {
			fmt.Printf("[PREDICT] [%s] Sentiment cache hit\n", up)
			return json.RawMessage(cached), nil
		}
	}

	raw, err := s.sentiment.FetchNewsSentiment(ctx, up)
	if err != nil {
		return nil, fmt.Errorf("sentiment for %s: %w", up, err)
	}

	s.cache.Set(ctx, key, raw, s.cfg.SentimentTTL)
	return raw, nil
}

func (s *Service) tracked(upper string) bool {
	for _, sym := range s.cfg.Symbols {
		if sym == upper {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
