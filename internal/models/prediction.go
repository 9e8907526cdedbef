package models

import "errors"

// Recommendation values surfaced to API consumers.
const (
	RecommendBuy  = "Buy"
	RecommendSell = "Sell"
	RecommendHold = "Hold"
)

// NoPrediction is the marker returned instead of a numeric prediction
// when fewer than the minimum number of bars are available.
const NoPrediction = "Not enough data"

// PredictionResult is the cached output of one prediction run.
// Prediction holds a 2-decimal float on success or the NoPrediction
// marker string, so it serializes the same way the API presents it.
type PredictionResult struct {
	Symbol         string  `json:"symbol"`
	LatestClose    float64 `json:"latest_close"`
	Prediction     any     `json:"prediction"`
	Recommendation string  `json:"recommendation"`
}

// ChartSeries is the payload for chart rendering: one label per close,
// both in chronological order.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Query-boundary errors. Both surface as client errors; everything else
// at the API boundary is logged and mapped to a generic 500.
var (
	// ErrNotTracked means the requested symbol is not in the configured set.
	ErrNotTracked = errors.New("symbol not tracked")

	// ErrNoData means the store holds zero bars for a tracked symbol.
	ErrNoData = errors.New("no data available for this symbol yet")
)
