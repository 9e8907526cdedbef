package models

import "time"

// Bar is one daily OHLCV record for a symbol. Bars are keyed by
// (symbol, date): re-ingesting the same date overwrites, never duplicates.
type Bar struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}
