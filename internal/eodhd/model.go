package eodhd

import "time"

// EODRecord represents one element of the EODHD end-of-day JSON payload.
// The API returns a flat array of these, oldest first.
type EODRecord struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// PricePoint is the parsed internal representation of one trading day.
// Close carries the split-adjusted close, which is the figure the rest of
// the application stores.
type PricePoint struct {
	Date  time.Time
	Close float64
}
