package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is one daily closing price for an asset, in the asset's own
// currency. The series is sparse: weekends and market holidays are absent.
type AssetPrice struct {
	ID      string          `json:"id"`
	AssetID string          `json:"assetId"`
	Date    time.Time       `json:"date"`
	Price   decimal.Decimal `json:"price"`
}

// ExchangeRate is one daily FX rate between two currencies. Like prices,
// the series is sparse.
type ExchangeRate struct {
	ID           string          `json:"id"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Date         time.Time       `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
}
