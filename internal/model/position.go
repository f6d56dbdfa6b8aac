package model

import "github.com/shopspring/decimal"

// Position represents one account's holding of one asset.
//
// Quantity is the current signed quantity and is mutated only by the
// transaction application logic, never by the lot accounting pass.
// RealizedGain and CostBasis are cumulative totals in the account currency,
// recomputed from the lot set after every lot update.
type Position struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	AssetID      string          `json:"assetId"`
	Quantity     decimal.Decimal `json:"quantity"`
	RealizedGain decimal.Decimal `json:"realizedGain"`
	CostBasis    decimal.Decimal `json:"costBasis"`
}

// PositionDetail is a position enriched with the asset and account context
// needed for valuation and currency conversion.
type PositionDetail struct {
	Position
	AssetSymbol     string `json:"assetSymbol"`
	AssetName       string `json:"assetName"`
	AssetCurrency   string `json:"assetCurrency"`
	AccountCurrency string `json:"accountCurrency"`
}
