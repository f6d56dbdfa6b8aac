package request

import "github.com/shopspring/decimal"

type CreateTransactionRequest struct {
	PositionID             string          `json:"positionId"`
	ExecutedAt             string          `json:"executedAt"`
	Quantity               decimal.Decimal `json:"quantity"`
	Price                  decimal.Decimal `json:"price"`
	TransactionCosts       decimal.Decimal `json:"transactionCosts"`
	LocalValue             decimal.Decimal `json:"localValue"`
	ValueInAccountCurrency decimal.Decimal `json:"valueInAccountCurrency"`
	TotalInAccountCurrency decimal.Decimal `json:"totalInAccountCurrency"`
	OrderID                string          `json:"orderId"`
}

// CorrectTransactionRequest carries the replacement values for an existing
// record. The position and order linkage cannot be changed by a correction.
type CorrectTransactionRequest struct {
	ExecutedAt             string          `json:"executedAt"`
	Quantity               decimal.Decimal `json:"quantity"`
	Price                  decimal.Decimal `json:"price"`
	TransactionCosts       decimal.Decimal `json:"transactionCosts"`
	LocalValue             decimal.Decimal `json:"localValue"`
	ValueInAccountCurrency decimal.Decimal `json:"valueInAccountCurrency"`
	TotalInAccountCurrency decimal.Decimal `json:"totalInAccountCurrency"`
}

type DeleteTransactionsRequest struct {
	IDs []string `json:"ids"`
}
