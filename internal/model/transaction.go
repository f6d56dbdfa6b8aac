package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a buy or sell execution against a position.
// Quantity is signed: positive for buys, negative for sells.
//
// TotalInAccountCurrency is the signed cash effect of the transaction
// including costs, in the account's settlement currency: negative for buys
// (cash paid out), positive for sells (cash received).
type Transaction struct {
	ID                     string          `json:"id"`
	PositionID             string          `json:"positionId"`
	ExecutedAt             time.Time       `json:"executedAt"`
	Quantity               decimal.Decimal `json:"quantity"`
	Price                  decimal.Decimal `json:"price"`
	TransactionCosts       decimal.Decimal `json:"transactionCosts"`
	LocalValue             decimal.Decimal `json:"localValue"`
	ValueInAccountCurrency decimal.Decimal `json:"valueInAccountCurrency"`
	TotalInAccountCurrency decimal.Decimal `json:"totalInAccountCurrency"`
	OrderID                string          `json:"orderId,omitempty"`
	CreatedAt              time.Time       `json:"createdAt,omitempty"`
}
