package model

import "github.com/shopspring/decimal"

// Account represents a brokerage account. All cash amounts on the account
// and on its positions are expressed in the account's settlement currency.
type Account struct {
	ID          string          `json:"id"`
	Nickname    string          `json:"nickname"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
}
