package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot represents a batch of units acquired by one buy transaction, tracked
// for FIFO cost-basis accounting. Quantity is always strictly positive.
//
// CostBasis is the cash paid for the lot in the account currency and is
// stored as a negative number. Once the lot is fully or partially sold the
// sell fields are set; RealizedGain = SellBasis + CostBasis, so a positive
// value is a net gain. Lots are created and destroyed exclusively by the
// lot accounting pass.
type Lot struct {
	ID                string           `json:"id"`
	PositionID        string           `json:"positionId"`
	Quantity          decimal.Decimal  `json:"quantity"`
	BuyDate           time.Time        `json:"buyDate"`
	BuyPrice          decimal.Decimal  `json:"buyPrice"`
	CostBasis         decimal.Decimal  `json:"costBasisAccountCurrency"`
	BuyTransactionID  string           `json:"buyTransactionId"`
	SellDate          *time.Time       `json:"sellDate,omitempty"`
	SellPrice         *decimal.Decimal `json:"sellPrice,omitempty"`
	SellBasis         *decimal.Decimal `json:"sellBasisAccountCurrency,omitempty"`
	RealizedGain      *decimal.Decimal `json:"realizedGainAccountCurrency,omitempty"`
	SellTransactionID *string          `json:"sellTransactionId,omitempty"`
}

// Open reports whether the lot has not been sold yet.
func (l *Lot) Open() bool {
	return l.SellDate == nil
}
