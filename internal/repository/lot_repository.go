package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// LotRepository provides data access methods for the lot table.
//
// Lots are owned exclusively by the lot accounting pass: it creates, updates
// and deletes them, always inside one transaction per position update, so a
// reader never observes a partially rewritten lot set.
type LotRepository struct {
	db DBTX
}

// NewLotRepository creates a new LotRepository with the provided database connection.
func NewLotRepository(db *sql.DB) *LotRepository {
	return &LotRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *LotRepository) WithTx(tx *sql.Tx) *LotRepository {
	return &LotRepository{db: tx}
}

const lotColumns = `id, position_id, quantity, buy_date, buy_price, cost_basis, buy_transaction_id,
		sell_date, sell_price, sell_basis, realized_gain, sell_transaction_id`

func scanLot(rows interface{ Scan(...any) error }) (model.Lot, error) {
	var l model.Lot
	var buyDateStr, quantityStr, buyPriceStr, costBasisStr string
	var sellDate, sellPrice, sellBasis, realizedGain, sellTransactionID sql.NullString

	err := rows.Scan(
		&l.ID,
		&l.PositionID,
		&quantityStr,
		&buyDateStr,
		&buyPriceStr,
		&costBasisStr,
		&l.BuyTransactionID,
		&sellDate,
		&sellPrice,
		&sellBasis,
		&realizedGain,
		&sellTransactionID,
	)
	if err != nil {
		return model.Lot{}, err
	}

	if l.BuyDate, err = ParseTime(buyDateStr); err != nil {
		return model.Lot{}, err
	}
	if l.Quantity, err = ParseDecimal(quantityStr); err != nil {
		return model.Lot{}, err
	}
	if l.BuyPrice, err = ParseDecimal(buyPriceStr); err != nil {
		return model.Lot{}, err
	}
	if l.CostBasis, err = ParseDecimal(costBasisStr); err != nil {
		return model.Lot{}, err
	}
	if l.SellDate, err = parseNullDate(sellDate); err != nil {
		return model.Lot{}, err
	}
	if l.SellPrice, err = parseNullDecimal(sellPrice); err != nil {
		return model.Lot{}, err
	}
	if l.SellBasis, err = parseNullDecimal(sellBasis); err != nil {
		return model.Lot{}, err
	}
	if l.RealizedGain, err = parseNullDecimal(realizedGain); err != nil {
		return model.Lot{}, err
	}
	if sellTransactionID.Valid {
		l.SellTransactionID = &sellTransactionID.String
	}

	return l, nil
}

// GetLotsForPosition retrieves every lot of a position, open and closed,
// ordered ascending by buy date with ties broken by storage order.
func (s *LotRepository) GetLotsForPosition(positionID string) ([]model.Lot, error) {
	rows, err := s.db.Query(`
		SELECT `+lotColumns+`
		FROM lot
		WHERE position_id = ?
		ORDER BY buy_date ASC, rowid ASC
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot table results: %w", err)
		}
		lots = append(lots, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}

// GetOpenLotsForPosition retrieves the lots of a position with no sell date,
// ascending by buy date. This is the FIFO consumption order.
func (s *LotRepository) GetOpenLotsForPosition(positionID string) ([]model.Lot, error) {
	rows, err := s.db.Query(`
		SELECT `+lotColumns+`
		FROM lot
		WHERE position_id = ? AND sell_date IS NULL
		ORDER BY buy_date ASC, rowid ASC
	`, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lot table: %w", err)
	}
	defer rows.Close()

	lots := []model.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lot table results: %w", err)
		}
		lots = append(lots, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lot table: %w", err)
	}

	return lots, nil
}

func lotWriteArgs(l *model.Lot) []any {
	var sellDate, sellPrice, sellBasis, realizedGain, sellTransactionID any
	if l.SellDate != nil {
		sellDate = l.SellDate.Format("2006-01-02")
	}
	if l.SellPrice != nil {
		sellPrice = l.SellPrice.String()
	}
	if l.SellBasis != nil {
		sellBasis = l.SellBasis.String()
	}
	if l.RealizedGain != nil {
		realizedGain = l.RealizedGain.String()
	}
	if l.SellTransactionID != nil {
		sellTransactionID = *l.SellTransactionID
	}
	return []any{
		l.Quantity.String(),
		l.BuyDate.Format("2006-01-02"),
		l.BuyPrice.String(),
		l.CostBasis.String(),
		l.BuyTransactionID,
		sellDate,
		sellPrice,
		sellBasis,
		realizedGain,
		sellTransactionID,
	}
}

// CreateLot inserts a new lot record.
func (s *LotRepository) CreateLot(l *model.Lot) error {
	args := append([]any{l.ID, l.PositionID}, lotWriteArgs(l)...)
	_, err := s.db.Exec(`
		INSERT INTO lot (id, position_id, quantity, buy_date, buy_price, cost_basis,
			buy_transaction_id, sell_date, sell_price, sell_basis, realized_gain, sell_transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}
	return nil
}

// UpdateLot rewrites all mutable fields of a lot.
func (s *LotRepository) UpdateLot(l *model.Lot) error {
	args := append(lotWriteArgs(l), l.ID)
	_, err := s.db.Exec(`
		UPDATE lot
		SET quantity = ?, buy_date = ?, buy_price = ?, cost_basis = ?, buy_transaction_id = ?,
			sell_date = ?, sell_price = ?, sell_basis = ?, realized_gain = ?, sell_transaction_id = ?
		WHERE id = ?
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to update lot: %w", err)
	}
	return nil
}

// DeleteAllLotsForPosition discards the entire lot set of a position. Used
// by the full-rebuild strategy before replaying the transaction log.
func (s *LotRepository) DeleteAllLotsForPosition(positionID string) error {
	_, err := s.db.Exec(`DELETE FROM lot WHERE position_id = ?`, positionID)
	if err != nil {
		return fmt.Errorf("failed to delete lots: %w", err)
	}
	return nil
}
