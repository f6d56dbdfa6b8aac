package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
type PositionRepository struct {
	db DBTX
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *PositionRepository) WithTx(tx *sql.Tx) *PositionRepository {
	return &PositionRepository{db: tx}
}

func scanPosition(quantityStr, realizedStr, costStr string, p *model.Position) error {
	var err error
	if p.Quantity, err = ParseDecimal(quantityStr); err != nil {
		return err
	}
	if p.RealizedGain, err = ParseDecimal(realizedStr); err != nil {
		return err
	}
	if p.CostBasis, err = ParseDecimal(costStr); err != nil {
		return err
	}
	return nil
}

// GetPosition retrieves a single position by its ID.
func (s *PositionRepository) GetPosition(positionID string) (model.Position, error) {
	var p model.Position
	var quantityStr, realizedStr, costStr string

	err := s.db.QueryRow(`
		SELECT id, account_id, asset_id, quantity, realized_gain, cost_basis
		FROM position
		WHERE id = ?
	`, positionID).Scan(&p.ID, &p.AccountID, &p.AssetID, &quantityStr, &realizedStr, &costStr)
	if err == sql.ErrNoRows {
		return model.Position{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to scan position table results: %w", err)
	}
	if err := scanPosition(quantityStr, realizedStr, costStr, &p); err != nil {
		return model.Position{}, err
	}

	return p, nil
}

// GetPositionDetail retrieves a position enriched with its asset symbol and
// the asset and account currencies, the context needed for valuation.
func (s *PositionRepository) GetPositionDetail(positionID string) (model.PositionDetail, error) {
	var d model.PositionDetail
	var quantityStr, realizedStr, costStr string

	err := s.db.QueryRow(`
		SELECT p.id, p.account_id, p.asset_id, p.quantity, p.realized_gain, p.cost_basis,
			s.symbol, s.name, s.currency, a.currency
		FROM position p
		JOIN asset s ON p.asset_id = s.id
		JOIN account a ON p.account_id = a.id
		WHERE p.id = ?
	`, positionID).Scan(
		&d.ID,
		&d.AccountID,
		&d.AssetID,
		&quantityStr,
		&realizedStr,
		&costStr,
		&d.AssetSymbol,
		&d.AssetName,
		&d.AssetCurrency,
		&d.AccountCurrency,
	)
	if err == sql.ErrNoRows {
		return model.PositionDetail{}, apperrors.ErrPositionNotFound
	}
	if err != nil {
		return model.PositionDetail{}, fmt.Errorf("failed to scan position table results: %w", err)
	}
	if err := scanPosition(quantityStr, realizedStr, costStr, &d.Position); err != nil {
		return model.PositionDetail{}, err
	}

	return d, nil
}

// GetPositionsForAccount retrieves all positions of an account, enriched
// with asset context, ordered by asset symbol.
func (s *PositionRepository) GetPositionsForAccount(accountID string) ([]model.PositionDetail, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.account_id, p.asset_id, p.quantity, p.realized_gain, p.cost_basis,
			s.symbol, s.name, s.currency, a.currency
		FROM position p
		JOIN asset s ON p.asset_id = s.id
		JOIN account a ON p.account_id = a.id
		WHERE p.account_id = ?
		ORDER BY s.symbol ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.PositionDetail{}
	for rows.Next() {
		var d model.PositionDetail
		var quantityStr, realizedStr, costStr string

		err := rows.Scan(
			&d.ID,
			&d.AccountID,
			&d.AssetID,
			&quantityStr,
			&realizedStr,
			&costStr,
			&d.AssetSymbol,
			&d.AssetName,
			&d.AssetCurrency,
			&d.AccountCurrency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position table results: %w", err)
		}
		if err := scanPosition(quantityStr, realizedStr, costStr, &d.Position); err != nil {
			return nil, err
		}
		positions = append(positions, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// GetOrCreatePosition finds the position of an account in an asset, creating
// a zero-quantity position when none exists yet.
func (s *PositionRepository) GetOrCreatePosition(id, accountID, assetID string) (model.Position, error) {
	var p model.Position
	var quantityStr, realizedStr, costStr string

	err := s.db.QueryRow(`
		SELECT id, account_id, asset_id, quantity, realized_gain, cost_basis
		FROM position
		WHERE account_id = ? AND asset_id = ?
	`, accountID, assetID).Scan(&p.ID, &p.AccountID, &p.AssetID, &quantityStr, &realizedStr, &costStr)
	if err == nil {
		if err := scanPosition(quantityStr, realizedStr, costStr, &p); err != nil {
			return model.Position{}, err
		}
		return p, nil
	}
	if err != sql.ErrNoRows {
		return model.Position{}, fmt.Errorf("failed to scan position table results: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO position (id, account_id, asset_id, quantity, realized_gain, cost_basis)
		VALUES (?, ?, ?, '0', '0', '0')
	`, id, accountID, assetID)
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to insert position: %w", err)
	}

	return s.GetPosition(id)
}

// UpdatePosition persists the position's quantity and cumulative totals.
func (s *PositionRepository) UpdatePosition(p *model.Position) error {
	res, err := s.db.Exec(`
		UPDATE position
		SET quantity = ?, realized_gain = ?, cost_basis = ?
		WHERE id = ?
	`, p.Quantity.String(), p.RealizedGain.String(), p.CostBasis.String(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}
