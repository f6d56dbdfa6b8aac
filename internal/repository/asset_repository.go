package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db DBTX
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *AssetRepository) WithTx(tx *sql.Tx) *AssetRepository {
	return &AssetRepository{db: tx}
}

const assetColumns = `id, isin, symbol, name, currency, exchange, asset_type`

// GetAssets retrieves all known assets ordered by symbol.
func (s *AssetRepository) GetAssets() ([]model.Asset, error) {
	rows, err := s.db.Query(`SELECT ` + assetColumns + ` FROM asset ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Isin, &a.Symbol, &a.Name, &a.Currency, &a.Exchange, &a.AssetType); err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}
		assets = append(assets, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// GetAsset retrieves a single asset by its ID.
func (s *AssetRepository) GetAsset(assetID string) (model.Asset, error) {
	var a model.Asset
	err := s.db.QueryRow(`SELECT `+assetColumns+` FROM asset WHERE id = ?`, assetID).
		Scan(&a.ID, &a.Isin, &a.Symbol, &a.Name, &a.Currency, &a.Exchange, &a.AssetType)
	if err == sql.ErrNoRows {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to scan asset table results: %w", err)
	}
	return a, nil
}

// InsertAsset creates a new asset record.
func (s *AssetRepository) InsertAsset(a *model.Asset) error {
	_, err := s.db.Exec(`
		INSERT INTO asset (id, isin, symbol, name, currency, exchange, asset_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Isin, a.Symbol, a.Name, a.Currency, a.Exchange, a.AssetType)
	if err != nil {
		return fmt.Errorf("failed to insert asset: %w", err)
	}
	return nil
}
