package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// AssetPriceRepository provides data access methods for the asset_price table.
type AssetPriceRepository struct {
	db DBTX
}

// NewAssetPriceRepository creates a new AssetPriceRepository with the provided database connection.
func NewAssetPriceRepository(db *sql.DB) *AssetPriceRepository {
	return &AssetPriceRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *AssetPriceRepository) WithTx(tx *sql.Tx) *AssetPriceRepository {
	return &AssetPriceRepository{db: tx}
}

// GetPrices retrieves the daily closing prices of an asset inside
// [startDate, endDate], descending by date. The series is sparse: dates
// without a stored close are simply absent.
func (s *AssetPriceRepository) GetPrices(assetID string, startDate, endDate time.Time) ([]model.AssetPrice, error) {
	rows, err := s.db.Query(`
		SELECT id, asset_id, date, price
		FROM asset_price
		WHERE asset_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC
	`, assetID, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query asset_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.AssetPrice{}
	for rows.Next() {
		var p model.AssetPrice
		var dateStr, priceStr string

		if err := rows.Scan(&p.ID, &p.AssetID, &dateStr, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan asset_price table results: %w", err)
		}
		if p.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if p.Price, err = ParseDecimal(priceStr); err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset_price table: %w", err)
	}

	return prices, nil
}

// GetLatestPriceDate returns the date of the newest stored price for an
// asset, or the zero time when no price exists yet. The price collector uses
// it to fetch incrementally.
func (s *AssetPriceRepository) GetLatestPriceDate(assetID string) (time.Time, error) {
	var dateStr sql.NullString
	err := s.db.QueryRow(`
		SELECT MAX(date) FROM asset_price WHERE asset_id = ?
	`, assetID).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query asset_price table: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, nil
	}
	return ParseTime(dateStr.String)
}

// UpsertPrice stores one daily close, replacing any previous value for the
// same asset and date.
func (s *AssetPriceRepository) UpsertPrice(p *model.AssetPrice) error {
	_, err := s.db.Exec(`
		INSERT INTO asset_price (id, asset_id, date, price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset_id, date) DO UPDATE SET price = excluded.price
	`, p.ID, p.AssetID, p.Date.Format("2006-01-02"), p.Price.String())
	if err != nil {
		return fmt.Errorf("failed to upsert asset price: %w", err)
	}
	return nil
}
