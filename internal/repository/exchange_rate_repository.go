package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// ExchangeRateRepository provides data access methods for the exchange_rate table.
type ExchangeRateRepository struct {
	db DBTX
}

// NewExchangeRateRepository creates a new ExchangeRateRepository with the provided database connection.
func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *ExchangeRateRepository) WithTx(tx *sql.Tx) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: tx}
}

func (s *ExchangeRateRepository) queryRates(query string, args ...any) ([]model.ExchangeRate, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	defer rows.Close()

	rates := []model.ExchangeRate{}
	for rows.Next() {
		var r model.ExchangeRate
		var dateStr, rateStr string

		if err := rows.Scan(&r.ID, &r.FromCurrency, &r.ToCurrency, &dateStr, &rateStr); err != nil {
			return nil, fmt.Errorf("failed to scan exchange_rate table results: %w", err)
		}
		if r.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if r.Rate, err = ParseDecimal(rateStr); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange_rate table: %w", err)
	}

	return rates, nil
}

// GetRates retrieves the daily rates for a currency pair inside
// [startDate, endDate], descending by date.
func (s *ExchangeRateRepository) GetRates(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]model.ExchangeRate, error) {
	return s.queryRates(`
		SELECT id, from_currency, to_currency, date, rate
		FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date >= ? AND date <= ?
		ORDER BY date DESC
	`, fromCurrency, toCurrency, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
}

// GetClosestRate returns the rate nearest to the given date: the newest rate
// at or before it, falling back to the oldest rate after it. Returns
// sql.ErrNoRows wrapped as nil rate when the pair has no data at all.
func (s *ExchangeRateRepository) GetClosestRate(fromCurrency, toCurrency string, date time.Time) (*model.ExchangeRate, error) {
	before, err := s.queryRates(`
		SELECT id, from_currency, to_currency, date, rate
		FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date <= ?
		ORDER BY date DESC
		LIMIT 1
	`, fromCurrency, toCurrency, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	if len(before) > 0 {
		return &before[0], nil
	}

	after, err := s.queryRates(`
		SELECT id, from_currency, to_currency, date, rate
		FROM exchange_rate
		WHERE from_currency = ? AND to_currency = ? AND date >= ?
		ORDER BY date ASC
		LIMIT 1
	`, fromCurrency, toCurrency, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	if len(after) > 0 {
		return &after[0], nil
	}

	return nil, nil
}

// GetLatestRateDate returns the date of the newest stored rate for a pair,
// or the zero time when the pair has no data.
func (s *ExchangeRateRepository) GetLatestRateDate(fromCurrency, toCurrency string) (time.Time, error) {
	var dateStr sql.NullString
	err := s.db.QueryRow(`
		SELECT MAX(date) FROM exchange_rate WHERE from_currency = ? AND to_currency = ?
	`, fromCurrency, toCurrency).Scan(&dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query exchange_rate table: %w", err)
	}
	if !dateStr.Valid {
		return time.Time{}, nil
	}
	return ParseTime(dateStr.String)
}

// UpsertRate stores one daily rate, replacing any previous value for the
// same pair and date.
func (s *ExchangeRateRepository) UpsertRate(r *model.ExchangeRate) error {
	_, err := s.db.Exec(`
		INSERT INTO exchange_rate (id, from_currency, to_currency, date, rate)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(from_currency, to_currency, date) DO UPDATE SET rate = excluded.rate
	`, r.ID, r.FromCurrency, r.ToCurrency, r.Date.Format("2006-01-02"), r.Rate.String())
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}
