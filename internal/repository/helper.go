package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DBTX is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repositories are constructed against the database handle and can
// be rescoped to a transaction with WithTx, so a service can run several
// repository calls as one atomic unit.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// ParseTime parses a date string in "2006-01-02" or RFC3339 format.
func ParseTime(str string) (time.Time, error) {
	returnTime, err := time.Parse("2006-01-02", str)
	if err != nil {
		returnTime, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}
	return returnTime.UTC(), nil
}

// ParseDecimal parses a decimal column stored as TEXT. Amounts are stored as
// exact decimal strings rather than sqlite floats so that chained divisions
// in the lot math stay reproducible.
func ParseDecimal(str string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse decimal: %w", err)
	}
	return d, nil
}

// parseNullDecimal parses a nullable decimal column into a *decimal.Decimal,
// nil when the column is NULL.
func parseNullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := ParseDecimal(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseNullDate parses a nullable date column into a *time.Time, nil when
// the column is NULL.
func parseNullDate(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
