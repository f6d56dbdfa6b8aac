package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
//
// The lot accounting pass and the history reconstruction both replay the
// transaction log, one ascending and one descending, so both orders are
// supported. Ties on executed_at are broken by created_at and then rowid:
// insertion order is the storage order, and the replay preserves it rather
// than second-guessing which of two same-instant transactions came first.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

const transactionColumns = `id, position_id, executed_at, quantity, price, transaction_costs,
		local_value, value_account_currency, total_account_currency, order_id, created_at`

func scanTransaction(rows interface{ Scan(...any) error }) (model.Transaction, error) {
	var t model.Transaction
	var executedAtStr, createdAtStr string
	var quantityStr, priceStr, costsStr, localStr, valueStr, totalStr string
	var orderID sql.NullString

	err := rows.Scan(
		&t.ID,
		&t.PositionID,
		&executedAtStr,
		&quantityStr,
		&priceStr,
		&costsStr,
		&localStr,
		&valueStr,
		&totalStr,
		&orderID,
		&createdAtStr,
	)
	if err != nil {
		return model.Transaction{}, err
	}

	if t.ExecutedAt, err = ParseTime(executedAtStr); err != nil {
		return model.Transaction{}, err
	}
	if t.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Quantity, err = ParseDecimal(quantityStr); err != nil {
		return model.Transaction{}, err
	}
	if t.Price, err = ParseDecimal(priceStr); err != nil {
		return model.Transaction{}, err
	}
	if t.TransactionCosts, err = ParseDecimal(costsStr); err != nil {
		return model.Transaction{}, err
	}
	if t.LocalValue, err = ParseDecimal(localStr); err != nil {
		return model.Transaction{}, err
	}
	if t.ValueInAccountCurrency, err = ParseDecimal(valueStr); err != nil {
		return model.Transaction{}, err
	}
	if t.TotalInAccountCurrency, err = ParseDecimal(totalStr); err != nil {
		return model.Transaction{}, err
	}
	if orderID.Valid {
		t.OrderID = orderID.String
	}

	return t, nil
}

// GetTransactionsForPosition retrieves the full transaction log of one
// position, ordered by execution time. Ascending order is the replay order
// of the lot accounting; descending is used by the backward history walk.
func (s *TransactionRepository) GetTransactionsForPosition(positionID string, ascending bool) ([]model.Transaction, error) {
	order := "DESC"
	if ascending {
		order = "ASC"
	}
	//nolint:gosec // order is one of two literals above, not user input.
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE position_id = ?
		ORDER BY executed_at ` + order + `, created_at ` + order + `, rowid ` + order

	rows, err := s.db.Query(query, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransactionsInWindow retrieves a position's transactions with execution
// dates inside [startDate, endDate], descending by execution time. The
// history reconstruction uses these to synthesize price evidence.
func (s *TransactionRepository) GetTransactionsInWindow(positionID string, startDate, endDate time.Time) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE position_id = ?
		AND executed_at >= ?
		AND executed_at < ?
		ORDER BY executed_at DESC, created_at DESC, rowid DESC
	`

	rows, err := s.db.Query(query, positionID,
		startDate.Format("2006-01-02"),
		endDate.AddDate(0, 0, 1).Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionRepository) GetTransaction(transactionID string) (model.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE id = ?
	`, transactionID)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}
	return t, nil
}

// GetTransactionsByIDs retrieves the given transactions in storage order.
// Used by the bulk deletion path to resolve an import batch.
func (s *TransactionRepository) GetTransactionsByIDs(ids []string) ([]model.Transaction, error) {
	if len(ids) == 0 {
		return []model.Transaction{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE id IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY executed_at ASC, created_at ASC, rowid ASC
	`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// InsertTransaction creates a new transaction record. created_at is written
// explicitly in RFC3339 so it round-trips through ParseTime; rowid breaks
// any remaining same-second ties in the replay order.
func (s *TransactionRepository) InsertTransaction(t *model.Transaction) error {
	var orderID any
	if t.OrderID != "" {
		orderID = t.OrderID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO "transaction" (id, position_id, executed_at, quantity, price,
			transaction_costs, local_value, value_account_currency, total_account_currency, order_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.PositionID,
		t.ExecutedAt.UTC().Format(time.RFC3339),
		t.Quantity.String(),
		t.Price.String(),
		t.TransactionCosts.String(),
		t.LocalValue.String(),
		t.ValueInAccountCurrency.String(),
		t.TotalInAccountCurrency.String(),
		orderID,
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// UpdateTransaction replaces the correctable fields of a transaction. The
// identity fields (id, position_id, created_at) never change.
func (s *TransactionRepository) UpdateTransaction(t *model.Transaction) error {
	res, err := s.db.Exec(`
		UPDATE "transaction"
		SET executed_at = ?, quantity = ?, price = ?, transaction_costs = ?,
			local_value = ?, value_account_currency = ?, total_account_currency = ?
		WHERE id = ?
	`,
		t.ExecutedAt.UTC().Format(time.RFC3339),
		t.Quantity.String(),
		t.Price.String(),
		t.TransactionCosts.String(),
		t.LocalValue.String(),
		t.ValueInAccountCurrency.String(),
		t.TotalInAccountCurrency.String(),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction record.
func (s *TransactionRepository) DeleteTransaction(transactionID string) error {
	res, err := s.db.Exec(`DELETE FROM "transaction" WHERE id = ?`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
