package repository

import (
	"database/sql"
	"fmt"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// AccountRepository provides data access methods for the account table.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (s *AccountRepository) WithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{db: tx}
}

// GetAccounts retrieves all accounts ordered by nickname.
func (s *AccountRepository) GetAccounts() ([]model.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, nickname, description, currency, balance
		FROM account
		ORDER BY nickname ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query account table: %w", err)
	}
	defer rows.Close()

	accounts := []model.Account{}
	for rows.Next() {
		var a model.Account
		var balanceStr string

		if err := rows.Scan(&a.ID, &a.Nickname, &a.Description, &a.Currency, &balanceStr); err != nil {
			return nil, fmt.Errorf("failed to scan account table results: %w", err)
		}
		if a.Balance, err = ParseDecimal(balanceStr); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account table: %w", err)
	}

	return accounts, nil
}

// GetAccount retrieves a single account by its ID.
func (s *AccountRepository) GetAccount(accountID string) (model.Account, error) {
	var a model.Account
	var balanceStr string

	err := s.db.QueryRow(`
		SELECT id, nickname, description, currency, balance
		FROM account
		WHERE id = ?
	`, accountID).Scan(&a.ID, &a.Nickname, &a.Description, &a.Currency, &balanceStr)
	if err == sql.ErrNoRows {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("failed to scan account table results: %w", err)
	}
	if a.Balance, err = ParseDecimal(balanceStr); err != nil {
		return model.Account{}, err
	}

	return a, nil
}

// InsertAccount creates a new account record.
func (s *AccountRepository) InsertAccount(a *model.Account) error {
	_, err := s.db.Exec(`
		INSERT INTO account (id, nickname, description, currency, balance)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.Nickname, a.Description, a.Currency, a.Balance.String())
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// UpdateBalance sets the account's cash balance.
func (s *AccountRepository) UpdateBalance(accountID string, balance string) error {
	res, err := s.db.Exec(`UPDATE account SET balance = ? WHERE id = ?`, balance, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
