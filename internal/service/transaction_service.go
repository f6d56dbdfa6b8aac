package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/timeseries"
)

// TransactionService applies buy and sell records to the ledger. Every
// mutation runs in a single database transaction covering the transaction
// row, the position aggregates, the account balance and the tax lots, so a
// failure in any step leaves all of them untouched.
type TransactionService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	positionRepo    *repository.PositionRepository
	accountRepo     *repository.AccountRepository
	rateRepo        *repository.ExchangeRateRepository
	lotRepo         *repository.LotRepository
	lotService      *LotService
	historyService  *PositionHistoryService
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	positionRepo *repository.PositionRepository,
	accountRepo *repository.AccountRepository,
	rateRepo *repository.ExchangeRateRepository,
	lotRepo *repository.LotRepository,
	lotService *LotService,
	historyService *PositionHistoryService,
) *TransactionService {
	return &TransactionService{
		db:              db,
		transactionRepo: transactionRepo,
		positionRepo:    positionRepo,
		accountRepo:     accountRepo,
		rateRepo:        rateRepo,
		lotRepo:         lotRepo,
		lotService:      lotService,
		historyService:  historyService,
	}
}

// CreateTransaction records a new buy or sell, adjusts the position
// quantity and the account balance, and brings the tax lots up to date.
func (s *TransactionService) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	if t.Quantity.IsZero() {
		return apperrors.ErrZeroQuantity
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := s.fillAccountCurrencyAmounts(t); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	position, err := s.positionRepo.WithTx(tx).GetPosition(t.PositionID)
	if err != nil {
		return err
	}

	if err := s.transactionRepo.WithTx(tx).InsertTransaction(t); err != nil {
		return err
	}
	position.Quantity = position.Quantity.Add(t.Quantity)

	if err := s.applyBalanceDelta(tx, position.AccountID, t.TotalInAccountCurrency); err != nil {
		return err
	}
	if err := s.lotService.UpdateLotsInTx(tx, position, t); err != nil {
		return err
	}
	if err := s.refreshPositionTotals(tx, &position); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.historyService.Invalidate(position.ID)
	return nil
}

// fillAccountCurrencyAmounts derives the account-currency value of a record
// that only carries its local amounts, using the stored exchange rate
// closest to the execution date. Pence sterling values convert through the
// pound rate. Records that already carry the amounts pass through, apart
// from a missing settlement total, which is always derivable.
func (s *TransactionService) fillAccountCurrencyAmounts(t *model.Transaction) error {
	if t.ValueInAccountCurrency.IsZero() && !t.LocalValue.IsZero() {
		detail, err := s.positionRepo.GetPositionDetail(t.PositionID)
		if err != nil {
			return err
		}

		localValue := t.LocalValue
		assetCurrency := detail.AssetCurrency
		if assetCurrency == "GBX" {
			assetCurrency = "GBP"
			localValue = localValue.Div(decimal.NewFromInt(100))
		}

		value := localValue
		if assetCurrency != detail.AccountCurrency {
			rate, err := s.rateRepo.GetClosestRate(assetCurrency, detail.AccountCurrency, timeseries.Day(t.ExecutedAt))
			if err != nil {
				return err
			}
			if rate == nil {
				return apperrors.ErrExchangeRateNotFound
			}
			value = localValue.Mul(rate.Rate)
		}
		t.ValueInAccountCurrency = value
	}

	if t.TotalInAccountCurrency.IsZero() && !t.ValueInAccountCurrency.IsZero() {
		// Settlement cash flow is the negated trade value net of costs.
		t.TotalInAccountCurrency = t.ValueInAccountCurrency.Neg().Sub(t.TransactionCosts)
	}
	return nil
}

// CorrectTransaction rewrites the mutable fields of an existing record and
// reconciles every derived figure. The position, order and creation
// metadata of the original are kept; only execution date, quantity, price,
// costs and the derived money amounts are taken from the correction.
func (s *TransactionService) CorrectTransaction(ctx context.Context, corrected *model.Transaction) error {
	if corrected.Quantity.IsZero() {
		return apperrors.ErrZeroQuantity
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transactionRepo := s.transactionRepo.WithTx(tx)
	original, err := transactionRepo.GetTransaction(corrected.ID)
	if err != nil {
		return err
	}
	corrected.PositionID = original.PositionID
	corrected.OrderID = original.OrderID
	corrected.CreatedAt = original.CreatedAt

	if err := transactionRepo.UpdateTransaction(corrected); err != nil {
		return err
	}

	position, err := s.positionRepo.WithTx(tx).GetPosition(original.PositionID)
	if err != nil {
		return err
	}
	position.Quantity = position.Quantity.Sub(original.Quantity).Add(corrected.Quantity)

	balanceDelta := corrected.TotalInAccountCurrency.Sub(original.TotalInAccountCurrency)
	if err := s.applyBalanceDelta(tx, position.AccountID, balanceDelta); err != nil {
		return err
	}
	// A corrected row's previous effects are already baked into the lot
	// set, so the incremental path can never be used here.
	if err := s.lotService.UpdateLotsInTx(tx, position, nil); err != nil {
		return err
	}
	if err := s.refreshPositionTotals(tx, &position); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.historyService.Invalidate(position.ID)
	return nil
}

// DeleteTransaction removes a record, backs its quantity and money effects
// out of the position and account, and rebuilds the tax lots from the
// remaining log.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transactionRepo := s.transactionRepo.WithTx(tx)
	t, err := transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return err
	}
	if err := transactionRepo.DeleteTransaction(transactionID); err != nil {
		return err
	}

	position, err := s.positionRepo.WithTx(tx).GetPosition(t.PositionID)
	if err != nil {
		return err
	}
	position.Quantity = position.Quantity.Sub(t.Quantity)

	if err := s.applyBalanceDelta(tx, position.AccountID, t.TotalInAccountCurrency.Neg()); err != nil {
		return err
	}
	if err := s.lotService.UpdateLotsInTx(tx, position, nil); err != nil {
		return err
	}
	if err := s.refreshPositionTotals(tx, &position); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.historyService.Invalidate(position.ID)
	return nil
}

// DeleteTransactions removes a batch of records atomically. The quantity
// and balance effects are accumulated per position and per account before
// being applied, and each touched position gets a single lot rebuild.
func (s *TransactionService) DeleteTransactions(ctx context.Context, transactionIDs []string) error {
	if len(transactionIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	transactionRepo := s.transactionRepo.WithTx(tx)
	transactions, err := transactionRepo.GetTransactionsByIDs(transactionIDs)
	if err != nil {
		return err
	}
	if len(transactions) != len(transactionIDs) {
		return apperrors.ErrTransactionNotFound
	}

	quantityDeltas := make(map[string]decimal.Decimal)
	balanceDeltas := make(map[string]decimal.Decimal)
	accountFor := make(map[string]string)
	for _, t := range transactions {
		if err := transactionRepo.DeleteTransaction(t.ID); err != nil {
			return err
		}
		quantityDeltas[t.PositionID] = quantityDeltas[t.PositionID].Sub(t.Quantity)
		balanceDeltas[t.PositionID] = balanceDeltas[t.PositionID].Sub(t.TotalInAccountCurrency)
	}

	positionRepo := s.positionRepo.WithTx(tx)
	for positionID, delta := range quantityDeltas {
		position, err := positionRepo.GetPosition(positionID)
		if err != nil {
			return err
		}
		position.Quantity = position.Quantity.Add(delta)
		accountFor[positionID] = position.AccountID

		if err := s.lotService.UpdateLotsInTx(tx, position, nil); err != nil {
			return err
		}
		if err := s.refreshPositionTotals(tx, &position); err != nil {
			return err
		}
	}
	for positionID, delta := range balanceDeltas {
		if err := s.applyBalanceDelta(tx, accountFor[positionID], delta); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	for positionID := range quantityDeltas {
		s.historyService.Invalidate(positionID)
	}
	return nil
}

// GetTransactionsForPosition returns the full log of a position, newest first.
func (s *TransactionService) GetTransactionsForPosition(positionID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetTransactionsForPosition(positionID, false)
}

// GetLotsForPosition returns the current tax lots of a position.
func (s *TransactionService) GetLotsForPosition(positionID string) ([]model.Lot, error) {
	return s.lotRepo.GetLotsForPosition(positionID)
}

// applyBalanceDelta shifts an account balance by the signed settlement
// amount of a transaction.
func (s *TransactionService) applyBalanceDelta(tx *sql.Tx, accountID string, delta decimal.Decimal) error {
	accountRepo := s.accountRepo.WithTx(tx)
	account, err := accountRepo.GetAccount(accountID)
	if err != nil {
		return err
	}
	return accountRepo.UpdateBalance(accountID, account.Balance.Add(delta).String())
}

// refreshPositionTotals rereads the lots of a position and stores the
// aggregate quantity, realized gain and open cost basis.
func (s *TransactionService) refreshPositionTotals(tx *sql.Tx, position *model.Position) error {
	lots, err := s.lotRepo.WithTx(tx).GetLotsForPosition(position.ID)
	if err != nil {
		return err
	}
	position.RealizedGain, position.CostBasis = LotTotals(lots)
	return s.positionRepo.WithTx(tx).UpdatePosition(position)
}
