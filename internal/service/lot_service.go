package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/timeseries"
)

// Epsilon is the tolerance for comparisons against zero in the lot math.
// Splitting lots chains decimal divisions whose quotients are rounded to
// decimal.DivisionPrecision digits, so an outstanding quantity that should
// be exactly zero can come out as a residue smaller than this.
var Epsilon = decimal.New(1, -14) // 1e-14

// LotService derives and maintains the FIFO cost-basis lots of a position
// from its transaction log.
//
// Every update runs as one database transaction: either the whole new lot
// set is visible afterwards or none of it is. The service never mutates
// transactions or the position itself; the position's quantity is consumed
// as ground truth by callers, not produced here.
type LotService struct {
	db              *sql.DB
	transactionRepo *repository.TransactionRepository
	lotRepo         *repository.LotRepository
}

// NewLotService creates a new LotService with the provided repository dependencies.
func NewLotService(
	db *sql.DB,
	transactionRepo *repository.TransactionRepository,
	lotRepo *repository.LotRepository,
) *LotService {
	return &LotService{
		db:              db,
		transactionRepo: transactionRepo,
		lotRepo:         lotRepo,
	}
}

// lotUpdateStrategy is the decision of how a single update replays the log,
// computed once at the start of the update.
type lotUpdateStrategy int

const (
	// rebuildAll discards every lot of the position and replays the full
	// transaction log in ascending execution order.
	rebuildAll lotUpdateStrategy = iota
	// appendOne replays only the changed transaction against the stored lot
	// set. Valid only when that transaction is chronologically the latest;
	// it must produce the same lot set a full rebuild would.
	appendOne
)

// chooseStrategy picks the replay strategy for an update. A transaction
// edited to a point before the latest other transaction can retroactively
// change which lots existed at later sell times, so only a change at the
// very end of the log may take the incremental path. Two transactions with
// an identical timestamp keep their storage order; the changed one is then
// treated as latest.
func chooseStrategy(transactions []model.Transaction, changed *model.Transaction) lotUpdateStrategy {
	if changed == nil || len(transactions) <= 1 {
		return rebuildAll
	}
	for i := range transactions {
		if transactions[i].ID == changed.ID {
			continue
		}
		if changed.ExecutedAt.Before(transactions[i].ExecutedAt) {
			return rebuildAll
		}
	}
	return appendOne
}

// UpdateLots brings the lot set of a position in line with its transaction
// log under FIFO accounting. changed, when non-nil, is the transaction that
// was just inserted or corrected and may enable the incremental path;
// corrections and deletions elsewhere in the log force a full rebuild.
//
// Returns apperrors.ErrSoldBeforeBought when the log sells more units than
// were ever bought up to that point; no partial lot writes survive the error.
func (s *LotService) UpdateLots(ctx context.Context, position model.Position, changed *model.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin lot update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := s.UpdateLotsInTx(tx, position, changed); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateLotsInTx is UpdateLots scoped to an existing database transaction,
// for callers that mutate the transaction log and the lot set as one unit.
func (s *LotService) UpdateLotsInTx(tx *sql.Tx, position model.Position, changed *model.Transaction) error {
	transactionRepo := s.transactionRepo.WithTx(tx)
	lotRepo := s.lotRepo.WithTx(tx)

	transactions, err := transactionRepo.GetTransactionsForPosition(position.ID, true)
	if err != nil {
		return err
	}

	switch chooseStrategy(transactions, changed) {
	case appendOne:
		return s.appendTransaction(lotRepo, *changed)
	default:
		return s.rebuildLots(lotRepo, position.ID, transactions)
	}
}

// RecomputeLots runs one full rebuild per affected position. It is the
// closing step of the bulk-deletion path: the caller applies accumulated
// quantity and cash deltas first, then recomputes each lot set once instead
// of once per deleted transaction.
func (s *LotService) RecomputeLots(ctx context.Context, positionIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin lot recompute: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, id := range positionIDs {
		if err := s.UpdateLotsInTx(tx, model.Position{ID: id}, nil); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// rebuildLots discards the stored lot set and replays the whole log.
func (s *LotService) rebuildLots(lotRepo *repository.LotRepository, positionID string, transactions []model.Transaction) error {
	lots, err := replayLog(positionID, transactions)
	if err != nil {
		return err
	}

	if err := lotRepo.DeleteAllLotsForPosition(positionID); err != nil {
		return err
	}
	for _, l := range lots {
		if err := lotRepo.CreateLot(l); err != nil {
			return err
		}
	}
	return nil
}

// appendTransaction replays a single latest transaction against the stored
// lot set, leaving older lots untouched. Same math as the rebuild, applied
// to the persisted open lots instead of an in-memory replay.
func (s *LotService) appendTransaction(lotRepo *repository.LotRepository, t model.Transaction) error {
	if t.Quantity.Sign() > 0 {
		lot := newLotFromBuy(t)
		return lotRepo.CreateLot(&lot)
	}

	stored, err := lotRepo.GetOpenLotsForPosition(t.PositionID)
	if err != nil {
		return err
	}
	open := make([]*model.Lot, len(stored))
	for i := range stored {
		open[i] = &stored[i]
	}

	created, err := consumeOpenLots(open, t)
	if err != nil {
		return err
	}

	for _, lot := range open {
		if !lot.Open() {
			if err := lotRepo.UpdateLot(lot); err != nil {
				return err
			}
		}
	}
	for _, lot := range created {
		if err := lotRepo.CreateLot(lot); err != nil {
			return err
		}
	}
	return nil
}

// replayLog derives the complete lot set of a position from its transaction
// log, ordered ascending by execution time.
func replayLog(positionID string, transactions []model.Transaction) ([]*model.Lot, error) {
	var lots []*model.Lot
	for i := range transactions {
		t := transactions[i]
		if t.Quantity.Sign() > 0 {
			lot := newLotFromBuy(t)
			lots = append(lots, &lot)
			continue
		}

		created, err := consumeOpenLots(openLotsAscending(lots), t)
		if err != nil {
			return nil, fmt.Errorf("replaying transactions for position %s: %w", positionID, err)
		}
		lots = append(lots, created...)
	}
	return lots, nil
}

// newLotFromBuy records one open lot for a buy transaction. The cost basis
// is the transaction's total cash effect in the account currency, a
// negative number.
func newLotFromBuy(t model.Transaction) model.Lot {
	return model.Lot{
		ID:               uuid.New().String(),
		PositionID:       t.PositionID,
		Quantity:         t.Quantity,
		BuyDate:          timeseries.Day(t.ExecutedAt),
		BuyPrice:         t.Price,
		CostBasis:        t.TotalInAccountCurrency,
		BuyTransactionID: t.ID,
	}
}

// consumeOpenLots closes open lots against one sell transaction, oldest buy
// first. open must be sorted ascending by buy date; closed lots are mutated
// in place and any split remainder lots are returned.
//
// The sell basis attributed to a lot is the slice of the sell's total cash
// effect proportional to the lot's share of the sold quantity; realized
// gain is that basis plus the (negative) cost basis.
func consumeOpenLots(open []*model.Lot, t model.Transaction) ([]*model.Lot, error) {
	sellDate := timeseries.Day(t.ExecutedAt)
	outstanding := t.Quantity.Neg()

	var created []*model.Lot
	for _, lot := range open {
		if outstanding.Abs().LessThan(Epsilon) {
			break
		}

		if outstanding.GreaterThanOrEqual(lot.Quantity) {
			// Sell the lot in full.
			closeLot(lot, t, sellDate)
			outstanding = outstanding.Sub(lot.Quantity)
			continue
		}

		// Split the lot in two and sell the first part. The untouched
		// remainder keeps the original buy data with the cost basis scaled
		// to its share of the lot.
		remaining := lot.Quantity.Sub(outstanding)
		created = append(created, &model.Lot{
			ID:               uuid.New().String(),
			PositionID:       lot.PositionID,
			Quantity:         remaining,
			BuyDate:          lot.BuyDate,
			BuyPrice:         lot.BuyPrice,
			CostBasis:        lot.CostBasis.Mul(remaining).Div(lot.Quantity),
			BuyTransactionID: lot.BuyTransactionID,
		})

		lot.CostBasis = lot.CostBasis.Mul(outstanding).Div(lot.Quantity)
		lot.Quantity = outstanding
		closeLot(lot, t, sellDate)
		outstanding = decimal.Zero
	}

	if outstanding.GreaterThan(Epsilon) {
		return nil, apperrors.ErrSoldBeforeBought
	}
	return created, nil
}

// closeLot marks a lot as sold by t. The sell basis is proportional to how
// much of the sell's quantity this lot covers; sell is cash in and the cost
// basis is cash out, so adding them yields the net realized gain.
func closeLot(lot *model.Lot, t model.Transaction, sellDate time.Time) {
	sellPrice := t.Price
	sellBasis := t.TotalInAccountCurrency.Mul(lot.Quantity).Div(t.Quantity.Neg())
	realizedGain := sellBasis.Add(lot.CostBasis)
	sellTransactionID := t.ID

	lot.SellDate = &sellDate
	lot.SellPrice = &sellPrice
	lot.SellBasis = &sellBasis
	lot.RealizedGain = &realizedGain
	lot.SellTransactionID = &sellTransactionID
}

// openLotsAscending filters the open lots out of a replay-in-progress,
// ordered ascending by buy date. The sort is stable so lots bought on the
// same date keep their creation order.
func openLotsAscending(lots []*model.Lot) []*model.Lot {
	var open []*model.Lot
	for _, l := range lots {
		if l.Open() {
			open = append(open, l)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].BuyDate.Before(open[j].BuyDate)
	})
	return open
}

// LotTotals sums the cumulative realized gain over closed lots and the
// cumulative cost basis over open lots. The transaction application logic
// copies these onto the position after every lot update.
func LotTotals(lots []model.Lot) (realizedGain, costBasis decimal.Decimal) {
	for i := range lots {
		if lots[i].RealizedGain != nil {
			realizedGain = realizedGain.Add(*lots[i].RealizedGain)
		}
		if lots[i].Open() {
			costBasis = costBasis.Add(lots[i].CostBasis)
		}
	}
	return realizedGain, costBasis
}
