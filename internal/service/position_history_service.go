package service

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/apperrors"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/timeseries"
)

// hopCurrency is the intermediate currency used when no direct exchange
// rate series exists for a pair.
const hopCurrency = "USD"

// historySeries discriminates the cached series kinds.
type historySeries int

const (
	seriesQuantity historySeries = iota
	seriesValue
	seriesValueAccountCurrency
)

// historyKey identifies one memoized reconstruction result.
type historyKey struct {
	positionID string
	from       string
	to         string
	stepDays   int
	series     historySeries
}

// PositionHistoryService reconstructs the daily quantity and market value of
// a position over an arbitrary historical window by replaying the
// transaction log backward from the current quantity and aligning the
// result against the sparse price and exchange-rate series.
//
// The service is read-only with respect to positions, transactions and
// prices, and safe for concurrent use. Results are memoized per
// (position, window, step, series); the transaction mutation path calls
// Invalidate whenever a position's log changes, and the price refresh
// calls InvalidateAll once new market data lands.
type PositionHistoryService struct {
	positionRepo    *repository.PositionRepository
	transactionRepo *repository.TransactionRepository
	priceRepo       *repository.AssetPriceRepository
	rateRepo        *repository.ExchangeRateRepository

	mu    sync.Mutex
	cache map[historyKey][]timeseries.Point
}

// NewPositionHistoryService creates a new PositionHistoryService with the provided repository dependencies.
func NewPositionHistoryService(
	positionRepo *repository.PositionRepository,
	transactionRepo *repository.TransactionRepository,
	priceRepo *repository.AssetPriceRepository,
	rateRepo *repository.ExchangeRateRepository,
) *PositionHistoryService {
	return &PositionHistoryService{
		positionRepo:    positionRepo,
		transactionRepo: transactionRepo,
		priceRepo:       priceRepo,
		rateRepo:        rateRepo,
		cache:           make(map[historyKey][]timeseries.Point),
	}
}

// Invalidate drops every cached series of a position. Called by the
// transaction application logic after any insert, correction or deletion.
func (s *PositionHistoryService) Invalidate(positionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.cache {
		if key.positionID == positionID {
			delete(s.cache, key)
		}
	}
}

// InvalidateAll drops every cached series. A price or exchange-rate
// refresh can move the value series of any position, so the whole cache
// goes at once.
func (s *PositionHistoryService) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[historyKey][]timeseries.Point)
}

func (s *PositionHistoryService) cached(key historyKey) ([]timeseries.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	points, ok := s.cache[key]
	return points, ok
}

func (s *PositionHistoryService) store(key historyKey, points []timeseries.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = points
}

func newHistoryKey(positionID string, from, to time.Time, series historySeries) historyKey {
	return historyKey{
		positionID: positionID,
		from:       from.Format(timeseries.DateFormat),
		to:         to.Format(timeseries.DateFormat),
		stepDays:   1,
		series:     series,
	}
}

// QuantityHistory returns the quantity held at the end of every day in
// [from, to], newest first.
//
// The reconstruction walks backward from the position's current quantity:
// for each date, every not-yet-undone transaction executed on or after that
// date is undone by subtracting its signed quantity, and the running
// quantity is recorded. A window that ends before the most recent
// transaction is rejected with apperrors.ErrHistoryWindowTooEarly, because
// the current quantity cannot be related to such a window. A position with
// no transactions yields a flat series at the current quantity.
func (s *PositionHistoryService) QuantityHistory(positionID string, from, to time.Time) ([]timeseries.Point, error) {
	from, to = timeseries.Day(from), timeseries.Day(to)
	key := newHistoryKey(positionID, from, to, seriesQuantity)
	if points, ok := s.cached(key); ok {
		return points, nil
	}

	position, err := s.positionRepo.GetPosition(positionID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.GetTransactionsForPosition(positionID, false)
	if err != nil {
		return nil, err
	}
	if len(transactions) > 0 && timeseries.Day(transactions[0].ExecutedAt).After(to) {
		return nil, apperrors.ErrHistoryWindowTooEarly
	}

	// Explicit backward fold carrying (running quantity, next transaction
	// to undo) over the descending date sequence.
	running := position.Quantity
	idx := 0

	dates := timeseries.Dates(from, to, 1, true)
	points := make([]timeseries.Point, 0, len(dates))
	for _, date := range dates {
		for idx < len(transactions) && !timeseries.Day(transactions[idx].ExecutedAt).Before(date) {
			running = running.Sub(transactions[idx].Quantity)
			idx++
		}
		points = append(points, timeseries.Point{Date: date, Value: running})
	}

	s.store(key, points)
	return points, nil
}

// ValueHistory returns the market value of the position in the asset's own
// currency for every day in [from, to] that has both a quantity and a
// price, newest first.
//
// The stored closing prices are augmented with one synthetic point per
// in-window transaction, dated the day after the execution: a real trade is
// better evidence of fair value than a stale or missing close on the days
// right after it. Days before the asset could first be priced are filled
// with zero-valued points.
func (s *PositionHistoryService) ValueHistory(positionID string, from, to time.Time) ([]timeseries.Point, error) {
	from, to = timeseries.Day(from), timeseries.Day(to)
	key := newHistoryKey(positionID, from, to, seriesValue)
	if points, ok := s.cached(key); ok {
		return points, nil
	}

	position, err := s.positionRepo.GetPositionDetail(positionID)
	if err != nil {
		return nil, err
	}
	quantities, err := s.QuantityHistory(positionID, from, to)
	if err != nil {
		return nil, err
	}

	stored, err := s.priceRepo.GetPrices(position.AssetID, from, to)
	if err != nil {
		return nil, err
	}
	prices := make([]timeseries.Point, 0, len(stored))
	for _, p := range stored {
		prices = append(prices, timeseries.Point{Date: timeseries.Day(p.Date), Value: p.Price})
	}

	transactions, err := s.transactionRepo.GetTransactionsInWindow(positionID, from, to)
	if err != nil {
		return nil, err
	}
	for _, t := range transactions {
		prices = append(prices, timeseries.Point{
			Date:  timeseries.Day(t.ExecutedAt).AddDate(0, 0, 1),
			Value: t.Price,
		})
	}

	prices = backfillZeros(prices, from, to)
	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Date.After(prices[j].Date)
	})

	points := timeseries.MultiplyMatching(quantities, prices)
	s.store(key, points)
	return points, nil
}

// ValueHistoryInAccountCurrency returns ValueHistory converted into the
// account's settlement currency. When the asset is already priced in the
// account currency the value series is returned unchanged.
//
// The rate series is taken for the window, extended forward by repeating
// the last known rate when it is stale; a pair with no direct data is
// composed through USD, and apperrors.ErrExchangeRateNotFound is returned
// when no conversion data exists at all.
func (s *PositionHistoryService) ValueHistoryInAccountCurrency(positionID string, from, to time.Time) ([]timeseries.Point, error) {
	from, to = timeseries.Day(from), timeseries.Day(to)

	position, err := s.positionRepo.GetPositionDetail(positionID)
	if err != nil {
		return nil, err
	}
	values, err := s.ValueHistory(positionID, from, to)
	if err != nil {
		return nil, err
	}
	if position.AssetCurrency == position.AccountCurrency {
		return values, nil
	}

	key := newHistoryKey(positionID, from, to, seriesValueAccountCurrency)
	if points, ok := s.cached(key); ok {
		return points, nil
	}

	rates, err := s.rateSeries(position.AssetCurrency, position.AccountCurrency, from, to)
	if err != nil {
		return nil, err
	}

	points := timeseries.MultiplyMatching(values, rates)
	s.store(key, points)
	return points, nil
}

// rateSeries assembles the descending conversion series for a currency
// pair, hopping through USD when no direct series exists.
func (s *PositionHistoryService) rateSeries(fromCurrency, toCurrency string, from, to time.Time) ([]timeseries.Point, error) {
	direct, err := s.rateRepo.GetRates(fromCurrency, toCurrency, from, to)
	if err != nil {
		return nil, err
	}
	if len(direct) > 0 {
		return carryForward(ratePoints(direct), to), nil
	}

	toHop, err := s.rateRepo.GetRates(fromCurrency, hopCurrency, from, to)
	if err != nil {
		return nil, err
	}
	fromHop, err := s.rateRepo.GetRates(hopCurrency, toCurrency, from, to)
	if err != nil {
		return nil, err
	}
	if len(toHop) == 0 || len(fromHop) == 0 {
		return nil, apperrors.ErrExchangeRateNotFound
	}

	composed := timeseries.MultiplyMatching(
		carryForward(ratePoints(toHop), to),
		carryForward(ratePoints(fromHop), to),
	)
	if len(composed) == 0 {
		return nil, apperrors.ErrExchangeRateNotFound
	}
	return composed, nil
}

func ratePoints(rates []model.ExchangeRate) []timeseries.Point {
	points := make([]timeseries.Point, 0, len(rates))
	for _, r := range rates {
		points = append(points, timeseries.Point{Date: timeseries.Day(r.Date), Value: r.Rate})
	}
	return points
}

// carryForward extends a descending rate series up to the window end by
// repeating the most recent known rate for every missing day. A stale rate
// is preferred over failing the whole query.
func carryForward(points []timeseries.Point, to time.Time) []timeseries.Point {
	if len(points) == 0 || !points[0].Date.Before(to) {
		return points
	}

	var extended []timeseries.Point
	for d := to; d.After(points[0].Date); d = d.AddDate(0, 0, -1) {
		extended = append(extended, timeseries.Point{Date: d, Value: points[0].Value})
	}
	return append(extended, points...)
}

// backfillZeros prepends a zero-valued point for every day from the window
// start up to the earliest known price. There is no valid market value
// before an asset could first be priced; an asset with no prices at all is
// zero-valued across the whole window.
func backfillZeros(prices []timeseries.Point, from, to time.Time) []timeseries.Point {
	earliest := time.Time{}
	for _, p := range prices {
		if earliest.IsZero() || p.Date.Before(earliest) {
			earliest = p.Date
		}
	}

	if earliest.IsZero() {
		// No price evidence at all: the whole window is zero.
		for _, d := range timeseries.Dates(from, to, 1, false) {
			prices = append(prices, timeseries.Point{Date: d, Value: decimal.Zero})
		}
		return prices
	}

	for d := earliest.AddDate(0, 0, -1); !d.Before(from); d = d.AddDate(0, 0, -1) {
		prices = append(prices, timeseries.Point{Date: d, Value: decimal.Zero})
	}
	return prices
}
