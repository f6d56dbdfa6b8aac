package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/eodhd"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/timeseries"
)

// refreshConcurrency bounds the number of parallel EODHD requests during a
// batch refresh.
const refreshConcurrency = 4

// defaultLookbackDays is how far back the first fetch for an asset or
// currency pair reaches when no data is stored yet.
const defaultLookbackDays = 365

// PriceService keeps the stored price and exchange-rate series current by
// fetching the missing tail of each series from EODHD. Refreshes are
// incremental: each series is fetched from the day after its latest stored
// date up to yesterday.
type PriceService struct {
	assetRepo      *repository.AssetRepository
	accountRepo    *repository.AccountRepository
	priceRepo      *repository.AssetPriceRepository
	rateRepo       *repository.ExchangeRateRepository
	settingService *SettingService
	history        historyInvalidator

	// newClient is swapped out in tests.
	newClient func(token string) eodhdClient
}

type eodhdClient interface {
	QueryEOD(ticker string, startDate, endDate time.Time) ([]eodhd.PricePoint, error)
	QueryForex(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]eodhd.PricePoint, error)
}

// historyInvalidator drops memoized valuation series once a refresh has
// stored new market data. Satisfied by PositionHistoryService.
type historyInvalidator interface {
	InvalidateAll()
}

// NewPriceService creates a new PriceService with the provided dependencies.
// history may be nil when no valuation cache is in play.
func NewPriceService(
	assetRepo *repository.AssetRepository,
	accountRepo *repository.AccountRepository,
	priceRepo *repository.AssetPriceRepository,
	rateRepo *repository.ExchangeRateRepository,
	settingService *SettingService,
	history historyInvalidator,
) *PriceService {
	return &PriceService{
		assetRepo:      assetRepo,
		accountRepo:    accountRepo,
		priceRepo:      priceRepo,
		rateRepo:       rateRepo,
		settingService: settingService,
		history:        history,
		newClient:      func(token string) eodhdClient { return eodhd.NewClient(token) },
	}
}

// RefreshPrices fetches missing daily closes for every known asset.
// Failures on individual assets abort the batch; a scheduled retry picks
// up where the stored series end.
func (s *PriceService) RefreshPrices(ctx context.Context) error {
	token, err := s.settingService.EODToken()
	if err != nil {
		return err
	}
	client := s.newClient(token)

	assets, err := s.assetRepo.GetAssets()
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			return s.refreshAssetPrices(client, asset)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.invalidateHistories()
	return nil
}

func (s *PriceService) refreshAssetPrices(client eodhdClient, asset model.Asset) error {
	latest, err := s.priceRepo.GetLatestPriceDate(asset.ID)
	if err != nil {
		return err
	}
	startDate, endDate, ok := refreshWindow(latest)
	if !ok {
		return nil
	}

	points, err := client.QueryEOD(tickerFor(asset), startDate, endDate)
	if err != nil {
		return err
	}

	for _, p := range points {
		price := decimal.NewFromFloat(p.Close)
		// London lists many instruments in pence sterling.
		if asset.Currency == "GBX" {
			price = price.Div(decimal.NewFromInt(100))
		}
		err := s.priceRepo.UpsertPrice(&model.AssetPrice{
			ID:      uuid.New().String(),
			AssetID: asset.ID,
			Date:    timeseries.Day(p.Date),
			Price:   price,
		})
		if err != nil {
			return err
		}
	}
	if len(points) > 0 {
		log.Printf("refreshed %d prices for %s", len(points), asset.Symbol)
	}
	return nil
}

// RefreshExchangeRates fetches missing daily rates for every currency pair
// the stored accounts and assets can require, including the USD legs used
// for indirect conversion.
func (s *PriceService) RefreshExchangeRates(ctx context.Context) error {
	token, err := s.settingService.EODToken()
	if err != nil {
		return err
	}
	client := s.newClient(token)

	pairs, err := s.currencyPairs()
	if err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			return s.refreshRates(client, pair[0], pair[1])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.invalidateHistories()
	return nil
}

// invalidateHistories drops cached valuation series so the next history
// request sees the freshly stored data.
func (s *PriceService) invalidateHistories() {
	if s.history != nil {
		s.history.InvalidateAll()
	}
}

func (s *PriceService) refreshRates(client eodhdClient, fromCurrency, toCurrency string) error {
	latest, err := s.rateRepo.GetLatestRateDate(fromCurrency, toCurrency)
	if err != nil {
		return err
	}
	startDate, endDate, ok := refreshWindow(latest)
	if !ok {
		return nil
	}

	points, err := client.QueryForex(fromCurrency, toCurrency, startDate, endDate)
	if err != nil {
		return err
	}

	for _, p := range points {
		err := s.rateRepo.UpsertRate(&model.ExchangeRate{
			ID:           uuid.New().String(),
			FromCurrency: fromCurrency,
			ToCurrency:   toCurrency,
			Date:         timeseries.Day(p.Date),
			Rate:         decimal.NewFromFloat(p.Close),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetClosestRate returns the stored rate nearest to a date, preferring the
// newest rate at or before it.
func (s *PriceService) GetClosestRate(fromCurrency, toCurrency string, date time.Time) (*model.ExchangeRate, error) {
	return s.rateRepo.GetClosestRate(fromCurrency, toCurrency, timeseries.Day(date))
}

// currencyPairs derives the conversion pairs worth tracking: every distinct
// asset currency against every distinct account currency, plus the USD hop
// legs for pairs without a direct series.
func (s *PriceService) currencyPairs() ([][2]string, error) {
	assets, err := s.assetRepo.GetAssets()
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAccounts()
	if err != nil {
		return nil, err
	}

	seen := make(map[[2]string]bool)
	var pairs [][2]string
	add := func(from, to string) {
		if from == to {
			return
		}
		pair := [2]string{from, to}
		if !seen[pair] {
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}

	for _, asset := range assets {
		assetCurrency := asset.Currency
		if assetCurrency == "GBX" {
			assetCurrency = "GBP"
		}
		for _, account := range accounts {
			add(assetCurrency, account.Currency)
			add(assetCurrency, hopCurrency)
			add(hopCurrency, account.Currency)
		}
	}
	return pairs, nil
}

// refreshWindow computes the incremental fetch window following the latest
// stored date. ok is false when the series is already current.
func refreshWindow(latest time.Time) (startDate, endDate time.Time, ok bool) {
	now := time.Now().UTC()
	endDate = timeseries.Day(now).AddDate(0, 0, -1)
	if latest.IsZero() {
		startDate = endDate.AddDate(0, 0, -defaultLookbackDays)
	} else {
		startDate = timeseries.Day(latest).AddDate(0, 0, 1)
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, false
	}
	return startDate, endDate, true
}

func tickerFor(asset model.Asset) string {
	if asset.AssetType == model.AssetTypeCrypto {
		return asset.Symbol + "-USD.CC"
	}
	if asset.Exchange != "" {
		return asset.Symbol + "." + asset.Exchange
	}
	return asset.Symbol
}
