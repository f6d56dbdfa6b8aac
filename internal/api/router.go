package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/handlers"
	custommiddleware "github.com/avdwerf/Holdings-Tracker-Backend/internal/api/middleware"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/config"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
)

// Services bundles the service dependencies of the HTTP layer.
type Services struct {
	System      *service.SystemService
	Account     *service.AccountService
	Asset       *service.AssetService
	Transaction *service.TransactionService
	History     *service.PositionHistoryService
	Setting     *service.SettingService
	Price       *service.PriceService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		accountHandler := handlers.NewAccountHandler(services.Account)
		r.Route("/account", func(r chi.Router) {
			r.Get("/", accountHandler.Accounts)
			r.Post("/", accountHandler.CreateAccount)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", accountHandler.GetAccount)
				r.Get("/positions", accountHandler.AccountPositions)
			})
		})

		r.Route("/asset", func(r chi.Router) {
			assetHandler := handlers.NewAssetHandler(services.Asset)
			r.Get("/", assetHandler.Assets)
			r.Post("/", assetHandler.CreateAsset)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", assetHandler.GetAsset)
			})
		})

		r.Route("/position", func(r chi.Router) {
			positionHandler := handlers.NewPositionHandler(services.Account, services.Transaction, services.History)
			r.Post("/", accountHandler.OpenPosition)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", positionHandler.GetPosition)
				r.Get("/transactions", positionHandler.PositionTransactions)
				r.Get("/lots", positionHandler.PositionLots)
				r.Route("/history", func(r chi.Router) {
					r.Get("/quantity", positionHandler.QuantityHistory)
					r.Get("/value", positionHandler.ValueHistory)
					r.Get("/value-account-currency", positionHandler.ValueHistoryInAccountCurrency)
				})
			})
		})

		r.Route("/transaction", func(r chi.Router) {
			transactionHandler := handlers.NewTransactionHandler(services.Transaction)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Delete("/", transactionHandler.DeleteTransactions)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Put("/", transactionHandler.CorrectTransaction)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/settings", func(r chi.Router) {
			settingHandler := handlers.NewSettingHandler(services.Setting, services.Price)
			r.Put("/eod-token", settingHandler.SetEODToken)
			r.Post("/refresh-prices", settingHandler.RefreshPrices)
		})
	})

	return r
}
