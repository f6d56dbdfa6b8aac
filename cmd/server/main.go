package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/config"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/database"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	lotRepo := repository.NewLotRepository(db)
	priceRepo := repository.NewAssetPriceRepository(db)
	rateRepo := repository.NewExchangeRateRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// Create services
	systemService := service.NewSystemService(db)
	accountService := service.NewAccountService(accountRepo, positionRepo)
	assetService := service.NewAssetService(assetRepo)
	lotService := service.NewLotService(db, transactionRepo, lotRepo)
	historyService := service.NewPositionHistoryService(positionRepo, transactionRepo, priceRepo, rateRepo)
	transactionService := service.NewTransactionService(
		db,
		transactionRepo,
		positionRepo,
		accountRepo,
		rateRepo,
		lotRepo,
		lotService,
		historyService,
	)
	settingService, err := service.NewSettingService(settingRepo, cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to create setting service: %v", err)
	}
	priceService := service.NewPriceService(assetRepo, accountRepo, priceRepo, rateRepo, settingService, historyService)

	// Schedule the daily price refresh
	scheduler := cron.New()
	if cfg.Prices.RefreshEnabled {
		_, err := scheduler.AddFunc(cfg.Prices.RefreshSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := priceService.RefreshPrices(ctx); err != nil {
				log.Printf("Scheduled price refresh failed: %v", err)
			}
			if err := priceService.RefreshExchangeRates(ctx); err != nil {
				log.Printf("Scheduled exchange rate refresh failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule price refresh: %v", err)
		}
		scheduler.Start()
		log.Printf("Scheduled price refresh: %s", cfg.Prices.RefreshSchedule)
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Account:     accountService,
		Asset:       assetService,
		Transaction: transactionService,
		History:     historyService,
		Setting:     settingService,
		Price:       priceService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
