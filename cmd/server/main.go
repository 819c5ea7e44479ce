package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/database"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/logging"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/repository"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/scheduler"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/version"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// refreshTimeout bounds one full refresh of every configured currency.
const refreshTimeout = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Str("version", version.Version).Str("commit", version.Commit).Msg("starting portfolio valuation backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional persistent close store
	var db *sql.DB
	cacheOpts := []market.CachedProviderOption{market.WithLatestTTL(cfg.Market.LatestPriceTTL)}
	if cfg.Database.Path != "" {
		db, err = database.Open(ctx, cfg.Database.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
		}
		defer db.Close()

		cacheOpts = append(cacheOpts, market.WithCloseStore(repository.NewMarketCloseRepository(db)))
		log.Info().Str("path", cfg.Database.Path).Msg("connected to close store")
	}

	// Market data
	provider, err := market.NewCachedProvider(
		market.NewYahooProvider(yahoo.NewFinanceClient()),
		cfg.Market.CacheSize,
		cacheOpts...,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create market data cache")
	}

	// Create services
	systemService := service.NewSystemService(db)
	currencyService := service.NewCurrencyService(provider, cfg.Valuation.FXTimeout)
	valuationService := service.NewValuationService(
		service.FileLedgerSource{Path: cfg.Ledger.Path},
		provider,
		currencyService,
		service.ValuationOptions{
			Workers:      cfg.Valuation.PriceWorkers,
			PriceTimeout: cfg.Valuation.PriceTimeout,
		},
	)
	cache := service.NewValuationCache(valuationService, cfg.Refresh.Currencies)

	// Initial refresh; the API answers 503 until one succeeds.
	go func() {
		refreshCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
		defer cancel()
		if err := cache.Refresh(refreshCtx); err != nil {
			log.Warn().Err(err).Msg("initial valuation refresh failed")
		}
	}()

	sched, err := scheduler.New(cfg.Refresh.Schedule, cache, refreshTimeout)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Refresh.Schedule).Msg("invalid refresh schedule")
	}
	sched.Start()

	// Create router
	router := api.NewRouter(systemService, cache, cfg)

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
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sched.Stop(shutdownCtx)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
