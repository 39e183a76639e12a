package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/business-credits/src/internal/adapter/http/controller"
	"github.com/api-sage/business-credits/src/internal/adapter/http/middleware"
	"github.com/api-sage/business-credits/src/internal/adapter/http/router"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger/rpc"
	"github.com/api-sage/business-credits/src/internal/adapter/ledger/sandbox"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/memory"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/postgres"
	"github.com/api-sage/business-credits/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/business-credits/src/internal/config"
	"github.com/api-sage/business-credits/src/internal/domain"
	"github.com/api-sage/business-credits/src/internal/logger"
	"github.com/api-sage/business-credits/src/internal/metrics"
	"github.com/api-sage/business-credits/src/internal/usecase/services"
)

const sandboxRootBalance = "1000000000000000000000000000000"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	m := metrics.New()

	gateway, tokenCode, err := newLedger(cfg)
	if err != nil {
		return err
	}
	gateway = ledger.NewInstrumented(gateway, m)

	intents, rates, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	settings := services.Settings{
		RootAccount:            domain.Identity(cfg.RootAccount),
		SignerPublicKey:        cfg.SignerPublicKey,
		TokenCode:              tokenCode,
		TokenTotalSupply:       cfg.TokenTotalSupply,
		TokenDecimals:          cfg.TokenDecimals,
		TokenSpec:              cfg.TokenSpec,
		BusinessInitialBalance: cfg.BusinessInitialBalance,
		GasReserveAmount:       cfg.GasReserveAmount,
		StorageDepositAmount:   cfg.StorageDepositAmount,
		CallGas:                cfg.CallGas,
		CallTimeout:            cfg.LedgerCallTimeout,
		PayoutFromBusiness:     cfg.SwapPayoutSource == config.PayoutSourceBusiness,
		RewardsEnabled:         cfg.Features.Rewards,
		SwapsEnabled:           cfg.Features.Swaps,
	}

	locks := services.NewIdentityLocks()
	businessService := services.NewBusinessService(gateway, locks, settings, m)
	userService := services.NewUserService(gateway, locks, settings, m)
	swapService := services.NewSwapService(gateway, intents, locks, settings, m)
	reconciliationService := services.NewReconciliationService(gateway, intents, locks, settings, services.SweepOptions{
		MaxAttempts: cfg.ReconcileMaxAttempts,
		Concurrency: cfg.ReconcileConcurrency,
	}, m)
	rateService := services.NewRateService(rates)

	if cfg.ReconcileSchedule != "" {
		sweeper, err := services.NewReconciliationSweeper(cfg.ReconcileSchedule, reconciliationService, cfg.RequestTimeout)
		if err != nil {
			return err
		}
		sweeper.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			sweeper.Stop(stopCtx)
		}()
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	handler := router.New(
		router.Options{
			AuthMiddleware: middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey, cfg.ChannelKeyHash),
			RateLimiter:    limiter,
			Metrics:        m,
		},
		controller.NewBusinessController(businessService),
		controller.NewUserController(userService),
		controller.NewSwapController(swapService, reconciliationService),
		controller.NewRateController(rateService),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", logger.Fields{
			"addr":          cfg.HTTPAddr,
			"ledgerDriver":  cfg.LedgerDriver,
			"storageDriver": cfg.StorageDriver,
			"rootAccount":   cfg.RootAccount,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down http server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// newLedger returns the configured gateway and the token contract code.
// The sandbox falls back to placeholder code when the wasm file is absent.
func newLedger(cfg config.Config) (domain.LedgerGateway, []byte, error) {
	code, err := os.ReadFile(cfg.TokenWasmPath)

	switch cfg.LedgerDriver {
	case config.LedgerDriverRPC:
		if err != nil {
			return nil, nil, fmt.Errorf("read token contract %s: %w", cfg.TokenWasmPath, err)
		}
		client := rpc.NewClient(rpc.Config{URL: cfg.LedgerRPCURL, Timeout: cfg.LedgerCallTimeout})
		return client, code, nil
	default:
		if err != nil {
			logger.Warn("token contract not found, sandbox uses placeholder code", logger.Fields{"path": cfg.TokenWasmPath})
			code = sandbox.PlaceholderCode
		}
		return sandbox.New(domain.Identity(cfg.RootAccount), sandboxRootBalance), code, nil
	}
}

func newStore(ctx context.Context, cfg config.Config) (repo_interfaces.SwapIntentRepository, repo_interfaces.RateRepository, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("swap intents are kept in memory and will not survive a restart", nil)
		return memory.NewSwapIntentRepository(), memory.NewRateRepository(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := postgres.Open(connectCtx, cfg.DatabaseDSN, cfg.DatabasePool)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := postgres.RunMigrations(connectCtx, db); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed", nil)

	return postgres.NewSwapIntentRepository(db), postgres.NewRateRepository(db), closeDB(db), nil
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Error("close database", err, nil)
		}
	}
}
