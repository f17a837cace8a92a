package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/splitpot/splitpot/internal/adapter/http"
	"github.com/splitpot/splitpot/internal/adapter/http/handler"
	"github.com/splitpot/splitpot/internal/adapter/repository/memory"
	postgresRepo "github.com/splitpot/splitpot/internal/adapter/repository/postgres"
	redisRepo "github.com/splitpot/splitpot/internal/adapter/repository/redis"
	"github.com/splitpot/splitpot/internal/infrastructure/config"
	"github.com/splitpot/splitpot/internal/infrastructure/logger"
	"github.com/splitpot/splitpot/internal/infrastructure/notifier"
	"github.com/splitpot/splitpot/internal/infrastructure/postgres"
	"github.com/splitpot/splitpot/internal/infrastructure/redis"
	"github.com/splitpot/splitpot/internal/resultcache"
	"github.com/splitpot/splitpot/internal/usecase"

	goredis "github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Result cache backend. Redis is only dialed when selected; the memory
	// backend needs no external service.
	var (
		backend     resultcache.Backend
		redisClient *goredis.Client
	)
	switch cfg.CacheBackend {
	case "redis":
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
		backend = redisRepo.NewCache(redisClient)
	default:
		memCache := memory.NewCache(cfg.CacheSweepInterval)
		defer memCache.Close()
		backend = memCache
	}
	cache := resultcache.New(backend, appLogger)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	groupRepo := postgresRepo.NewGroupRepository(pool)
	expenseRepo := postgresRepo.NewExpenseRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	var idempotencyStore usecase.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	// Change event fan-out
	broker := notifier.NewBroker(1024, slog.Default())

	// Use cases
	groupUC := usecase.NewGroupUseCase(groupRepo, cache, broker, idGen, appLogger)
	expenseUC := usecase.NewExpenseUseCase(expenseRepo, settlementRepo, groupRepo, txManager, cache, broker, idGen, appLogger)
	settlementUC := usecase.NewSettlementUseCase(settlementRepo, groupRepo, cache, broker, idGen, appLogger)
	calcUC := usecase.NewCalculationUseCase(expenseRepo, settlementRepo, cache, appLogger)

	// Cache invalidation worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	invalidator := notifier.NewInvalidator(notifier.Config{
		Broker:         broker,
		Cache:          cache,
		Calc:           calcUC,
		EagerRecompute: cfg.EagerRecompute,
		Logger:         slog.Default(),
	})
	go func() {
		if err := invalidator.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("cache invalidator stopped")
		}
	}()

	// Handlers
	groupHandler := handler.NewGroupHandler(groupUC)
	expenseHandler := handler.NewExpenseHandler(expenseUC)
	settlementHandler := handler.NewSettlementHandler(settlementUC)
	balanceHandler := handler.NewBalanceHandler(calcUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		GroupHandler:      groupHandler,
		ExpenseHandler:    expenseHandler,
		SettlementHandler: settlementHandler,
		BalanceHandler:    balanceHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		Logger:            appLogger,
		RateLimit:         cfg.HTTPRateLimit,
		RateBurst:         cfg.HTTPRateBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
