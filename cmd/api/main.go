package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sportsbook-ledger/config"
	"sportsbook-ledger/internal/adapter/events"
	httpHandler "sportsbook-ledger/internal/adapter/http/handler"
	"sportsbook-ledger/internal/adapter/oddsfeed"
	"sportsbook-ledger/internal/adapter/profile"
	pgStorage "sportsbook-ledger/internal/adapter/storage/postgres"
	redisStorage "sportsbook-ledger/internal/adapter/storage/redis"
	"sportsbook-ledger/internal/core/ports"
	"sportsbook-ledger/internal/service"
	"sportsbook-ledger/pkg/logger"
	"sportsbook-ledger/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("sportsbook-ledger", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Sportsbook Ledger")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	betRepo := pgStorage.NewBetRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	oddsCache := redisStorage.NewOddsCache(rdb)

	// Initialize external collaborators
	oddsSource := oddsfeed.NewClient(
		cfg.OddsFeed.BaseURL,
		cfg.OddsFeed.APIKey,
		&http.Client{Timeout: cfg.OddsFeed.Timeout},
		oddsCache,
		cfg.OddsFeed.CacheTTL,
		log,
	)
	profileSource := profile.NewClient(
		cfg.ProfileSource.BaseURL,
		cfg.ProfileSource.APIKey,
		&http.Client{Timeout: cfg.ProfileSource.Timeout},
	)

	// Bet lifecycle event publishing (optional)
	var publisher ports.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.BetPlacedTopic, cfg.Kafka.BetSettledTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka event publishing enabled")
	}

	// Initialize services
	tokenVerifier := service.NewJWTTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	ledgerSvc := service.NewLedgerService(accountRepo, txRepo, idempotencyCache, transactor, log)
	betSvc := service.NewBetService(
		betRepo,
		ledgerSvc,
		oddsSource,
		profileSource,
		service.NewOddsValidator(),
		transactor,
		publisher,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Metrics listener (optional)
	if cfg.Metrics.Enabled {
		metricsSrv := metrics.StartServer(strconv.Itoa(cfg.Metrics.Port), func(ctx context.Context) error {
			return pgHealth.Ping(ctx)
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
		log.Info().Int("port", cfg.Metrics.Port).Msg("Metrics listener started")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		LedgerSvc:      ledgerSvc,
		BetSvc:         betSvc,
		ProfileSource:  profileSource,
		TokenVerifier:  tokenVerifier,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
