package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ledger-api/config"
	"ledger-api/db"
	"ledger-api/handler"
	"ledger-api/logger"
	"ledger-api/messaging"
	"ledger-api/repository"
	"ledger-api/router"
	"ledger-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// App is the wired HTTP application.
type App struct {
	DB     *sql.DB
	Router http.Handler
}

// Dependencies are the external connections App is built on. Redis and Publisher are optional.
type Dependencies struct {
	DB        *sql.DB
	Redis     *redis.Client
	Publisher service.EventPublisher
}

// New wires repositories, services, handlers and the router. It fails when no
// shared secret is configured.
func New(cfg *config.Config, deps Dependencies) (*App, error) {
	gate, err := service.NewAuthGate(cfg.Auth.APIKey)
	if err != nil {
		return nil, err
	}

	accountRepo := repository.NewAccountRepository(deps.DB)
	transactionRepo := repository.NewTransactionRepository(deps.DB)

	ownerKey := service.ExactOwnerKey
	if cfg.Ledger.OwnerNameCaseInsensitive {
		ownerKey = service.CaseInsensitiveOwnerKey
	}
	accountOpts := []service.AccountServiceOption{service.WithOwnerKey(ownerKey)}
	var ledgerOpts []service.LedgerOption
	var idempotencyStore repository.IIdempotencyRepository

	if deps.Redis != nil {
		accountOpts = append(accountOpts, service.WithAccountCache(deps.Redis, cfg.Ledger.CacheTTL))
		ledgerOpts = append(ledgerOpts, service.WithLedgerCache(deps.Redis))
		idempotencyStore = repository.NewIdempotencyRepository(deps.Redis)
	}
	if deps.Publisher != nil {
		ledgerOpts = append(ledgerOpts, service.WithEventPublisher(deps.Publisher))
	}

	accountService := service.NewAccountService(accountRepo, accountOpts...)
	ledgerService := service.NewLedgerService(deps.DB, accountRepo, transactionRepo, ledgerOpts...)
	transactionService := service.NewTransactionService(accountRepo, transactionRepo)

	accountHandler := handler.NewAccountHandler(accountService, ledgerService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	toolHandler := handler.NewToolHandler(gate, accountService, ledgerService, transactionService)

	return &App{
		DB:     deps.DB,
		Router: router.NewRouter(gate, accountHandler, transactionHandler, toolHandler, idempotencyStore),
	}, nil
}

// Run loads configuration from configPath, connects to the backing services and
// serves until SIGINT or SIGTERM.
func Run(configPath string) error {
	if err := config.LoadConfig(configPath); err != nil {
		return err
	}
	cfg := config.AppConfig
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(&cfg)
	if err != nil {
		return fmt.Errorf("error connecting to the database: %w", err)
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(cfg.MigrateURL()); err != nil {
			return err
		}
	}

	deps := Dependencies{DB: database}

	if cfg.Redis.Enabled {
		redisClient, err := db.ConnectRedis(&cfg)
		if err != nil {
			return fmt.Errorf("error connecting to redis: %w", err)
		}
		defer redisClient.Close()
		deps.Redis = redisClient
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := messaging.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			logger.Log.WithError(err).Warn("RabbitMQ unavailable, transaction events disabled")
		} else {
			defer conn.Close()
			deps.Publisher = messaging.NewRabbitMQPublisher(conn.Channel, cfg.RabbitMQ.Exchange)
		}
	}

	a, err := New(&cfg, deps)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exited properly")
	return nil
}
