// Package main is the entry point for the bankcore API server.
// It loads configuration, opens the store, wires the services, starts the
// settlement scheduler and serves HTTP until interrupted.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankcore/internal/config"
	apperrors "bankcore/internal/errors"
	"bankcore/internal/handlers"
	"bankcore/internal/logger"
	"bankcore/internal/middleware"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/repositories/cache"
	"bankcore/internal/repositories/memory"
	"bankcore/internal/routes"
	"bankcore/internal/services/account"
	"bankcore/internal/services/auth"
	"bankcore/internal/services/card"
	"bankcore/internal/services/customer"
	"bankcore/internal/services/ledger"
	"bankcore/internal/services/risk"
	"bankcore/internal/services/settlement"
	"bankcore/internal/services/transfer"
	"bankcore/internal/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	version         = "1.0.0"
	reportCacheTTL  = 7 * 24 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:       "bankcore",
		ServiceVersion:    version,
		DeploymentEnv:     cfg.Env,
		CollectorEndpoint: cfg.OTelEndpoint,
		ExportInterval:    cfg.OTelExportInterval,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()
	metrics, err := transfer.NewOTelMetrics(tel.MeterProvider)
	if err != nil {
		return err
	}

	checks := map[string]handlers.HealthCheck{}

	store, closeStore, err := openStore(cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	locker, reports, closeRedis, err := openRedis(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeRedis()

	transferCfg := transfer.Config{
		Mode:                 transfer.Mode(cfg.TransferMode),
		ContainerMode:        cfg.ContainerMode,
		AllowSelfTransfer:    cfg.AllowSelfTransfer,
		BlockSuspectedOwners: cfg.BlockSuspectedOwners,
		Limits:               cfg.Limits,
		OperationTimeout:     cfg.OperationTimeout,
	}

	writer := ledger.NewWriter()
	riskService := risk.NewService(store, cfg.Limits, log)
	transferService := transfer.NewService(store, writer, riskService, transferCfg, log, metrics)
	customerService := customer.NewService(store, log)
	accountService := account.NewService(store, writer, cfg.Limits, log)
	cardService := card.NewService(store, writer, cfg.Limits, log)
	authService := auth.NewService(store, auth.Config{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.JWTTokenTTL,
		HashCost: cfg.BcryptCost,
	}, log)
	if err := bootstrapAdmin(ctx, authService, cfg, log); err != nil {
		return err
	}
	engine := settlement.NewEngine(
		store,
		transfer.NewValidator(transferCfg),
		transfer.NewMutator(cfg.Limits),
		riskService,
		locker,
		reports,
		settlement.Config{EntryTimeout: cfg.OperationTimeout},
		log,
	)

	scheduler, err := settlement.NewScheduler(cfg.SettlementTimezone, cfg.SettlementLockTTL, log)
	if err != nil {
		return err
	}
	if err := scheduler.Add("settlement", cfg.SettlementCron, engine.RunJob()); err != nil {
		return err
	}
	if err := scheduler.Add("expiry", cfg.ExpiryCron, expireJob(accountService, cardService, log)); err != nil {
		return err
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{AppName: "bankcore " + version})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use("/api/v1/transactions/transfer", rateLimit(30))
	app.Use("/api/v1/auth/login", rateLimit(10))

	routes.SetupRoutes(app, routes.Handlers{
		Health:      handlers.NewHealthHandler(version, checks),
		Transfer:    handlers.NewTransferHandler(transferService, log),
		Transaction: handlers.NewTransactionHandler(transferService),
		Customer:    handlers.NewCustomerHandler(customerService),
		Account:     handlers.NewAccountHandler(accountService, transferService),
		Card:        handlers.NewCardHandler(cardService, transferService),
		Settlement:  handlers.NewSettlementHandler(engine),
		Auth:        handlers.NewAuthHandler(authService, log),
		User:        handlers.NewUserHandler(authService),
	}, middleware.NewAuthMiddleware(cfg.JWTSecret, log))

	listenErr := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("port", cfg.Port),
			zap.String("storage", cfg.Storage),
			zap.String("transfer_mode", cfg.TransferMode))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		scheduler.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	return nil
}

// bootstrapAdmin creates the ADMIN_USERNAME login on first start so that a
// fresh deployment can sign in.
func bootstrapAdmin(ctx context.Context, users auth.Service, cfg config.Config, log *zap.Logger) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	_, err := users.CreateUser(ctx, models.UserCreateRequest{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
	}, models.RoleAdmin)
	switch {
	case errors.Is(err, apperrors.ErrDuplicateUser):
		return nil
	case err != nil:
		return err
	}
	log.Info("bootstrap admin created", zap.String("username", cfg.AdminUsername))
	return nil
}

// rateLimit allows limit requests per client IP per minute.
func rateLimit(limit int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, try again later",
				"code":  "RATE_LIMITED",
			})
		},
	})
}

func openStore(cfg config.Config, log *zap.Logger, checks map[string]handlers.HealthCheck) (repositories.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	case config.StoragePostgres:
		db, err := repositories.OpenPostgres(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		checks["database"] = sqlDB.PingContext
		return repositories.NewStore(db), func() {
			if err := repositories.Close(db); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, errors.New("unknown STORAGE driver: " + cfg.Storage)
}

// openRedis returns the settlement run lock and report cache. Without Redis
// both live in process, which is only safe for a single instance.
func openRedis(ctx context.Context, cfg config.Config, log *zap.Logger, checks map[string]handlers.HealthCheck) (cache.Locker, cache.Cache, func(), error) {
	if !cfg.RedisEnabled {
		log.Warn("redis disabled; settlement lock and report cache are process-local")
		return cache.NewLocalLocker(), cache.NewLocalCache(reportCacheTTL), func() {}, nil
	}

	client := cache.NewRedisClient(&cache.RedisConfig{
		Host:         cfg.RedisHost,
		Port:         cfg.RedisPort,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})
	if err := cache.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, nil, err
	}
	checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, client) }
	log.Info("redis connected", zap.String("host", cfg.RedisHost))

	return cache.NewRedisLockManager(client, cfg.SettlementLockTTL, log),
		cache.NewBreakerCache("settlement-reports", cache.NewCacheService(client, reportCacheTTL), cache.DefaultBreakerConfig(), log),
		closeClient(client, log),
		nil
}

func closeClient(client *redis.Client, log *zap.Logger) func() {
	return func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}
}

type expirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

// expireJob moves accounts and cards past their expiry date to EXPIRED.
func expireJob(accounts, cards expirer, log *zap.Logger) settlement.Job {
	return func(ctx context.Context) error {
		now := time.Now()
		expiredAccounts, err := accounts.ExpireOverdue(ctx, now)
		if err != nil {
			return err
		}
		expiredCards, err := cards.ExpireOverdue(ctx, now)
		if err != nil {
			return err
		}
		log.Info("expired overdue containers",
			zap.Int("accounts", expiredAccounts),
			zap.Int("cards", expiredCards))
		return nil
	}
}
