// Command admin_seed creates an admin login and a demo customer with two
// active, funded accounts and a login of its own, then prints bearer tokens
// for both.
package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankcore/internal/config"
	apperrors "bankcore/internal/errors"
	"bankcore/internal/logger"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/services/account"
	"bankcore/internal/services/auth"
	"bankcore/internal/services/customer"
	"bankcore/internal/services/ledger"
	"bankcore/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	tokenTTL     = 24 * time.Hour
	seedAccounts = 2
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := repositories.OpenPostgres(cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	store := repositories.NewStore(db)

	ctx := context.Background()
	writer := ledger.NewWriter()
	customers := customer.NewService(store, log)
	accounts := account.NewService(store, writer, cfg.Limits, log)
	users := auth.NewService(store, auth.Config{Secret: cfg.JWTSecret, TokenTTL: tokenTTL, HashCost: cfg.BcryptCost}, log)

	ensureUser(ctx, users, log, models.UserCreateRequest{
		Username: config.GetEnv("SEED_ADMIN_USERNAME", "admin"),
		Password: config.GetEnv("SEED_ADMIN_PASSWORD", "admin-password"),
	}, models.RoleAdmin)

	deposit := config.GetDecimalEnv("SEED_DEPOSIT", decimal.NewFromInt(1000))
	demo, err := customers.Create(ctx, models.CustomerCreateRequest{
		FirstName: config.GetEnv("SEED_FIRST_NAME", "Demo"),
		LastName:  config.GetEnv("SEED_LAST_NAME", "Customer"),
		BirthDate: time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC),
		FIN:       config.GetEnv("SEED_FIN", "DEMO001"),
		Phone:     config.GetEnv("SEED_PHONE", "+10000000001"),
		Email:     config.GetEnv("SEED_EMAIL", "demo@bankcore.local"),
	})
	switch {
	case errors.Is(err, apperrors.ErrDuplicateCustomer):
		log.Info("demo customer already exists, skipping accounts")
	case err != nil:
		log.Fatal("failed to create demo customer", zap.Error(err))
	default:
		for i := 0; i < seedAccounts; i++ {
			number, err := openFundedAccount(ctx, accounts, demo.ID, deposit)
			if err != nil {
				log.Fatal("failed to seed account", zap.Error(err))
			}
			log.Info("seeded account",
				zap.Uint("customer_id", demo.ID),
				zap.String("account", number),
				zap.String("balance", deposit.StringFixed(2)))
		}

		ensureUser(ctx, users, log, models.UserCreateRequest{
			Username:   config.GetEnv("SEED_USERNAME", "demo"),
			Password:   config.GetEnv("SEED_PASSWORD", "demo-password"),
			CustomerID: demo.ID,
		}, models.RoleUser)

		userToken, err := utils.GenerateToken(cfg.JWTSecret, demo.ID, models.RoleUser, tokenTTL)
		if err != nil {
			log.Fatal("failed to sign customer token", zap.Error(err))
		}
		fmt.Printf("customer %d token: %s\n", demo.ID, userToken)
	}

	adminToken, err := utils.GenerateToken(cfg.JWTSecret, 0, models.RoleAdmin, tokenTTL)
	if err != nil {
		log.Fatal("failed to sign admin token", zap.Error(err))
	}
	fmt.Printf("admin token: %s\n", adminToken)
}

// ensureUser creates a login unless one with the same username exists.
func ensureUser(ctx context.Context, users auth.Service, log *zap.Logger, req models.UserCreateRequest, role string) {
	_, err := users.CreateUser(ctx, req, role)
	switch {
	case errors.Is(err, apperrors.ErrDuplicateUser):
		log.Info("user already exists", zap.String("username", req.Username))
	case err != nil:
		log.Fatal("failed to create user", zap.String("username", req.Username), zap.Error(err))
	default:
		log.Info("seeded user", zap.String("username", req.Username), zap.String("role", role))
	}
}

func openFundedAccount(ctx context.Context, accounts account.Service, customerID uint, amount decimal.Decimal) (string, error) {
	created, err := accounts.Create(ctx, customerID)
	if err != nil {
		return "", err
	}
	if _, err := accounts.Activate(ctx, created.Number); err != nil {
		return "", err
	}
	if amount.IsPositive() {
		if _, err := accounts.Deposit(ctx, created.Number, amount); err != nil {
			return "", err
		}
	}
	return created.Number, nil
}
