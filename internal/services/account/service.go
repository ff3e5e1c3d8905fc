// Package account opens, activates, funds and expires 20-digit accounts.
package account

import (
	"context"
	"errors"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/services/ledger"
	"bankcore/internal/services/transfer"
	"bankcore/internal/utils"
	"bankcore/internal/utils/pagination"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	numberDigits      = 20
	maxNumberAttempts = 10
)

// DepositResult is the credited account together with its ledger entry.
type DepositResult struct {
	Account *models.Account        `json:"account"`
	Entry   models.LedgerEntryView `json:"transaction"`
}

type Service interface {
	Create(ctx context.Context, customerID uint) (*models.Account, error)
	Get(ctx context.Context, number string) (*models.Account, error)
	Activate(ctx context.Context, number string) (*models.Account, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (*DepositResult, error)
	ListByCustomer(ctx context.Context, customerID uint, page, size int) (*pagination.Page[*models.Account], error)
	// ExpireOverdue moves every account past its expiry date to EXPIRED.
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
}

type service struct {
	store   repositories.Store
	mutator *transfer.Mutator
	writer  *ledger.Writer
	limits  models.LimitPolicy
	now     func() time.Time
	log     *zap.Logger
}

func NewService(store repositories.Store, writer *ledger.Writer, limits models.LimitPolicy, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if writer == nil {
		writer = ledger.NewWriter()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{
		store:   store,
		mutator: transfer.NewMutator(limits),
		writer:  writer,
		limits:  limits,
		now:     time.Now,
		log:     log.Named("account"),
	}
}

func (s *service) Create(ctx context.Context, customerID uint) (*models.Account, error) {
	var acc *models.Account
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Customers().GetByID(ctx, customerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.ErrOwnerNotFound
			}
			return apperrors.Internal(err)
		}

		open, err := tx.Accounts().CountByCustomer(ctx, customerID, models.StatusNew, models.StatusActive)
		if err != nil {
			return apperrors.Internal(err)
		}
		if open >= int64(s.limits.MaxAccountsPerOwner) {
			return apperrors.ErrAccountLimitReached.Withf("customer %d already has %d open accounts", customerID, open)
		}

		number, err := uniqueNumber(ctx, tx.Accounts().Exists)
		if err != nil {
			return err
		}

		now := s.now()
		acc = &models.Account{
			Number:     number,
			CustomerID: customerID,
			Balance:    decimal.Zero,
			Status:     models.StatusNew,
			OpenedAt:   now,
			ExpiresAt:  now.AddDate(models.AccountLifetimeYears, 0, 0),
		}
		if err := tx.Accounts().Create(ctx, acc); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("account opened", zap.String("account_number", acc.Number), zap.Uint("customer_id", customerID))
	return acc, nil
}

func (s *service) Get(ctx context.Context, number string) (*models.Account, error) {
	acc, err := s.store.Accounts().GetByNumber(ctx, number)
	if err != nil {
		return nil, notFound(err, number)
	}
	return acc, nil
}

func (s *service) Activate(ctx context.Context, number string) (*models.Account, error) {
	var acc *models.Account
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.LockAccounts(ctx, number)
		if err != nil {
			return notFound(err, number)
		}
		acc = locked[number]
		if acc.Status != models.StatusNew {
			return apperrors.ErrInvalidStatusTransition.Withf("account %s is %s; only NEW accounts can be activated", number, acc.Status)
		}
		acc.Status = models.StatusActive
		if err := tx.Accounts().Update(ctx, acc); err != nil {
			return apperrors.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("account activated", zap.String("account_number", number))
	return acc, nil
}

func (s *service) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*DepositResult, error) {
	var result DepositResult
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		acc, err := s.mutator.Credit(ctx, tx, number, amount)
		if err != nil {
			return err
		}
		entry, err := s.writer.Record(ctx, tx, ledger.Record{
			CustomerID:  acc.CustomerID,
			Source:      models.SourceAccountDeposit,
			Destination: acc.Number,
			Amount:      amount,
			Status:      models.EntryCompleted,
			Kind:        models.KindDeposit,
		})
		if err != nil {
			return err
		}
		result = DepositResult{Account: acc, Entry: entry.View()}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("account deposit",
		zap.String("account_number", number),
		zap.String("amount", amount.String()),
		zap.String("transaction_id", result.Entry.TransactionID),
	)
	return &result, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uint, page, size int) (*pagination.Page[*models.Account], error) {
	page, size = pagination.Normalize(page, size)
	items, total, err := s.store.Accounts().ListByCustomer(ctx, customerID, size, pagination.Offset(page, size))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return pagination.NewPage(items, page, size, total), nil
}

func (s *service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.store.Accounts().ListOverdue(ctx, now)
	if err != nil {
		return 0, apperrors.Internal(err)
	}

	expired := 0
	for _, acc := range overdue {
		changed := false
		err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
			locked, err := tx.LockAccounts(ctx, acc.Number)
			if err != nil {
				return err
			}
			a := locked[acc.Number]
			if a.Status == models.StatusExpired || a.ExpiresAt.After(now) {
				return nil
			}
			a.Status = models.StatusExpired
			changed = true
			return tx.Accounts().Update(ctx, a)
		})
		if err != nil {
			return expired, apperrors.Internal(err)
		}
		if changed {
			expired++
		}
	}

	if expired > 0 {
		s.log.Info("accounts expired", zap.Int("count", expired))
	}
	return expired, nil
}

func uniqueNumber(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		n, err := utils.RandomDigits(numberDigits)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		taken, err := exists(ctx, n)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		if !taken {
			return n, nil
		}
	}
	return "", apperrors.ErrIDAllocation.Withf("could not allocate an account number")
}

func notFound(err error, number string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrContainerNotFound.Withf("account %s not found", number)
	}
	return apperrors.Internal(err)
}
