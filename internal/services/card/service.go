// Package card issues and manages 16-digit cards drawing on an account balance.
package card

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
	numberDigits      = 16
	maxNumberAttempts = 10
)

// View is a card together with the balance of its account.
type View struct {
	*models.Card
	Balance decimal.Decimal `json:"balance"`
}

type DepositResult struct {
	Card  View                   `json:"card"`
	Entry models.LedgerEntryView `json:"transaction"`
}

type Service interface {
	Create(ctx context.Context, accountNumber string) (*View, error)
	Activate(ctx context.Context, number string) (*View, error)
	Deposit(ctx context.Context, number string, amount decimal.Decimal) (*DepositResult, error)
	ListByAccount(ctx context.Context, accountNumber string, page, size int) (*pagination.Page[View], error)
	// ExpireOverdue moves every card past its expiry date to EXPIRED.
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
		log:     log.Named("card"),
	}
}

func (s *service) Create(ctx context.Context, accountNumber string) (*View, error) {
	var view *View
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		locked, err := tx.LockAccounts(ctx, accountNumber)
		if err != nil {
			return accountNotFound(err, accountNumber)
		}
		acc := locked[accountNumber]
		if acc.Status != models.StatusNew && acc.Status != models.StatusActive {
			return apperrors.ErrContainerNotActive.Withf("cards cannot be issued on %s account %s", acc.Status, accountNumber)
		}

		open, err := tx.Cards().CountByAccount(ctx, accountNumber, models.StatusNew, models.StatusActive)
		if err != nil {
			return apperrors.Internal(err)
		}
		if open >= int64(s.limits.MaxCardsPerAccount) {
			return apperrors.ErrCardLimitReached.Withf("account %s already has %d open cards", accountNumber, open)
		}

		number, err := s.uniqueNumber(ctx, tx)
		if err != nil {
			return err
		}

		now := s.now()
		c := &models.Card{
			Number:        number,
			AccountNumber: accountNumber,
			Status:        models.StatusNew,
			IssuedAt:      now,
			ExpiresAt:     now.AddDate(models.CardLifetimeYears, 0, 0),
		}
		if err := tx.Cards().Create(ctx, c); err != nil {
			return apperrors.Internal(err)
		}
		view = &View{Card: c, Balance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("card issued", zap.String("account_number", accountNumber))
	return view, nil
}

// Activate moves a NEW card to ACTIVE and restarts its lifetime from now.
func (s *service) Activate(ctx context.Context, number string) (*View, error) {
	var view *View
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		c, err := tx.Cards().GetByNumber(ctx, number)
		if err != nil {
			return cardNotFound(err)
		}
		if c.Status != models.StatusNew {
			return apperrors.ErrInvalidStatusTransition.Withf("card is %s; only NEW cards can be activated", c.Status)
		}
		c.Status = models.StatusActive
		c.ExpiresAt = s.now().AddDate(models.CardLifetimeYears, 0, 0)
		if err := tx.Cards().Update(ctx, c); err != nil {
			return apperrors.Internal(err)
		}

		acc, err := tx.Accounts().GetByNumber(ctx, c.AccountNumber)
		if err != nil {
			return accountNotFound(err, c.AccountNumber)
		}
		view = &View{Card: c, Balance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("card activated", zap.String("account_number", view.AccountNumber))
	return view, nil
}

// Deposit credits the card's account. Both the card and the account must be ACTIVE.
func (s *service) Deposit(ctx context.Context, number string, amount decimal.Decimal) (*DepositResult, error) {
	var result DepositResult
	err := s.store.ExecuteInTransaction(ctx, func(tx repositories.Store) error {
		c, err := tx.Cards().GetByNumber(ctx, number)
		if err != nil {
			return cardNotFound(err)
		}
		if !c.IsActive() {
			return apperrors.ErrContainerNotActive.Withf("card is %s", c.Status)
		}

		acc, err := s.mutator.Credit(ctx, tx, c.AccountNumber, amount)
		if err != nil {
			return err
		}
		entry, err := s.writer.Record(ctx, tx, ledger.Record{
			CustomerID:  acc.CustomerID,
			Source:      models.SourceCardDeposit,
			Destination: acc.Number,
			Amount:      amount,
			Status:      models.EntryCompleted,
			Kind:        models.KindDeposit,
		})
		if err != nil {
			return err
		}
		result = DepositResult{Card: View{Card: c, Balance: acc.Balance}, Entry: entry.View()}
		return nil
	})
	if err != nil {
		return nil, apperrors.AsDomain(err)
	}

	s.log.Info("card deposit",
		zap.String("account_number", result.Card.AccountNumber),
		zap.String("amount", amount.String()),
		zap.String("transaction_id", result.Entry.TransactionID),
	)
	return &result, nil
}

// ListByAccount returns an empty page for an unknown account.
func (s *service) ListByAccount(ctx context.Context, accountNumber string, page, size int) (*pagination.Page[View], error) {
	page, size = pagination.Normalize(page, size)

	acc, err := s.store.Accounts().GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return pagination.NewPage([]View{}, page, size, 0), nil
		}
		return nil, apperrors.Internal(err)
	}

	cards, total, err := s.store.Cards().ListByAccount(ctx, accountNumber, size, pagination.Offset(page, size))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	views := make([]View, 0, len(cards))
	for _, c := range cards {
		views = append(views, View{Card: c, Balance: acc.Balance})
	}
	return pagination.NewPage(views, page, size, total), nil
}

func (s *service) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.store.Cards().ListOverdue(ctx, now)
	if err != nil {
		return 0, apperrors.Internal(err)
	}

	expired := 0
	for _, c := range overdue {
		c.Status = models.StatusExpired
		if err := s.store.Cards().Update(ctx, c); err != nil {
			return expired, apperrors.Internal(err)
		}
		expired++
	}

	if expired > 0 {
		s.log.Info("cards expired", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *service) uniqueNumber(ctx context.Context, tx repositories.Store) (string, error) {
	for i := 0; i < maxNumberAttempts; i++ {
		n, err := utils.RandomDigits(numberDigits)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		taken, err := tx.Cards().Exists(ctx, n)
		if err != nil {
			return "", apperrors.Internal(err)
		}
		if !taken {
			return n, nil
		}
	}
	return "", apperrors.ErrIDAllocation.Withf("could not allocate a card number")
}

func cardNotFound(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrContainerNotFound.Withf("card not found")
	}
	return apperrors.Internal(err)
}

func accountNotFound(err error, number string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.ErrContainerNotFound.Withf("account %s not found", number)
	}
	return apperrors.Internal(err)
}
