// Package risk maintains the owner-level SUSPECTED flag from rolling transfer volume.
package risk

import (
	"context"
	"errors"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"

	"go.uber.org/zap"
)

type Service struct {
	store  repositories.Store
	limits models.LimitPolicy
	now    func() time.Time
	log    *zap.Logger
}

func NewService(store repositories.Store, limits models.LimitPolicy, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, limits: limits, now: time.Now, log: log.Named("risk")}
}

// WithClock overrides the time source used for the trailing window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Reassess sums the customer's COMPLETED transfers over the trailing month
// and flags the customer SUSPECTED once the total exceeds the monthly limit.
// The flag is never cleared here.
func (s *Service) Reassess(ctx context.Context, customerID uint) (models.RiskStatus, error) {
	customer, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperrors.ErrOwnerNotFound
		}
		return "", apperrors.Internal(err)
	}
	if customer.IsSuspected() {
		return models.RiskSuspected, nil
	}

	to := s.now()
	from := to.AddDate(0, -1, 0)
	total, err := s.store.Ledger().SumTransferred(ctx, customerID, from, to)
	if err != nil {
		return "", apperrors.Internal(err)
	}
	if !total.GreaterThan(s.limits.MonthlyTransferLimit) {
		return customer.RiskStatus, nil
	}

	if err := s.store.Customers().UpdateRiskStatus(ctx, customerID, models.RiskSuspected); err != nil {
		return "", apperrors.Internal(err)
	}
	s.log.Warn("monthly transfer limit exceeded",
		zap.Uint("customer_id", customerID),
		zap.String("total", total.String()),
		zap.String("limit", s.limits.MonthlyTransferLimit.String()),
	)
	return models.RiskSuspected, nil
}

// Status returns the current risk status without recomputing it.
func (s *Service) Status(ctx context.Context, customerID uint) (models.RiskStatus, error) {
	customer, err := s.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperrors.ErrOwnerNotFound
		}
		return "", apperrors.Internal(err)
	}
	return customer.RiskStatus, nil
}
