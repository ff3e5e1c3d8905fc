// Package customer registers account owners.
package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/validation"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, req models.CustomerCreateRequest) (*models.Customer, error)
	Get(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, page, size int) (*pagination.Page[*models.Customer], error)
}

type service struct {
	store repositories.Store
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{store: store, now: time.Now, log: log.Named("customer")}
}

func (s *service) Create(ctx context.Context, req models.CustomerCreateRequest) (*models.Customer, error) {
	req.FIN = strings.ToUpper(strings.TrimSpace(req.FIN))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	c := &models.Customer{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		BirthDate:    req.BirthDate,
		FIN:          req.FIN,
		Phone:        req.Phone,
		Email:        req.Email,
		RiskStatus:   models.RiskRegular,
		RegisteredAt: s.now(),
	}
	if err := s.store.Customers().Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateCustomer
		}
		return nil, apperrors.Internal(err)
	}

	s.log.Info("customer registered", zap.Uint("customer_id", c.ID))
	return c, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Customer, error) {
	c, err := s.store.Customers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrOwnerNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return c, nil
}

func (s *service) List(ctx context.Context, page, size int) (*pagination.Page[*models.Customer], error) {
	page, size = pagination.Normalize(page, size)
	items, total, err := s.store.Customers().List(ctx, size, pagination.Offset(page, size))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return pagination.NewPage(items, page, size, total), nil
}
