// Package auth manages login principals and issues bearer tokens for them.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "bankcore/internal/errors"
	"bankcore/internal/models"
	"bankcore/internal/repositories"
	"bankcore/internal/utils"
	"bankcore/internal/utils/pagination"
	"bankcore/internal/utils/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

type Config struct {
	Secret   string
	TokenTTL time.Duration
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type Service interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// CreateUser registers a login with the given role. Customer logins must
	// name an existing customer.
	CreateUser(ctx context.Context, req models.UserCreateRequest, role string) (*models.User, error)
	Activate(ctx context.Context, username string) (*models.User, error)
	Disable(ctx context.Context, username string) (*models.User, error)
	ChangePassword(ctx context.Context, req models.PasswordChangeRequest) error
	List(ctx context.Context, page, size int) (*pagination.Page[*models.User], error)
}

type service struct {
	store repositories.Store
	cfg   Config
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store repositories.Store, cfg Config, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{store: store, cfg: cfg, now: time.Now, log: log.Named("auth")}
}

func (s *service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Info("login failed: unknown user", zap.String("username", username))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login failed: incorrect password", zap.Uint("user_id", user.ID))
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.log.Info("login refused: user disabled", zap.Uint("user_id", user.ID))
		return nil, apperrors.ErrUserDisabled
	}

	issued := s.now()
	token, err := utils.GenerateToken(s.cfg.Secret, user.CustomerID, user.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &LoginResult{Token: token, ExpiresAt: issued.Add(s.cfg.TokenTTL), User: user}, nil
}

func (s *service) CreateUser(ctx context.Context, req models.UserCreateRequest, role string) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin:
		req.CustomerID = 0
	case models.RoleUser:
		if req.CustomerID == 0 {
			return nil, apperrors.ErrInvalidRequest.Withf("customer_id is required for customer logins")
		}
		if _, err := s.store.Customers().GetByID(ctx, req.CustomerID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.ErrOwnerNotFound
			}
			return nil, apperrors.Internal(err)
		}
	default:
		return nil, apperrors.ErrInvalidRequest.Withf("unknown role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.HashCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		CustomerID:   req.CustomerID,
		Status:       models.UserActive,
		RegisteredAt: s.now(),
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, apperrors.Internal(err)
	}

	s.log.Info("user created", zap.String("username", user.Username), zap.String("role", role))
	return user, nil
}

func (s *service) Activate(ctx context.Context, username string) (*models.User, error) {
	return s.setStatus(ctx, username, models.UserActive)
}

func (s *service) Disable(ctx context.Context, username string) (*models.User, error) {
	return s.setStatus(ctx, username, models.UserDisabled)
}

func (s *service) setStatus(ctx context.Context, username string, status models.UserStatus) (*models.User, error) {
	user, err := s.get(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return nil, apperrors.ErrInvalidStatusTransition.Withf("user %s is already %s", user.Username, status)
	}
	user.Status = status
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.log.Info("user status changed", zap.String("username", user.Username), zap.String("status", string(status)))
	return user, nil
}

func (s *service) ChangePassword(ctx context.Context, req models.PasswordChangeRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	user, err := s.get(ctx, req.Username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		s.log.Info("password change refused: incorrect old password", zap.Uint("user_id", user.ID))
		return apperrors.ErrInvalidCredentials
	}
	if req.NewPassword == req.OldPassword {
		return apperrors.ErrPasswordReused
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.HashCost)
	if err != nil {
		return apperrors.Internal(err)
	}
	user.PasswordHash = string(hash)
	if err := s.store.Users().Update(ctx, user); err != nil {
		return apperrors.Internal(err)
	}
	s.log.Info("password changed", zap.Uint("user_id", user.ID))
	return nil
}

func (s *service) List(ctx context.Context, page, size int) (*pagination.Page[*models.User], error) {
	page, size = pagination.Normalize(page, size)
	items, total, err := s.store.Users().List(ctx, size, pagination.Offset(page, size))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return pagination.NewPage(items, page, size, total), nil
}

func (s *service) get(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound.Withf("user %s not found", username)
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
