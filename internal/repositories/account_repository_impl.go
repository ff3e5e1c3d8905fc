package repositories

import (
	"context"
	"time"

	"bankcore/internal/models"

	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return translate(err, "failed to create account")
	}
	return nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, number string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&account).Error; err != nil {
		return nil, translate(err, "failed to get account")
	}
	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.Account) error {
	result := r.db.WithContext(ctx).Save(account)
	if result.Error != nil {
		return translate(result.Error, "failed to update account")
	}
	return nil
}

func (r *accountRepository) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, translate(err, "failed to check account")
	}
	return count > 0, nil
}

func (r *accountRepository) CountByCustomer(ctx context.Context, customerID uint, statuses ...models.ContainerStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Account{}).Where("customer_id = ?", customerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, translate(err, "failed to count accounts")
	}
	return count, nil
}

func (r *accountRepository) ListByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]*models.Account, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Account{}).Where("customer_id = ?", customerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "failed to count accounts")
	}

	var accounts []*models.Account
	if err := q.Order("opened_at ASC, number ASC").Limit(limit).Offset(offset).Find(&accounts).Error; err != nil {
		return nil, 0, translate(err, "failed to list accounts")
	}
	return accounts, total, nil
}

func (r *accountRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Where("status <> ? AND expires_at <= ?", models.StatusExpired, now).
		Order("number ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, translate(err, "failed to list overdue accounts")
	}
	return accounts, nil
}
