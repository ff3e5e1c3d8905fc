package repositories

import (
	"context"
	"time"

	"bankcore/internal/models"

	"gorm.io/gorm"
)

type cardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return translate(err, "failed to create card")
	}
	return nil
}

func (r *cardRepository) GetByNumber(ctx context.Context, number string) (*models.Card, error) {
	var card models.Card
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&card).Error; err != nil {
		return nil, translate(err, "failed to get card")
	}
	return &card, nil
}

func (r *cardRepository) Update(ctx context.Context, card *models.Card) error {
	if err := r.db.WithContext(ctx).Save(card).Error; err != nil {
		return translate(err, "failed to update card")
	}
	return nil
}

func (r *cardRepository) Exists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Card{}).Where("number = ?", number).Count(&count).Error; err != nil {
		return false, translate(err, "failed to check card")
	}
	return count > 0, nil
}

func (r *cardRepository) CountByAccount(ctx context.Context, accountNumber string, statuses ...models.ContainerStatus) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Card{}).Where("account_number = ?", accountNumber)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, translate(err, "failed to count cards")
	}
	return count, nil
}

func (r *cardRepository) ListByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]*models.Card, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Card{}).Where("account_number = ?", accountNumber)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "failed to count cards")
	}

	var cards []*models.Card
	if err := q.Order("issued_at ASC, number ASC").Limit(limit).Offset(offset).Find(&cards).Error; err != nil {
		return nil, 0, translate(err, "failed to list cards")
	}
	return cards, total, nil
}

func (r *cardRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.WithContext(ctx).
		Where("status <> ? AND expires_at <= ?", models.StatusExpired, now).
		Order("number ASC").
		Find(&cards).Error
	if err != nil {
		return nil, translate(err, "failed to list overdue cards")
	}
	return cards, nil
}
