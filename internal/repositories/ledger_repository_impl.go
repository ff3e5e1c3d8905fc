package repositories

import (
	"context"
	"time"

	"bankcore/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return translate(err, "failed to create ledger entry")
	}
	return nil
}

func (r *ledgerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err, "failed to check ledger entry")
	}
	return count > 0, nil
}

func (r *ledgerRepository) GetByID(ctx context.Context, id string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, translate(err, "failed to get ledger entry")
	}
	return &entry, nil
}

func (r *ledgerRepository) FindByStatus(ctx context.Context, status models.EntryStatus) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("date ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "failed to find ledger entries")
	}
	return entries, nil
}

func (r *ledgerRepository) FindAll(ctx context.Context, filter models.LedgerFilter, limit, offset int) ([]*models.LedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "failed to count ledger entries")
	}

	var entries []*models.LedgerEntry
	if err := q.Order("date DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, translate(err, "failed to list ledger entries")
	}
	return entries, total, nil
}

func (r *ledgerRepository) MarkTerminal(ctx context.Context, id string, status models.EntryStatus, reason string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("id = ? AND status = ?", id, models.EntryPending).
		Updates(map[string]interface{}{
			"status":         status,
			"failure_reason": reason,
			"settled_at":     at,
		})
	if result.Error != nil {
		return false, translate(result.Error, "failed to settle ledger entry")
	}
	return result.RowsAffected == 1, nil
}

func (r *ledgerRepository) SumTransferred(ctx context.Context, customerID uint, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("customer_id = ? AND kind = ? AND status = ? AND date BETWEEN ? AND ?",
			customerID, models.KindTransfer, models.EntryCompleted, from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, translate(err, "failed to sum transfers")
	}
	return result.Total, nil
}
