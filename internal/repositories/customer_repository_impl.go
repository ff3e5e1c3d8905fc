package repositories

import (
	"context"

	"bankcore/internal/models"

	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return translate(err, "failed to create customer")
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err, "failed to get customer")
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]*models.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "failed to count customers")
	}

	var customers []*models.Customer
	if err := r.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return nil, 0, translate(err, "failed to list customers")
	}
	return customers, total, nil
}

func (r *customerRepository) UpdateRiskStatus(ctx context.Context, id uint, status models.RiskStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Update("risk_status", status)
	if result.Error != nil {
		return translate(result.Error, "failed to update risk status")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
