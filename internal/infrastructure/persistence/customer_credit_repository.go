package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/infrastructure/persistence/models"
)

// GormCustomerCreditRepository implements finance.CustomerCreditRepository using GORM
type GormCustomerCreditRepository struct {
	db *gorm.DB
}

// NewGormCustomerCreditRepository creates a new GormCustomerCreditRepository
func NewGormCustomerCreditRepository(db *gorm.DB) *GormCustomerCreditRepository {
	return &GormCustomerCreditRepository{db: db}
}

func (r *GormCustomerCreditRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a credit record by ID
func (r *GormCustomerCreditRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerCredit, error) {
	var model models.CustomerCreditModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer finds the credit record of a customer
func (r *GormCustomerCreditRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerCredit, error) {
	var model models.CustomerCreditModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerForUpdate locks the credit row for the surrounding transaction
func (r *GormCustomerCreditRepository) FindByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerCredit, error) {
	var model models.CustomerCreditModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds credit records for a tenant with filtering and pagination
func (r *GormCustomerCreditRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CustomerCreditFilter) ([]finance.CustomerCredit, int64, error) {
	query := r.conn(ctx).Model(&models.CustomerCreditModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.RiskLevel != nil {
		query = query.Where("risk_level = ?", *filter.RiskLevel)
	}
	if filter.Search != "" {
		query = query.Where("customer_name ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filter.OrderBy, filter.OrderDir, CustomerCreditSortFields)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var creditModels []models.CustomerCreditModel
	if err := query.Find(&creditModels).Error; err != nil {
		return nil, 0, err
	}

	credits := make([]finance.CustomerCredit, len(creditModels))
	for i := range creditModels {
		credits[i] = *creditModels[i].ToDomain()
	}
	return credits, total, nil
}

// Save inserts a new credit record.
// Concurrent provisioning for the same customer is absorbed by the unique
// index on (tenant_id, customer_id): the losing insert is dropped.
func (r *GormCustomerCreditRepository) Save(ctx context.Context, credit *finance.CustomerCredit) error {
	model := models.CustomerCreditModelFromDomain(credit)
	return r.conn(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "customer_id"}},
			DoNothing: true,
		}).
		Create(model).Error
}

// Update writes the credit record guarded by the aggregate version
func (r *GormCustomerCreditRepository) Update(ctx context.Context, credit *finance.CustomerCredit) error {
	currentVersion := credit.Version
	credit.Version++
	credit.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.CustomerCreditModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", credit.ID, credit.TenantID, currentVersion).
		Updates(map[string]interface{}{
			"customer_name":        credit.CustomerName,
			"credit_limit":         credit.CreditLimit,
			"current_balance":      credit.CurrentBalance,
			"available_credit":     credit.AvailableCredit,
			"credit_score":         credit.CreditScore,
			"risk_level":           credit.RiskLevel,
			"on_time_payment_rate": credit.OnTimePaymentRate,
			"average_days_to_pay":  credit.AverageDaysToPay,
			"last_recalculated_at": credit.LastRecalculatedAt,
			"version":              credit.Version,
			"updated_at":           credit.UpdatedAt,
		})
	if result.Error != nil {
		credit.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		credit.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormCustomerCreditRepository implements finance.CustomerCreditRepository
var _ finance.CustomerCreditRepository = (*GormCustomerCreditRepository)(nil)
