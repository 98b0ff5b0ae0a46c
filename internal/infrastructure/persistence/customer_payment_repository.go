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

// GormCustomerPaymentRepository implements finance.CustomerPaymentRepository using GORM
type GormCustomerPaymentRepository struct {
	db *gorm.DB
}

// NewGormCustomerPaymentRepository creates a new GormCustomerPaymentRepository
func NewGormCustomerPaymentRepository(db *gorm.DB) *GormCustomerPaymentRepository {
	return &GormCustomerPaymentRepository{db: db}
}

func (r *GormCustomerPaymentRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a customer payment with its allocations by ID
func (r *GormCustomerPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerPayment, error) {
	var model models.CustomerPaymentModel
	if err := r.conn(ctx).
		Preload("Allocations").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the payment row for the surrounding transaction
// and loads the payment with its allocations
func (r *GormCustomerPaymentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerPayment, error) {
	var model models.CustomerPaymentModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.conn(ctx).
		Where("payment_id = ?", id).
		Find(&model.Allocations).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds customer payments for a tenant with filtering and pagination
func (r *GormCustomerPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.CustomerPayment, int64, error) {
	query := r.conn(ctx).Model(&models.CustomerPaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filter.OrderBy, filter.OrderDir, PaymentSortFields)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var paymentModels []models.CustomerPaymentModel
	if err := query.Preload("Allocations").Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]finance.CustomerPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, total, nil
}

// FindUnallocated returns payments with remaining headroom, most recent first
func (r *GormCustomerPaymentRepository) FindUnallocated(ctx context.Context, tenantID uuid.UUID) ([]finance.CustomerPayment, error) {
	var paymentModels []models.CustomerPaymentModel
	if err := r.conn(ctx).
		Preload("Allocations").
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]string{string(finance.PaymentStatusUnallocated), string(finance.PaymentStatusPending)}).
		Order("payment_date DESC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.CustomerPayment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Save inserts the payment root and any inline allocations as separate
// narrow writes, never through association cascades
func (r *GormCustomerPaymentRepository) Save(ctx context.Context, payment *finance.CustomerPayment) error {
	conn := r.conn(ctx)
	model := models.CustomerPaymentModelFromDomain(payment)
	allocations := model.Allocations
	model.Allocations = nil
	if err := translateDBError(conn.Create(model).Error, "payment number already exists"); err != nil {
		return err
	}
	if len(allocations) == 0 {
		return nil
	}
	return conn.Create(&allocations).Error
}

// Update writes the payment root row guarded by the aggregate version
func (r *GormCustomerPaymentRepository) Update(ctx context.Context, payment *finance.CustomerPayment) error {
	currentVersion := payment.Version
	payment.Version++
	payment.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.CustomerPaymentModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", payment.ID, payment.TenantID, currentVersion).
		Updates(map[string]interface{}{
			"customer_name":      payment.CustomerName,
			"payment_date":       payment.PaymentDate,
			"method":             payment.Method,
			"amount":             payment.Amount,
			"allocated_amount":   payment.AllocatedAmount,
			"unallocated_amount": payment.UnallocatedAmount,
			"status":             payment.Status,
			"reference":          payment.Reference,
			"notes":              payment.Notes,
			"version":            payment.Version,
			"updated_at":         payment.UpdatedAt,
		})
	if result.Error != nil {
		payment.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		payment.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// AddAllocations inserts new allocation rows without touching existing ones
func (r *GormCustomerPaymentRepository) AddAllocations(ctx context.Context, allocations []finance.PaymentAllocation) error {
	if len(allocations) == 0 {
		return nil
	}
	allocationModels := make([]models.PaymentAllocationModel, len(allocations))
	for i := range allocations {
		allocationModels[i].FromDomain(&allocations[i])
	}
	return r.conn(ctx).Create(&allocationModels).Error
}

// Delete removes the payment and its allocations
func (r *GormCustomerPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	conn := r.conn(ctx)
	if err := conn.Where("payment_id = ?", id).
		Delete(&models.PaymentAllocationModel{}).Error; err != nil {
		return err
	}
	return conn.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CustomerPaymentModel{}).Error
}

func (r *GormCustomerPaymentRepository) applyFilter(query *gorm.DB, filter finance.PaymentFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR customer_name ILIKE ? OR reference ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}

// Ensure GormCustomerPaymentRepository implements finance.CustomerPaymentRepository
var _ finance.CustomerPaymentRepository = (*GormCustomerPaymentRepository)(nil)
