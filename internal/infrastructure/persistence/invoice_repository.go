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

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an invoice with its items by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the invoice row for the surrounding transaction
// and loads the invoice with its items
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
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
		Where("invoice_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its document number for a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := r.conn(ctx).
		Preload("Items").
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices for a tenant with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, int64, error) {
	query := r.conn(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filter.OrderBy, filter.OrderDir, InvoiceSortFields)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var invoiceModels []models.InvoiceModel
	if err := query.Preload("Items").Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]finance.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// FindByCustomer returns every invoice of a customer with items
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.conn(ctx).
		Preload("Items").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("invoice_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]finance.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Save inserts the invoice root and its line items as separate narrow
// writes, never through association cascades
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	conn := r.conn(ctx)
	model := models.InvoiceModelFromDomain(invoice)
	items := model.Items
	model.Items = nil
	if err := translateDBError(conn.Create(model).Error, "invoice number already exists"); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return conn.Create(&items).Error
}

// Update writes the invoice root row guarded by the aggregate version
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *finance.Invoice) error {
	currentVersion := invoice.Version
	invoice.Version++
	invoice.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.InvoiceModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", invoice.ID, invoice.TenantID, currentVersion).
		Updates(map[string]interface{}{
			"invoice_number":  invoice.InvoiceNumber,
			"proforma_number": invoice.ProformaNumber,
			"customer_name":   invoice.CustomerName,
			"invoice_date":    invoice.InvoiceDate,
			"due_date":        invoice.DueDate,
			"subtotal":        invoice.Subtotal,
			"tax_amount":      invoice.TaxAmount,
			"total_amount":    invoice.TotalAmount,
			"paid_amount":     invoice.PaidAmount,
			"balance_due":     invoice.BalanceDue,
			"status":          invoice.Status,
			"is_proforma":     invoice.IsProforma,
			"notes":           invoice.Notes,
			"sent_at":         invoice.SentAt,
			"paid_at":         invoice.PaidAt,
			"cancelled_at":    invoice.CancelledAt,
			"cancel_reason":   invoice.CancelReason,
			"version":         invoice.Version,
			"updated_at":      invoice.UpdatedAt,
		})
	if result.Error != nil {
		invoice.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		invoice.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceItems deletes the stored line items and inserts the current ones
func (r *GormInvoiceRepository) ReplaceItems(ctx context.Context, invoice *finance.Invoice) error {
	conn := r.conn(ctx)
	if err := conn.Where("invoice_id = ?", invoice.ID).
		Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	if len(invoice.Items) == 0 {
		return nil
	}
	itemModels := make([]models.InvoiceItemModel, len(invoice.Items))
	for i := range invoice.Items {
		itemModels[i].FromDomain(&invoice.Items[i])
		itemModels[i].InvoiceID = invoice.ID
	}
	return conn.Create(&itemModels).Error
}

// Delete removes the invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	conn := r.conn(ctx)
	if err := conn.Where("invoice_id = ?", id).
		Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	return conn.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.InvoiceModel{}).Error
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter finance.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.IsProforma != nil {
		query = query.Where("is_proforma = ?", *filter.IsProforma)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.OverdueOnly {
		query = query.Where("due_date IS NOT NULL AND due_date < ? AND status IN ?",
			time.Now(), []string{string(finance.InvoiceStatusSent), string(finance.InvoiceStatusPartial)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormInvoiceRepository implements finance.InvoiceRepository
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
