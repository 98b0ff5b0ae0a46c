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

// GormCreditNoteRepository implements finance.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

func (r *GormCreditNoteRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a credit note with its items and applications by ID
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.conn(ctx).
		Preload("Items").
		Preload("Applications").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the credit note row for the surrounding transaction
// and loads the note with its items and applications
func (r *GormCreditNoteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
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
		Where("credit_note_id = ?", id).
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	if err := r.conn(ctx).
		Where("credit_note_id = ?", id).
		Find(&model.Applications).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a credit note by its document number for a tenant
func (r *GormCreditNoteRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.conn(ctx).
		Preload("Items").
		Preload("Applications").
		Where("tenant_id = ? AND credit_note_number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds credit notes for a tenant with filtering and pagination
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CreditNoteFilter) ([]finance.CreditNote, int64, error) {
	query := r.conn(ctx).Model(&models.CreditNoteModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applySort(query, filter.OrderBy, filter.OrderDir, CreditNoteSortFields)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var noteModels []models.CreditNoteModel
	if err := query.Preload("Items").Preload("Applications").Find(&noteModels).Error; err != nil {
		return nil, 0, err
	}

	notes := make([]finance.CreditNote, len(noteModels))
	for i := range noteModels {
		notes[i] = *noteModels[i].ToDomain()
	}
	return notes, total, nil
}

// Save inserts the credit note root and its line items as separate narrow
// writes, never through association cascades
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	conn := r.conn(ctx)
	model := models.CreditNoteModelFromDomain(note)
	items := model.Items
	model.Items = nil
	model.Applications = nil
	if err := translateDBError(conn.Create(model).Error, "credit note number already exists"); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return conn.Create(&items).Error
}

// Update writes the credit note root row guarded by the aggregate version
func (r *GormCreditNoteRepository) Update(ctx context.Context, note *finance.CreditNote) error {
	currentVersion := note.Version
	note.Version++
	note.UpdatedAt = time.Now()

	result := r.conn(ctx).Model(&models.CreditNoteModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", note.ID, note.TenantID, currentVersion).
		Updates(map[string]interface{}{
			"customer_name":  note.CustomerName,
			"invoice_id":     note.InvoiceID,
			"credit_date":    note.CreditDate,
			"reason":         note.Reason,
			"description":    note.Description,
			"total_amount":   note.TotalAmount,
			"applied_amount": note.AppliedAmount,
			"balance":        note.Balance,
			"status":         note.Status,
			"voided_at":      note.VoidedAt,
			"void_reason":    note.VoidReason,
			"version":        note.Version,
			"updated_at":     note.UpdatedAt,
		})
	if result.Error != nil {
		note.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		note.Version = currentVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReplaceItems deletes the stored line items and inserts the current ones
func (r *GormCreditNoteRepository) ReplaceItems(ctx context.Context, note *finance.CreditNote) error {
	conn := r.conn(ctx)
	if err := conn.Where("credit_note_id = ?", note.ID).
		Delete(&models.CreditNoteItemModel{}).Error; err != nil {
		return err
	}
	if len(note.Items) == 0 {
		return nil
	}
	itemModels := make([]models.CreditNoteItemModel, len(note.Items))
	for i := range note.Items {
		itemModels[i].FromDomain(&note.Items[i])
		itemModels[i].CreditNoteID = note.ID
	}
	return conn.Create(&itemModels).Error
}

// AddApplication inserts a single application row
func (r *GormCreditNoteRepository) AddApplication(ctx context.Context, application *finance.CreditNoteApplication) error {
	var model models.CreditNoteApplicationModel
	model.FromDomain(application)
	return r.conn(ctx).Create(&model).Error
}

// Delete removes the credit note with its items and applications
func (r *GormCreditNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	conn := r.conn(ctx)
	if err := conn.Where("credit_note_id = ?", id).
		Delete(&models.CreditNoteItemModel{}).Error; err != nil {
		return err
	}
	if err := conn.Where("credit_note_id = ?", id).
		Delete(&models.CreditNoteApplicationModel{}).Error; err != nil {
		return err
	}
	return conn.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CreditNoteModel{}).Error
}

func (r *GormCreditNoteRepository) applyFilter(query *gorm.DB, filter finance.CreditNoteFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("credit_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("credit_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("credit_note_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormCreditNoteRepository implements finance.CreditNoteRepository
var _ finance.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
