package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/backoffice/backend/internal/domain/finance"
)

// GormDocumentNumberGenerator implements finance.NumberGenerator backed by
// per-scope sequence rows. Each tenant, document type and monthly period
// holds its own counter.
type GormDocumentNumberGenerator struct {
	db *gorm.DB
}

// NewGormDocumentNumberGenerator creates a new GormDocumentNumberGenerator
func NewGormDocumentNumberGenerator(db *gorm.DB) *GormDocumentNumberGenerator {
	return &GormDocumentNumberGenerator{db: db}
}

// NextNumber allocates the next document number for the scope.
// The upsert increments the counter atomically, so concurrent calls for the
// same scope never observe the same value and numbers are gapless per period.
func (g *GormDocumentNumberGenerator) NextNumber(ctx context.Context, tenantID uuid.UUID, docType finance.DocumentType, at time.Time) (string, error) {
	if !docType.IsValid() {
		return "", fmt.Errorf("unknown document type: %s", docType)
	}
	period := finance.NumberPeriod(at)

	var lastValue int64
	err := dbFromContext(ctx, g.db).WithContext(ctx).Raw(`
		INSERT INTO document_sequences (id, tenant_id, doc_type, period, last_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (tenant_id, doc_type, period)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = NOW()
		RETURNING last_value`,
		uuid.New(), tenantID, string(docType), period,
	).Scan(&lastValue).Error
	if err != nil {
		return "", fmt.Errorf("failed to allocate document number: %w", err)
	}

	return finance.FormatDocumentNumber(docType, period, lastValue), nil
}

// Ensure GormDocumentNumberGenerator implements finance.NumberGenerator
var _ finance.NumberGenerator = (*GormDocumentNumberGenerator)(nil)
