package finance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/finance"
)

// TransactionManager runs a unit of work in a single database transaction.
// Repository calls made with the context passed to fn join that transaction.
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// LedgerSync notifies the external general-ledger system about money
// movements. Failures are secondary effects: callers log and continue.
type LedgerSync interface {
	// SyncInvoice pushes a sent or settled invoice to the ledger
	SyncInvoice(ctx context.Context, invoice *finance.Invoice) error
	// SyncPayment pushes an allocated payment to the ledger
	SyncPayment(ctx context.Context, payment *finance.CustomerPayment) error
	// RemoveInvoice asks the ledger to drop a cancelled or deleted invoice
	RemoveInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error
}

// LoggingLedgerSync is the default LedgerSync that only records the
// notification. It stands in until a real ledger integration is configured.
type LoggingLedgerSync struct {
	logger *zap.Logger
}

// NewLoggingLedgerSync creates a LedgerSync that logs each notification
func NewLoggingLedgerSync(logger *zap.Logger) *LoggingLedgerSync {
	return &LoggingLedgerSync{logger: logger}
}

func (l *LoggingLedgerSync) SyncInvoice(ctx context.Context, invoice *finance.Invoice) error {
	l.logger.Info("ledger sync: invoice",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("status", invoice.Status.String()),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)
	return nil
}

func (l *LoggingLedgerSync) SyncPayment(ctx context.Context, payment *finance.CustomerPayment) error {
	l.logger.Info("ledger sync: payment",
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("allocated_amount", payment.AllocatedAmount.String()),
	)
	return nil
}

func (l *LoggingLedgerSync) RemoveInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	l.logger.Info("ledger sync: remove invoice",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoiceID.String()),
	)
	return nil
}

var _ LedgerSync = (*LoggingLedgerSync)(nil)
