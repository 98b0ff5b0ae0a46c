package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
)

// CreditExposureHandler keeps the customer credit record in step with
// invoice and settlement events. It is the incremental cache path of the
// credit ledger; the authoritative value comes from Recalculate.
//
// Sending an invoice adds its total to the exposure. Allocating payment
// funds or applying credit subtracts exactly the allocated amount, so the
// increments and decrements telescope to the sum of open balances.
type CreditExposureHandler struct {
	creditRepo finance.CustomerCreditRepository
	logger     *zap.Logger
}

// NewCreditExposureHandler creates a new handler for exposure-moving events
func NewCreditExposureHandler(
	creditRepo finance.CustomerCreditRepository,
	logger *zap.Logger,
) *CreditExposureHandler {
	return &CreditExposureHandler{
		creditRepo: creditRepo,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CreditExposureHandler) EventTypes() []string {
	return []string{
		finance.EventTypeInvoiceSent,
		finance.EventTypeInvoiceCancelled,
		finance.EventTypePaymentAllocated,
		finance.EventTypeCreditNoteApplied,
	}
}

// Handle routes the event to the matching exposure adjustment
func (h *CreditExposureHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *finance.InvoiceSentEvent:
		return h.addExposure(ctx, e.TenantID(), e.CustomerID, e.TotalAmount)
	case *finance.InvoiceCancelledEvent:
		if !e.WasOpen {
			return nil
		}
		return h.relieveExposure(ctx, e.TenantID(), e.CustomerID, e.TotalAmount)
	case *finance.PaymentAllocatedEvent:
		return h.relieveExposure(ctx, e.TenantID(), e.CustomerID, e.AllocatedAmount)
	case *finance.CreditNoteAppliedEvent:
		return h.relieveExposure(ctx, e.TenantID(), e.CustomerID, e.AppliedAmount)
	default:
		h.logger.Error("unexpected event type for credit exposure",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

// addExposure increases the customer exposure, lazily provisioning a
// credit record with a zero limit on first contact
func (h *CreditExposureHandler) addExposure(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	credit, err := h.creditRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return fmt.Errorf("failed to load customer credit: %w", err)
	}

	if credit == nil {
		credit, err = finance.NewCustomerCredit(tenantID, customerID, "", decimal.Zero)
		if err != nil {
			return fmt.Errorf("failed to provision customer credit: %w", err)
		}
		credit.ApplyInvoiceExposure(amount)
		if err := h.creditRepo.Save(ctx, credit); err != nil {
			return fmt.Errorf("failed to save customer credit: %w", err)
		}
		h.logger.Info("customer credit record auto-provisioned",
			zap.String("customer_id", customerID.String()),
			zap.String("exposure", amount.String()),
		)
		return nil
	}

	credit.ApplyInvoiceExposure(amount)
	if err := h.creditRepo.Update(ctx, credit); err != nil {
		return fmt.Errorf("failed to update customer credit: %w", err)
	}
	return nil
}

// relieveExposure decreases the customer exposure
// A missing credit record is a no-op: there is nothing to relieve
func (h *CreditExposureHandler) relieveExposure(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error {
	credit, err := h.creditRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return fmt.Errorf("failed to load customer credit: %w", err)
	}
	if credit == nil {
		h.logger.Debug("no credit record for customer, skipping exposure relief",
			zap.String("customer_id", customerID.String()),
		)
		return nil
	}

	credit.ApplyPaymentRelief(amount)
	if err := h.creditRepo.Update(ctx, credit); err != nil {
		return fmt.Errorf("failed to update customer credit: %w", err)
	}
	return nil
}

// Ensure CreditExposureHandler implements shared.EventHandler
var _ shared.EventHandler = (*CreditExposureHandler)(nil)
