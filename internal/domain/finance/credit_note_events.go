package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// Event type constants for credit note events
const (
	EventTypeCreditNoteCreated      = "CreditNoteCreated"
	EventTypeCreditNoteApplied      = "CreditNoteApplied"
	EventTypeCreditNoteFullyApplied = "CreditNoteFullyApplied"
	EventTypeCreditNoteVoided       = "CreditNoteVoided"
)

// CreditNoteCreatedEvent is raised when a credit note is created
type CreditNoteCreatedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID     uuid.UUID       `json:"credit_note_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Reason           string          `json:"reason"`
}

// EventType returns the event type name
func (e *CreditNoteCreatedEvent) EventType() string {
	return EventTypeCreditNoteCreated
}

// NewCreditNoteCreatedEvent creates a new CreditNoteCreatedEvent
func NewCreditNoteCreatedEvent(cn *CreditNote) *CreditNoteCreatedEvent {
	return &CreditNoteCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteCreated, "CreditNote", cn.ID, cn.TenantID),
		CreditNoteID:     cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		CustomerName:     cn.CustomerName,
		TotalAmount:      cn.TotalAmount,
		Reason:           cn.Reason,
	}
}

// CreditNoteAppliedEvent is raised for every application of credit note
// balance to an invoice. Like payment allocations, it drives the incremental
// exposure relief and the external ledger notification.
type CreditNoteAppliedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID     uuid.UUID       `json:"credit_note_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	ApplicationID    uuid.UUID       `json:"application_id"`
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	AppliedAmount    decimal.Decimal `json:"applied_amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// EventType returns the event type name
func (e *CreditNoteAppliedEvent) EventType() string {
	return EventTypeCreditNoteApplied
}

// NewCreditNoteAppliedEvent creates a new CreditNoteAppliedEvent
func NewCreditNoteAppliedEvent(cn *CreditNote, app *CreditNoteApplication) *CreditNoteAppliedEvent {
	return &CreditNoteAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteApplied, "CreditNote", cn.ID, cn.TenantID),
		CreditNoteID:     cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		ApplicationID:    app.ID,
		InvoiceID:        app.InvoiceID,
		CustomerID:       cn.CustomerID,
		AppliedAmount:    app.Amount,
		RemainingBalance: cn.Balance,
	}
}

// CreditNoteFullyAppliedEvent is raised when the balance reaches zero
type CreditNoteFullyAppliedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID     uuid.UUID       `json:"credit_note_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	AppliedAmount    decimal.Decimal `json:"applied_amount"`
}

// EventType returns the event type name
func (e *CreditNoteFullyAppliedEvent) EventType() string {
	return EventTypeCreditNoteFullyApplied
}

// NewCreditNoteFullyAppliedEvent creates a new CreditNoteFullyAppliedEvent
func NewCreditNoteFullyAppliedEvent(cn *CreditNote) *CreditNoteFullyAppliedEvent {
	return &CreditNoteFullyAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteFullyApplied, "CreditNote", cn.ID, cn.TenantID),
		CreditNoteID:     cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		AppliedAmount:    cn.AppliedAmount,
	}
}

// CreditNoteVoidedEvent is raised when a credit note is voided
type CreditNoteVoidedEvent struct {
	shared.BaseDomainEvent
	CreditNoteID     uuid.UUID `json:"credit_note_id"`
	CreditNoteNumber string    `json:"credit_note_number"`
	CustomerID       uuid.UUID `json:"customer_id"`
	Reason           string    `json:"reason"`
}

// EventType returns the event type name
func (e *CreditNoteVoidedEvent) EventType() string {
	return EventTypeCreditNoteVoided
}

// NewCreditNoteVoidedEvent creates a new CreditNoteVoidedEvent
func NewCreditNoteVoidedEvent(cn *CreditNote) *CreditNoteVoidedEvent {
	return &CreditNoteVoidedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteVoided, "CreditNote", cn.ID, cn.TenantID),
		CreditNoteID:     cn.ID,
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		Reason:           cn.VoidReason,
	}
}
