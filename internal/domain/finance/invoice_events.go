package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// Event type constants for invoice events
const (
	EventTypeInvoiceCreated       = "InvoiceCreated"
	EventTypeInvoiceSent          = "InvoiceSent"
	EventTypeInvoicePaid          = "InvoicePaid"
	EventTypeInvoicePartiallyPaid = "InvoicePartiallyPaid"
	EventTypeProformaConverted    = "ProformaConverted"
	EventTypeInvoiceCancelled     = "InvoiceCancelled"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	IsProforma    bool            `json:"is_proforma"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		IsProforma:      inv.IsProforma,
		DueDate:         inv.DueDate,
	}
}

// InvoiceSentEvent is raised when a draft invoice is issued to the customer
// It drives the incremental exposure increase on the customer credit record
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	SentAt        time.Time       `json:"sent_at"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return EventTypeInvoiceSent
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	sentAt := time.Now()
	if inv.SentAt != nil {
		sentAt = *inv.SentAt
	}
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSent, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		SentAt:          sentAt,
	}
}

// InvoicePaidEvent is raised when an invoice becomes fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	SourceID      uuid.UUID       `json:"source_id"`
	SourceType    FundsSourceType `json:"source_type"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice, applied decimal.Decimal, sourceID uuid.UUID, sourceType FundsSourceType) *InvoicePaidEvent {
	paidAt := time.Now()
	if inv.PaidAt != nil {
		paidAt = *inv.PaidAt
	}
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		AppliedAmount:   applied,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
		SourceID:        sourceID,
		SourceType:      sourceType,
		PaidAt:          paidAt,
	}
}

// InvoicePartiallyPaidEvent is raised when funds are applied without
// fully settling the invoice
type InvoicePartiallyPaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	SourceID      uuid.UUID       `json:"source_id"`
	SourceType    FundsSourceType `json:"source_type"`
}

// EventType returns the event type name
func (e *InvoicePartiallyPaidEvent) EventType() string {
	return EventTypeInvoicePartiallyPaid
}

// NewInvoicePartiallyPaidEvent creates a new InvoicePartiallyPaidEvent
func NewInvoicePartiallyPaidEvent(inv *Invoice, applied decimal.Decimal, sourceID uuid.UUID, sourceType FundsSourceType) *InvoicePartiallyPaidEvent {
	return &InvoicePartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePartiallyPaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		AppliedAmount:   applied,
		PaidAmount:      inv.PaidAmount,
		BalanceDue:      inv.BalanceDue,
		SourceID:        sourceID,
		SourceType:      sourceType,
	}
}

// ProformaConvertedEvent is raised when a proforma becomes a real invoice
type ProformaConvertedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	InvoiceNumber  string    `json:"invoice_number"`
	ProformaNumber string    `json:"proforma_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
}

// EventType returns the event type name
func (e *ProformaConvertedEvent) EventType() string {
	return EventTypeProformaConverted
}

// NewProformaConvertedEvent creates a new ProformaConvertedEvent
func NewProformaConvertedEvent(inv *Invoice) *ProformaConvertedEvent {
	return &ProformaConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaConverted, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		ProformaNumber:  inv.ProformaNumber,
		CustomerID:      inv.CustomerID,
	}
}

// InvoiceCancelledEvent is raised when an invoice is cancelled
// WasOpen reports whether the invoice was counting toward exposure
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	WasOpen       bool            `json:"was_open"`
	Reason        string          `json:"reason"`
}

// EventType returns the event type name
func (e *InvoiceCancelledEvent) EventType() string {
	return EventTypeInvoiceCancelled
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, wasOpen bool) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, "Invoice", inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		WasOpen:         wasOpen,
		Reason:          inv.CancelReason,
	}
}
