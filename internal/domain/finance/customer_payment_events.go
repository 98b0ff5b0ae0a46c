package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// Event type constants for customer payment events
const (
	EventTypePaymentReceived       = "PaymentReceived"
	EventTypePaymentAllocated      = "PaymentAllocated"
	EventTypePaymentFullyAllocated = "PaymentFullyAllocated"
)

// PaymentReceivedEvent is raised when a customer payment is recorded
type PaymentReceivedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Method        PaymentMethod   `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
}

// EventType returns the event type name
func (e *PaymentReceivedEvent) EventType() string {
	return EventTypePaymentReceived
}

// NewPaymentReceivedEvent creates a new PaymentReceivedEvent
func NewPaymentReceivedEvent(p *CustomerPayment) *PaymentReceivedEvent {
	return &PaymentReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentReceived, "CustomerPayment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		CustomerName:    p.CustomerName,
		Method:          p.Method,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
	}
}

// PaymentAllocatedEvent is raised for every allocation of payment funds
// to an invoice. It drives the incremental exposure relief on the customer
// credit record and the external ledger notification.
type PaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID         uuid.UUID       `json:"payment_id"`
	PaymentNumber     string          `json:"payment_number"`
	AllocationID      uuid.UUID       `json:"allocation_id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
}

// EventType returns the event type name
func (e *PaymentAllocatedEvent) EventType() string {
	return EventTypePaymentAllocated
}

// NewPaymentAllocatedEvent creates a new PaymentAllocatedEvent
func NewPaymentAllocatedEvent(p *CustomerPayment, alloc *PaymentAllocation) *PaymentAllocatedEvent {
	return &PaymentAllocatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentAllocated, "CustomerPayment", p.ID, p.TenantID),
		PaymentID:         p.ID,
		PaymentNumber:     p.PaymentNumber,
		AllocationID:      alloc.ID,
		InvoiceID:         alloc.InvoiceID,
		CustomerID:        p.CustomerID,
		AllocatedAmount:   alloc.Amount,
		UnallocatedAmount: p.UnallocatedAmount,
	}
}

// PaymentFullyAllocatedEvent is raised when a payment has no remaining headroom
type PaymentFullyAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID       uuid.UUID       `json:"payment_id"`
	PaymentNumber   string          `json:"payment_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

// EventType returns the event type name
func (e *PaymentFullyAllocatedEvent) EventType() string {
	return EventTypePaymentFullyAllocated
}

// NewPaymentFullyAllocatedEvent creates a new PaymentFullyAllocatedEvent
func NewPaymentFullyAllocatedEvent(p *CustomerPayment) *PaymentFullyAllocatedEvent {
	return &PaymentFullyAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentFullyAllocated, "CustomerPayment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		CustomerID:      p.CustomerID,
		AllocatedAmount: p.AllocatedAmount,
	}
}
