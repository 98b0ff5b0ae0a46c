package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// PaymentStatus represents the allocation status of a customer payment
// It derives entirely from the allocated and unallocated amounts
type PaymentStatus string

const (
	PaymentStatusUnallocated PaymentStatus = "UNALLOCATED" // No allocation yet
	PaymentStatusPending     PaymentStatus = "PENDING"     // Partially allocated
	PaymentStatusAllocated   PaymentStatus = "ALLOCATED"   // Fully allocated
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnallocated, PaymentStatusPending, PaymentStatusAllocated:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCreditCard, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentAllocation assigns part of a payment to a specific invoice
// A payment may carry several allocations, and several allocations may
// target the same invoice
type PaymentAllocation struct {
	shared.BaseEntity
	PaymentID   uuid.UUID       `json:"payment_id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	AllocatedAt time.Time       `json:"allocated_at"`
}

// NewPaymentAllocation creates a new allocation row
func NewPaymentAllocation(paymentID, invoiceID uuid.UUID, amount decimal.Decimal) (*PaymentAllocation, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("allocation invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	return &PaymentAllocation{
		BaseEntity:  shared.NewBaseEntity(),
		PaymentID:   paymentID,
		InvoiceID:   invoiceID,
		Amount:      amount,
		AllocatedAt: time.Now(),
	}, nil
}

// CustomerPayment represents a customer payment aggregate root
// It records funds received from a customer and how they were spread
// across invoices
type CustomerPayment struct {
	shared.TenantAggregateRoot
	PaymentNumber     string               `json:"payment_number"`
	CustomerID        uuid.UUID            `json:"customer_id"`
	CustomerName      string               `json:"customer_name"`
	PaymentDate       time.Time            `json:"payment_date"`
	Method            PaymentMethod        `json:"method"`
	Currency          valueobject.Currency `json:"currency"`
	Amount            decimal.Decimal      `json:"amount"`
	AllocatedAmount   decimal.Decimal      `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal      `json:"unallocated_amount"`
	Status            PaymentStatus        `json:"status"`
	Allocations       []PaymentAllocation  `json:"allocations"`
	Reference         string               `json:"reference"`
	Notes             string               `json:"notes"`
}

// NewCustomerPayment creates a new unallocated customer payment
func NewCustomerPayment(
	tenantID uuid.UUID,
	paymentNumber string,
	customerID uuid.UUID,
	customerName string,
	paymentDate time.Time,
	method PaymentMethod,
	currency valueobject.Currency,
	amount decimal.Decimal,
	reference string,
	notes string,
) (*CustomerPayment, error) {
	if paymentNumber == "" {
		return nil, shared.NewValidationError("payment number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer ID cannot be empty")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewValidationError("payment date is required")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("payment method %q is not valid", method))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	p := &CustomerPayment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PaymentNumber:       paymentNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		PaymentDate:         paymentDate,
		Method:              method,
		Currency:            currency,
		Amount:              amount,
		AllocatedAmount:     decimal.Zero,
		UnallocatedAmount:   amount,
		Status:              PaymentStatusUnallocated,
	}

	p.AddDomainEvent(NewPaymentReceivedEvent(p))
	p.Reference = reference
	p.Notes = notes

	return p, nil
}

// Unallocated returns the headroom still available for allocation,
// computed fresh from the stored amounts
func (p *CustomerPayment) Unallocated() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedAmount)
}

// IsFullyAllocated returns true once the payment has no allocatable headroom
func (p *CustomerPayment) IsFullyAllocated() bool {
	return p.Status == PaymentStatusAllocated
}

// Allocate assigns part of the payment to an invoice
// The allocation must fit within the currently unallocated amount
func (p *CustomerPayment) Allocate(invoiceID uuid.UUID, amount decimal.Decimal) (*PaymentAllocation, error) {
	if p.IsFullyAllocated() {
		return nil, shared.NewStateError("payment is already fully allocated")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("allocation amount must be positive")
	}
	unallocated := p.Unallocated()
	if amount.GreaterThan(unallocated) {
		return nil, shared.NewValidationError(fmt.Sprintf("allocation amount %s exceeds unallocated amount %s", amount.String(), unallocated.String()))
	}

	alloc, err := NewPaymentAllocation(p.ID, invoiceID, amount)
	if err != nil {
		return nil, err
	}

	p.Allocations = append(p.Allocations, *alloc)
	p.AllocatedAmount = p.AllocatedAmount.Add(amount)
	p.UnallocatedAmount = p.Amount.Sub(p.AllocatedAmount)
	p.refreshStatus()

	p.AddDomainEvent(NewPaymentAllocatedEvent(p, alloc))
	if p.Status == PaymentStatusAllocated {
		p.AddDomainEvent(NewPaymentFullyAllocatedEvent(p))
	}

	p.touch()
	return alloc, nil
}

// SetAmount changes the payment amount and recomputes the headroom
// Rejected once the payment is fully allocated
func (p *CustomerPayment) SetAmount(amount decimal.Decimal) error {
	if p.IsFullyAllocated() && p.AllocatedAmount.GreaterThan(decimal.Zero) {
		return shared.NewStateError("cannot change amount of a fully allocated payment")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("payment amount must be positive")
	}
	if amount.LessThan(p.AllocatedAmount) {
		return shared.NewValidationError(fmt.Sprintf("payment amount %s cannot be below allocated amount %s", amount.String(), p.AllocatedAmount.String()))
	}

	p.Amount = amount
	p.UnallocatedAmount = p.Amount.Sub(p.AllocatedAmount)
	p.refreshStatus()
	p.touch()
	return nil
}

// UpdateDetails patches the descriptive fields of the payment
func (p *CustomerPayment) UpdateDetails(paymentDate *time.Time, method *PaymentMethod, reference, notes *string) error {
	if p.IsFullyAllocated() && p.AllocatedAmount.GreaterThan(decimal.Zero) {
		return shared.NewStateError("cannot edit a fully allocated payment")
	}
	if paymentDate != nil {
		if paymentDate.IsZero() {
			return shared.NewValidationError("payment date is required")
		}
		p.PaymentDate = *paymentDate
	}
	if method != nil {
		if !method.IsValid() {
			return shared.NewValidationError(fmt.Sprintf("payment method %q is not valid", *method))
		}
		p.Method = *method
	}
	if reference != nil {
		p.Reference = *reference
	}
	if notes != nil {
		p.Notes = *notes
	}
	p.touch()
	return nil
}

// CanDelete returns true if the payment may be removed
// Payments with allocations must have them unwound first
func (p *CustomerPayment) CanDelete() bool {
	return p.AllocatedAmount.IsZero()
}

// refreshStatus derives the status from the allocation amounts
// Headroom within the rounding tolerance counts as fully allocated
func (p *CustomerPayment) refreshStatus() {
	switch {
	case p.AllocatedAmount.IsZero():
		p.Status = PaymentStatusUnallocated
	case p.UnallocatedAmount.LessThanOrEqual(BalanceTolerance):
		p.Status = PaymentStatusAllocated
	default:
		p.Status = PaymentStatusPending
	}
}

func (p *CustomerPayment) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
