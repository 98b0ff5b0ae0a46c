package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"     // Created, not yet sent
	InvoiceStatusSent      InvoiceStatus = "SENT"      // Issued to the customer, unpaid
	InvoiceStatusPartial   InvoiceStatus = "PARTIAL"   // Partially settled
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully settled
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before any settlement
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen returns true if the invoice counts toward customer exposure
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPartial
}

// BalanceTolerance is the rounding tolerance for settlement checks.
// Balances within this tolerance of zero are considered fully settled.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// InvoiceItem represents a single line on an invoice
// It is exclusively owned by its invoice and removed together with it
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Amount          decimal.Decimal `json:"amount"`     // quantity * unitPrice * (1 - discount%)
	TaxAmount       decimal.Decimal `json:"tax_amount"` // amount * taxRate%
}

// NewInvoiceItem creates a new invoice line item with computed amounts
// A zero quantity defaults to 1
func NewInvoiceItem(description string, quantity, unitPrice, discountPercent, taxRate decimal.Decimal) (*InvoiceItem, error) {
	if description == "" {
		return nil, shared.NewValidationError("item description is required")
	}
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("item quantity must not be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("item unit price must not be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("item discount must be between 0 and 100")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewValidationError("item tax rate must not be negative")
	}

	item := &InvoiceItem{
		BaseEntity:      shared.NewBaseEntity(),
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		TaxRate:         taxRate,
	}
	item.compute()
	return item, nil
}

func (i *InvoiceItem) compute() {
	hundred := decimal.NewFromInt(100)
	gross := i.Quantity.Mul(i.UnitPrice)
	i.Amount = gross.Mul(hundred.Sub(i.DiscountPercent)).Div(hundred).Round(2)
	i.TaxAmount = i.Amount.Mul(i.TaxRate).Div(hundred).Round(2)
}

// Invoice represents an invoice aggregate root
// It tracks what a customer owes for a single billing document and carries
// payment allocations and credit note applications applied against it
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string               `json:"invoice_number"`
	ProformaNumber string               `json:"proforma_number,omitempty"` // Previous number retained after conversion
	CustomerID     uuid.UUID            `json:"customer_id"`
	CustomerName   string               `json:"customer_name"`
	InvoiceDate    time.Time            `json:"invoice_date"`
	DueDate        *time.Time           `json:"due_date"`
	Currency       valueobject.Currency `json:"currency"`
	Subtotal       decimal.Decimal      `json:"subtotal"`
	TaxAmount      decimal.Decimal      `json:"tax_amount"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	BalanceDue     decimal.Decimal      `json:"balance_due"`
	Status         InvoiceStatus        `json:"status"`
	IsProforma     bool                 `json:"is_proforma"`
	Items          []InvoiceItem        `json:"items"`
	Notes          string               `json:"notes"`
	SentAt         *time.Time           `json:"sent_at"`
	PaidAt         *time.Time           `json:"paid_at"`
	CancelledAt    *time.Time           `json:"cancelled_at"`
	CancelReason   string               `json:"cancel_reason,omitempty"`
}

// NewInvoice creates a new invoice in DRAFT status
// Totals are computed from items when present, otherwise taken from explicitTotal
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	customerName string,
	invoiceDate time.Time,
	dueDate *time.Time,
	currency valueobject.Currency,
	isProforma bool,
	items []InvoiceItem,
	explicitTotal *decimal.Decimal,
	notes string,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewValidationError("invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewValidationError("invoice number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		return nil, shared.NewValidationError("invoice date is required")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		Currency:            currency,
		PaidAmount:          decimal.Zero,
		Status:              InvoiceStatusDraft,
		IsProforma:          isProforma,
		Notes:               notes,
	}

	if err := inv.setTotals(items, explicitTotal); err != nil {
		return nil, err
	}
	inv.BalanceDue = inv.TotalAmount

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// setTotals computes subtotal/tax/total from items, or falls back to an
// explicit total when no items are supplied
func (inv *Invoice) setTotals(items []InvoiceItem, explicitTotal *decimal.Decimal) error {
	if len(items) > 0 {
		subtotal := decimal.Zero
		tax := decimal.Zero
		for i := range items {
			items[i].InvoiceID = inv.ID
			subtotal = subtotal.Add(items[i].Amount)
			tax = tax.Add(items[i].TaxAmount)
		}
		inv.Items = items
		inv.Subtotal = subtotal
		inv.TaxAmount = tax
		inv.TotalAmount = subtotal.Add(tax)
		return nil
	}

	if explicitTotal == nil {
		return shared.NewValidationError("invoice requires items or an explicit total amount")
	}
	if explicitTotal.IsNegative() {
		return shared.NewValidationError("invoice total must not be negative")
	}
	inv.Items = nil
	inv.Subtotal = *explicitTotal
	inv.TaxAmount = decimal.Zero
	inv.TotalAmount = *explicitTotal
	return nil
}

// ReplaceItems replaces all line items and recomputes totals
// The balance due is recomputed against payments already received
func (inv *Invoice) ReplaceItems(items []InvoiceItem) error {
	if inv.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot edit items of invoice in %s status", inv.Status))
	}
	if len(items) == 0 {
		return shared.NewValidationError("at least one item is required")
	}
	prevItems, prevSubtotal, prevTax, prevTotal := inv.Items, inv.Subtotal, inv.TaxAmount, inv.TotalAmount
	if err := inv.setTotals(items, nil); err != nil {
		return err
	}
	if newTotal := inv.TotalAmount; newTotal.LessThan(inv.PaidAmount) {
		inv.Items, inv.Subtotal, inv.TaxAmount, inv.TotalAmount = prevItems, prevSubtotal, prevTax, prevTotal
		return shared.NewValidationError(fmt.Sprintf("total %s cannot be below paid amount %s", newTotal.String(), inv.PaidAmount.String()))
	}
	inv.RecalculateBalance()
	inv.touch()
	return nil
}

// SetExplicitTotal sets the total directly for invoices without line items
func (inv *Invoice) SetExplicitTotal(total decimal.Decimal) error {
	if inv.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot edit invoice in %s status", inv.Status))
	}
	if len(inv.Items) > 0 {
		return shared.NewValidationError("total is derived from items and cannot be set directly")
	}
	if total.IsNegative() {
		return shared.NewValidationError("invoice total must not be negative")
	}
	if total.LessThan(inv.PaidAmount) {
		return shared.NewValidationError(fmt.Sprintf("total %s cannot be below paid amount %s", total.String(), inv.PaidAmount.String()))
	}
	inv.Subtotal = total
	inv.TaxAmount = decimal.Zero
	inv.TotalAmount = total
	inv.RecalculateBalance()
	inv.touch()
	return nil
}

// RecalculateBalance recomputes the balance due from total and paid amounts
// and refreshes the settlement status. Calling it twice is a no-op.
func (inv *Invoice) RecalculateBalance() {
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.BalanceDue.IsNegative() {
		inv.BalanceDue = decimal.Zero
	}
	inv.refreshSettlementStatus()
}

// refreshSettlementStatus derives the status from amounts after money moved.
// A draft with no payments stays DRAFT until the first money movement.
func (inv *Invoice) refreshSettlementStatus() {
	if inv.Status == InvoiceStatusCancelled {
		return
	}
	if inv.PaidAmount.IsZero() {
		if inv.Status == InvoiceStatusPaid {
			inv.Status = InvoiceStatusSent
			inv.PaidAt = nil
		}
		return
	}
	if inv.BalanceDue.LessThanOrEqual(BalanceTolerance) {
		if inv.Status != InvoiceStatusPaid {
			now := time.Now()
			inv.Status = InvoiceStatusPaid
			inv.PaidAt = &now
		}
		return
	}
	inv.Status = InvoiceStatusPartial
	inv.PaidAt = nil
}

// ApplyFunds applies money from a payment allocation or credit note
// application to the invoice, increasing paidAmount and reducing balanceDue
func (inv *Invoice) ApplyFunds(amount decimal.Decimal, sourceID uuid.UUID, sourceType FundsSourceType) error {
	if inv.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot apply funds to invoice in %s status", inv.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("applied amount must be positive")
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return shared.NewValidationError(fmt.Sprintf("applied amount %s exceeds balance due %s", amount.String(), inv.BalanceDue.String()))
	}
	if sourceID == uuid.Nil {
		return shared.NewValidationError("funds source ID cannot be empty")
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)
	if inv.BalanceDue.IsNegative() {
		inv.BalanceDue = decimal.Zero
	}

	if inv.BalanceDue.LessThanOrEqual(BalanceTolerance) {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, amount, sourceID, sourceType))
	} else {
		inv.Status = InvoiceStatusPartial
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, amount, sourceID, sourceType))
	}

	inv.touch()
	return nil
}

// Send issues the invoice to the customer
// Sending an already sent invoice refreshes the timestamp without
// raising the exposure event again
func (inv *Invoice) Send() error {
	if inv.Status == InvoiceStatusPaid || inv.Status == InvoiceStatusCancelled {
		return shared.NewStateError(fmt.Sprintf("cannot send invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.SentAt = &now
	if inv.Status == InvoiceStatusDraft {
		inv.Status = InvoiceStatusSent
		inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	}
	inv.touch()
	return nil
}

// ConvertProforma converts a proforma invoice into a real invoice
// The proforma number is retained for traceability
func (inv *Invoice) ConvertProforma(realNumber string) error {
	if !inv.IsProforma {
		return shared.NewStateError("invoice is not a proforma")
	}
	if inv.Status == InvoiceStatusPaid {
		return shared.NewStateError("cannot convert a paid proforma invoice")
	}
	if realNumber == "" {
		return shared.NewValidationError("invoice number cannot be empty")
	}

	inv.ProformaNumber = inv.InvoiceNumber
	inv.InvoiceNumber = realNumber
	inv.IsProforma = false
	inv.AddDomainEvent(NewProformaConvertedEvent(inv))
	inv.touch()
	return nil
}

// Cancel cancels the invoice
// Invoices with money already applied cannot be cancelled
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewStateError("cannot cancel invoice with applied payments")
	}
	if reason == "" {
		return shared.NewValidationError("cancel reason is required")
	}

	now := time.Now()
	wasOpen := inv.Status.IsOpen()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, wasOpen))
	inv.touch()
	return nil
}

// SetDueDate updates the due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) error {
	if inv.Status.IsTerminal() {
		return shared.NewStateError("cannot modify due date of invoice in terminal state")
	}
	inv.DueDate = dueDate
	inv.touch()
	return nil
}

// SetNotes sets free-form notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.touch()
}

// CanDelete returns true if the invoice may be physically removed
// Paid invoices are never deleted
func (inv *Invoice) CanDelete() bool {
	return inv.Status != InvoiceStatusPaid
}

// IsOverdue returns true if the invoice is past its due date and unsettled
func (inv *Invoice) IsOverdue() bool {
	if inv.Status.IsTerminal() || inv.DueDate == nil {
		return false
	}
	return time.Now().After(*inv.DueDate)
}

// DaysToPay returns the number of days between invoicing and full payment
// Returns 0 if the invoice is not paid yet
func (inv *Invoice) DaysToPay() int {
	if inv.PaidAt == nil {
		return 0
	}
	days := int(inv.PaidAt.Sub(inv.InvoiceDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PaidOnTime returns true if the invoice was settled on or before its due date
// Invoices without a due date count as on time
func (inv *Invoice) PaidOnTime() bool {
	if inv.PaidAt == nil {
		return false
	}
	if inv.DueDate == nil {
		return true
	}
	return !inv.PaidAt.After(*inv.DueDate)
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// FundsSourceType identifies where applied funds came from
type FundsSourceType string

const (
	FundsSourcePayment    FundsSourceType = "PAYMENT"
	FundsSourceCreditNote FundsSourceType = "CREDIT_NOTE"
)
