package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// CreditNoteStatus represents the status of a credit note
type CreditNoteStatus string

const (
	CreditNoteStatusDraft   CreditNoteStatus = "DRAFT"   // Created, nothing applied yet
	CreditNoteStatusIssued  CreditNoteStatus = "ISSUED"  // Partially applied
	CreditNoteStatusApplied CreditNoteStatus = "APPLIED" // Fully consumed
	CreditNoteStatusVoid    CreditNoteStatus = "VOID"    // Voided, terminal
)

// IsValid checks if the status is a valid CreditNoteStatus
func (s CreditNoteStatus) IsValid() bool {
	switch s {
	case CreditNoteStatusDraft, CreditNoteStatusIssued, CreditNoteStatusApplied, CreditNoteStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of CreditNoteStatus
func (s CreditNoteStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the credit note can no longer change
func (s CreditNoteStatus) IsTerminal() bool {
	return s == CreditNoteStatusApplied || s == CreditNoteStatusVoid
}

// CreditNoteItem represents a single line on a credit note
// Used when the total is derived from items rather than supplied directly
type CreditNoteItem struct {
	shared.BaseEntity
	CreditNoteID uuid.UUID       `json:"credit_note_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
}

// NewCreditNoteItem creates a new credit note line item
// A zero quantity defaults to 1
func NewCreditNoteItem(description string, quantity, unitPrice decimal.Decimal) (*CreditNoteItem, error) {
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
	return &CreditNoteItem{
		BaseEntity:  shared.NewBaseEntity(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(2),
	}, nil
}

// CreditNoteApplication assigns part of a credit note's balance to an invoice
// It mirrors payment allocations so reconciliation can rebuild exposure from
// source rows alone
type CreditNoteApplication struct {
	shared.BaseEntity
	CreditNoteID uuid.UUID       `json:"credit_note_id"`
	InvoiceID    uuid.UUID       `json:"invoice_id"`
	Amount       decimal.Decimal `json:"amount"`
	AppliedAt    time.Time       `json:"applied_at"`
}

// CreditNote represents a credit note aggregate root
// It records credit owed to a customer and its application against invoices
type CreditNote struct {
	shared.TenantAggregateRoot
	CreditNoteNumber string                  `json:"credit_note_number"`
	CustomerID       uuid.UUID               `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	InvoiceID        *uuid.UUID              `json:"invoice_id,omitempty"` // Optional originating invoice
	CreditDate       time.Time               `json:"credit_date"`
	Reason           string                  `json:"reason"`
	Description      string                  `json:"description"`
	Currency         valueobject.Currency    `json:"currency"`
	TotalAmount      decimal.Decimal         `json:"total_amount"`
	AppliedAmount    decimal.Decimal         `json:"applied_amount"`
	Balance          decimal.Decimal         `json:"balance"`
	Status           CreditNoteStatus        `json:"status"`
	Items            []CreditNoteItem        `json:"items"`
	Applications     []CreditNoteApplication `json:"applications"`
	VoidedAt         *time.Time              `json:"voided_at"`
	VoidReason       string                  `json:"void_reason,omitempty"`
}

// NewCreditNote creates a new credit note in DRAFT status
// One of items or explicitTotal must be supplied
func NewCreditNote(
	tenantID uuid.UUID,
	creditNoteNumber string,
	customerID uuid.UUID,
	customerName string,
	invoiceID *uuid.UUID,
	creditDate time.Time,
	reason string,
	description string,
	currency valueobject.Currency,
	items []CreditNoteItem,
	explicitTotal *decimal.Decimal,
) (*CreditNote, error) {
	if creditNoteNumber == "" {
		return nil, shared.NewValidationError("credit note number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer ID cannot be empty")
	}
	if creditDate.IsZero() {
		return nil, shared.NewValidationError("credit date is required")
	}
	if reason == "" {
		return nil, shared.NewValidationError("credit reason is required")
	}
	if description == "" {
		return nil, shared.NewValidationError("credit description is required")
	}
	if len(items) == 0 && explicitTotal == nil {
		return nil, shared.NewValidationError("credit note requires items or an explicit total amount")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	cn := &CreditNote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CreditNoteNumber:    creditNoteNumber,
		CustomerID:          customerID,
		CustomerName:        customerName,
		InvoiceID:           invoiceID,
		CreditDate:          creditDate,
		Reason:              reason,
		Description:         description,
		Currency:            currency,
		AppliedAmount:       decimal.Zero,
		Status:              CreditNoteStatusDraft,
	}

	if err := cn.setTotals(items, explicitTotal); err != nil {
		return nil, err
	}
	cn.Balance = cn.TotalAmount

	cn.AddDomainEvent(NewCreditNoteCreatedEvent(cn))

	return cn, nil
}

func (cn *CreditNote) setTotals(items []CreditNoteItem, explicitTotal *decimal.Decimal) error {
	if len(items) > 0 {
		total := decimal.Zero
		for i := range items {
			items[i].CreditNoteID = cn.ID
			total = total.Add(items[i].Amount)
		}
		cn.Items = items
		cn.TotalAmount = total
		return nil
	}
	if explicitTotal.IsNegative() {
		return shared.NewValidationError("credit note total must not be negative")
	}
	cn.Items = nil
	cn.TotalAmount = *explicitTotal
	return nil
}

// Apply assigns part of the credit note's balance to an invoice
func (cn *CreditNote) Apply(invoiceID uuid.UUID, amount decimal.Decimal) (*CreditNoteApplication, error) {
	if cn.Status == CreditNoteStatusVoid {
		return nil, shared.NewStateError("cannot apply a void credit note")
	}
	if cn.Status == CreditNoteStatusApplied && cn.Balance.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewStateError("credit note is already fully applied")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("application invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("application amount must be positive")
	}
	if amount.GreaterThan(cn.Balance) {
		return nil, shared.NewValidationError(fmt.Sprintf("application amount %s exceeds remaining balance %s", amount.String(), cn.Balance.String()))
	}

	app := &CreditNoteApplication{
		BaseEntity:   shared.NewBaseEntity(),
		CreditNoteID: cn.ID,
		InvoiceID:    invoiceID,
		Amount:       amount,
		AppliedAt:    time.Now(),
	}

	cn.Applications = append(cn.Applications, *app)
	cn.AppliedAmount = cn.AppliedAmount.Add(amount)
	cn.Balance = cn.TotalAmount.Sub(cn.AppliedAmount)

	if cn.Balance.LessThanOrEqual(BalanceTolerance) {
		cn.Status = CreditNoteStatusApplied
		cn.AddDomainEvent(NewCreditNoteFullyAppliedEvent(cn))
	} else if cn.Status == CreditNoteStatusDraft {
		cn.Status = CreditNoteStatusIssued
	}
	cn.AddDomainEvent(NewCreditNoteAppliedEvent(cn, app))

	cn.touch()
	return app, nil
}

// ReplaceItems replaces all line items and recomputes the balance
// against the amount already applied
func (cn *CreditNote) ReplaceItems(items []CreditNoteItem) error {
	if cn.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot edit credit note in %s status", cn.Status))
	}
	if len(items) == 0 {
		return shared.NewValidationError("at least one item is required")
	}
	if err := cn.setTotals(items, nil); err != nil {
		return err
	}
	if cn.TotalAmount.LessThan(cn.AppliedAmount) {
		return shared.NewValidationError(fmt.Sprintf("total %s cannot be below applied amount %s", cn.TotalAmount.String(), cn.AppliedAmount.String()))
	}
	cn.Balance = cn.TotalAmount.Sub(cn.AppliedAmount)
	cn.touch()
	return nil
}

// SetExplicitTotal sets the total directly for credit notes without items
func (cn *CreditNote) SetExplicitTotal(total decimal.Decimal) error {
	if cn.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot edit credit note in %s status", cn.Status))
	}
	if len(cn.Items) > 0 {
		return shared.NewValidationError("total is derived from items and cannot be set directly")
	}
	if total.IsNegative() {
		return shared.NewValidationError("credit note total must not be negative")
	}
	if total.LessThan(cn.AppliedAmount) {
		return shared.NewValidationError(fmt.Sprintf("total %s cannot be below applied amount %s", total.String(), cn.AppliedAmount.String()))
	}
	cn.TotalAmount = total
	cn.Balance = cn.TotalAmount.Sub(cn.AppliedAmount)
	cn.touch()
	return nil
}

// UpdateDetails patches the descriptive fields of the credit note
func (cn *CreditNote) UpdateDetails(reason, description *string, creditDate *time.Time) error {
	if cn.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot edit credit note in %s status", cn.Status))
	}
	if reason != nil {
		if *reason == "" {
			return shared.NewValidationError("credit reason is required")
		}
		cn.Reason = *reason
	}
	if description != nil {
		if *description == "" {
			return shared.NewValidationError("credit description is required")
		}
		cn.Description = *description
	}
	if creditDate != nil {
		if creditDate.IsZero() {
			return shared.NewValidationError("credit date is required")
		}
		cn.CreditDate = *creditDate
	}
	cn.touch()
	return nil
}

// Void voids the credit note
// Credit notes with applied amounts cannot be voided
func (cn *CreditNote) Void(reason string) error {
	if cn.Status.IsTerminal() {
		return shared.NewStateError(fmt.Sprintf("cannot void credit note in %s status", cn.Status))
	}
	if cn.AppliedAmount.GreaterThan(decimal.Zero) {
		return shared.NewStateError("cannot void credit note with applied amounts")
	}
	if reason == "" {
		return shared.NewValidationError("void reason is required")
	}

	now := time.Now()
	cn.Status = CreditNoteStatusVoid
	cn.VoidedAt = &now
	cn.VoidReason = reason
	cn.AddDomainEvent(NewCreditNoteVoidedEvent(cn))
	cn.touch()
	return nil
}

// CanDelete returns true if the credit note may be removed
func (cn *CreditNote) CanDelete() bool {
	return cn.Status != CreditNoteStatusApplied
}

func (cn *CreditNote) touch() {
	cn.UpdatedAt = time.Now()
	cn.IncrementVersion()
}
