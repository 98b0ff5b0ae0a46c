package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceFilter holds query options for listing invoices
type InvoiceFilter struct {
	CustomerID  *uuid.UUID
	Status      *InvoiceStatus
	IsProforma  *bool
	DateFrom    *time.Time
	DateTo      *time.Time
	OverdueOnly bool
	Search      string // Matches invoice number or customer name
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
}

// InvoiceRepository persists invoice aggregates
// Root and line items are written through separate narrow calls; there are
// no cascade saves
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice with a row-level lock for the
	// duration of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	// FindByCustomer returns every invoice of a customer, used by the
	// authoritative credit rebuild
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)
	// Save inserts the invoice root together with its line items
	Save(ctx context.Context, invoice *Invoice) error
	// Update writes the root row only, guarded by the aggregate version
	Update(ctx context.Context, invoice *Invoice) error
	// ReplaceItems deletes the existing line items and inserts the current ones
	ReplaceItems(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentFilter holds query options for listing customer payments
type PaymentFilter struct {
	CustomerID *uuid.UUID
	Status     *PaymentStatus
	Method     *PaymentMethod
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
}

// CustomerPaymentRepository persists customer payment aggregates
type CustomerPaymentRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerPayment, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CustomerPayment, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]CustomerPayment, int64, error)
	// FindUnallocated returns payments with remaining headroom, most recent first
	FindUnallocated(ctx context.Context, tenantID uuid.UUID) ([]CustomerPayment, error)
	Save(ctx context.Context, payment *CustomerPayment) error
	Update(ctx context.Context, payment *CustomerPayment) error
	// AddAllocations inserts new allocation rows without touching existing ones
	AddAllocations(ctx context.Context, allocations []PaymentAllocation) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CreditNoteFilter holds query options for listing credit notes
type CreditNoteFilter struct {
	CustomerID *uuid.UUID
	Status     *CreditNoteStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
}

// CreditNoteRepository persists credit note aggregates
type CreditNoteRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*CreditNote, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter CreditNoteFilter) ([]CreditNote, int64, error)
	Save(ctx context.Context, note *CreditNote) error
	Update(ctx context.Context, note *CreditNote) error
	ReplaceItems(ctx context.Context, note *CreditNote) error
	// AddApplication inserts a single application row
	AddApplication(ctx context.Context, application *CreditNoteApplication) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// CustomerCreditFilter holds query options for listing credit records
type CustomerCreditFilter struct {
	RiskLevel *RiskLevel
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}

// CustomerCreditRepository persists per-customer credit records
type CustomerCreditRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerCredit, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerCredit, error)
	// FindByCustomerForUpdate locks the credit row for the surrounding transaction
	FindByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerCredit, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter CustomerCreditFilter) ([]CustomerCredit, int64, error)
	Save(ctx context.Context, credit *CustomerCredit) error
	Update(ctx context.Context, credit *CustomerCredit) error
}
