package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	ProformaNumber string                `gorm:"type:varchar(50)"`
	CustomerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerName   string                `gorm:"type:varchar(200);not null"`
	InvoiceDate    time.Time             `gorm:"not null;index"`
	DueDate        *time.Time            `gorm:"index"`
	Currency       string                `gorm:"type:varchar(3);not null"`
	Subtotal       decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TaxAmount      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	BalanceDue     decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status         finance.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	IsProforma     bool                  `gorm:"not null;default:false;index"`
	Items          []InvoiceItemModel    `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Notes          string                `gorm:"type:text"`
	SentAt         *time.Time
	PaidAt         *time.Time
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is the persistence model for invoice line items.
type InvoiceItemModel struct {
	BaseModel
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description     string          `gorm:"type:varchar(500);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxRate         decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	items := make([]finance.InvoiceItem, len(m.Items))
	for i := range m.Items {
		items[i] = *m.Items[i].ToDomain()
	}
	inv := &finance.Invoice{
		InvoiceNumber:  m.InvoiceNumber,
		ProformaNumber: m.ProformaNumber,
		CustomerID:     m.CustomerID,
		CustomerName:   m.CustomerName,
		InvoiceDate:    m.InvoiceDate,
		DueDate:        m.DueDate,
		Currency:       valueobject.Currency(m.Currency),
		Subtotal:       m.Subtotal,
		TaxAmount:      m.TaxAmount,
		TotalAmount:    m.TotalAmount,
		PaidAmount:     m.PaidAmount,
		BalanceDue:     m.BalanceDue,
		Status:         m.Status,
		IsProforma:     m.IsProforma,
		Items:          items,
		Notes:          m.Notes,
		SentAt:         m.SentAt,
		PaidAt:         m.PaidAt,
		CancelledAt:    m.CancelledAt,
		CancelReason:   m.CancelReason,
	}
	m.PopulateTenantAggregateRoot(&inv.TenantAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *finance.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.ProformaNumber = inv.ProformaNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Currency = string(inv.Currency)
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.BalanceDue = inv.BalanceDue
	m.Status = inv.Status
	m.IsProforma = inv.IsProforma
	m.Notes = inv.Notes
	m.SentAt = inv.SentAt
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *finance.InvoiceItem {
	return &finance.InvoiceItem{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		TaxRate:         m.TaxRate,
		Amount:          m.Amount,
		TaxAmount:       m.TaxAmount,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem entity.
func (m *InvoiceItemModel) FromDomain(item *finance.InvoiceItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.InvoiceID = item.InvoiceID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.DiscountPercent = item.DiscountPercent
	m.TaxRate = item.TaxRate
	m.Amount = item.Amount
	m.TaxAmount = item.TaxAmount
}

// CustomerPaymentModel is the persistence model for the CustomerPayment aggregate root.
type CustomerPaymentModel struct {
	TenantAggregateModel
	PaymentNumber     string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_tenant_number,priority:2"`
	CustomerID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	CustomerName      string                   `gorm:"type:varchar(200);not null"`
	PaymentDate       time.Time                `gorm:"not null;index"`
	Method            finance.PaymentMethod    `gorm:"type:varchar(20);not null"`
	Currency          string                   `gorm:"type:varchar(3);not null"`
	Amount            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount   decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	UnallocatedAmount decimal.Decimal          `gorm:"type:decimal(18,4);not null;index"`
	Status            finance.PaymentStatus    `gorm:"type:varchar(20);not null;default:'UNALLOCATED';index"`
	Allocations       []PaymentAllocationModel `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
	Reference         string                   `gorm:"type:varchar(100)"`
	Notes             string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerPaymentModel) TableName() string {
	return "customer_payments"
}

// PaymentAllocationModel is the persistence model for payment allocation rows.
type PaymentAllocationModel struct {
	BaseModel
	PaymentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain CustomerPayment entity.
func (m *CustomerPaymentModel) ToDomain() *finance.CustomerPayment {
	allocations := make([]finance.PaymentAllocation, len(m.Allocations))
	for i := range m.Allocations {
		allocations[i] = *m.Allocations[i].ToDomain()
	}
	p := &finance.CustomerPayment{
		PaymentNumber:     m.PaymentNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		PaymentDate:       m.PaymentDate,
		Method:            m.Method,
		Currency:          valueobject.Currency(m.Currency),
		Amount:            m.Amount,
		AllocatedAmount:   m.AllocatedAmount,
		UnallocatedAmount: m.UnallocatedAmount,
		Status:            m.Status,
		Allocations:       allocations,
		Reference:         m.Reference,
		Notes:             m.Notes,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain CustomerPayment entity.
func (m *CustomerPaymentModel) FromDomain(p *finance.CustomerPayment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.CustomerID = p.CustomerID
	m.CustomerName = p.CustomerName
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Currency = string(p.Currency)
	m.Amount = p.Amount
	m.AllocatedAmount = p.AllocatedAmount
	m.UnallocatedAmount = p.UnallocatedAmount
	m.Status = p.Status
	m.Reference = p.Reference
	m.Notes = p.Notes

	m.Allocations = make([]PaymentAllocationModel, len(p.Allocations))
	for i := range p.Allocations {
		m.Allocations[i].FromDomain(&p.Allocations[i])
	}
}

// CustomerPaymentModelFromDomain creates a new persistence model from a domain CustomerPayment.
func CustomerPaymentModelFromDomain(p *finance.CustomerPayment) *CustomerPaymentModel {
	m := &CustomerPaymentModel{}
	m.FromDomain(p)
	return m
}

// ToDomain converts the persistence model to a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) ToDomain() *finance.PaymentAllocation {
	return &finance.PaymentAllocation{
		BaseEntity:  m.BaseModel.ToDomain(),
		PaymentID:   m.PaymentID,
		InvoiceID:   m.InvoiceID,
		Amount:      m.Amount,
		AllocatedAt: m.AllocatedAt,
	}
}

// FromDomain populates the persistence model from a domain PaymentAllocation entity.
func (m *PaymentAllocationModel) FromDomain(alloc *finance.PaymentAllocation) {
	m.FromDomainBaseEntity(alloc.BaseEntity)
	m.PaymentID = alloc.PaymentID
	m.InvoiceID = alloc.InvoiceID
	m.Amount = alloc.Amount
	m.AllocatedAt = alloc.AllocatedAt
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root.
type CreditNoteModel struct {
	TenantAggregateModel
	CreditNoteNumber string                       `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_tenant_number,priority:2"`
	CustomerID       uuid.UUID                    `gorm:"type:uuid;not null;index"`
	CustomerName     string                       `gorm:"type:varchar(200);not null"`
	InvoiceID        *uuid.UUID                   `gorm:"type:uuid;index"`
	CreditDate       time.Time                    `gorm:"not null;index"`
	Reason           string                       `gorm:"type:varchar(100);not null"`
	Description      string                       `gorm:"type:text;not null"`
	Currency         string                       `gorm:"type:varchar(3);not null"`
	TotalAmount      decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	AppliedAmount    decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	Balance          decimal.Decimal              `gorm:"type:decimal(18,4);not null;index"`
	Status           finance.CreditNoteStatus     `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Items            []CreditNoteItemModel        `gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE"`
	Applications     []CreditNoteApplicationModel `gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE"`
	VoidedAt         *time.Time
	VoidReason       string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// CreditNoteItemModel is the persistence model for credit note line items.
type CreditNoteItemModel struct {
	BaseModel
	CreditNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description  string          `gorm:"type:varchar(500);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (CreditNoteItemModel) TableName() string {
	return "credit_note_items"
}

// CreditNoteApplicationModel is the persistence model for credit note applications.
type CreditNoteApplicationModel struct {
	BaseModel
	CreditNoteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditNoteApplicationModel) TableName() string {
	return "credit_note_applications"
}

// ToDomain converts the persistence model to a domain CreditNote entity.
func (m *CreditNoteModel) ToDomain() *finance.CreditNote {
	items := make([]finance.CreditNoteItem, len(m.Items))
	for i := range m.Items {
		items[i] = *m.Items[i].ToDomain()
	}
	applications := make([]finance.CreditNoteApplication, len(m.Applications))
	for i := range m.Applications {
		applications[i] = *m.Applications[i].ToDomain()
	}
	cn := &finance.CreditNote{
		CreditNoteNumber: m.CreditNoteNumber,
		CustomerID:       m.CustomerID,
		CustomerName:     m.CustomerName,
		InvoiceID:        m.InvoiceID,
		CreditDate:       m.CreditDate,
		Reason:           m.Reason,
		Description:      m.Description,
		Currency:         valueobject.Currency(m.Currency),
		TotalAmount:      m.TotalAmount,
		AppliedAmount:    m.AppliedAmount,
		Balance:          m.Balance,
		Status:           m.Status,
		Items:            items,
		Applications:     applications,
		VoidedAt:         m.VoidedAt,
		VoidReason:       m.VoidReason,
	}
	m.PopulateTenantAggregateRoot(&cn.TenantAggregateRoot)
	return cn
}

// FromDomain populates the persistence model from a domain CreditNote entity.
func (m *CreditNoteModel) FromDomain(cn *finance.CreditNote) {
	m.FromDomainTenantAggregateRoot(cn.TenantAggregateRoot)
	m.CreditNoteNumber = cn.CreditNoteNumber
	m.CustomerID = cn.CustomerID
	m.CustomerName = cn.CustomerName
	m.InvoiceID = cn.InvoiceID
	m.CreditDate = cn.CreditDate
	m.Reason = cn.Reason
	m.Description = cn.Description
	m.Currency = string(cn.Currency)
	m.TotalAmount = cn.TotalAmount
	m.AppliedAmount = cn.AppliedAmount
	m.Balance = cn.Balance
	m.Status = cn.Status
	m.VoidedAt = cn.VoidedAt
	m.VoidReason = cn.VoidReason

	m.Items = make([]CreditNoteItemModel, len(cn.Items))
	for i := range cn.Items {
		m.Items[i].FromDomain(&cn.Items[i])
	}
	m.Applications = make([]CreditNoteApplicationModel, len(cn.Applications))
	for i := range cn.Applications {
		m.Applications[i].FromDomain(&cn.Applications[i])
	}
}

// CreditNoteModelFromDomain creates a new persistence model from a domain CreditNote.
func CreditNoteModelFromDomain(cn *finance.CreditNote) *CreditNoteModel {
	m := &CreditNoteModel{}
	m.FromDomain(cn)
	return m
}

// ToDomain converts the persistence model to a domain CreditNoteItem entity.
func (m *CreditNoteItemModel) ToDomain() *finance.CreditNoteItem {
	return &finance.CreditNoteItem{
		BaseEntity:   m.BaseModel.ToDomain(),
		CreditNoteID: m.CreditNoteID,
		Description:  m.Description,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Amount:       m.Amount,
	}
}

// FromDomain populates the persistence model from a domain CreditNoteItem entity.
func (m *CreditNoteItemModel) FromDomain(item *finance.CreditNoteItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.CreditNoteID = item.CreditNoteID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Amount = item.Amount
}

// ToDomain converts the persistence model to a domain CreditNoteApplication entity.
func (m *CreditNoteApplicationModel) ToDomain() *finance.CreditNoteApplication {
	return &finance.CreditNoteApplication{
		BaseEntity:   m.BaseModel.ToDomain(),
		CreditNoteID: m.CreditNoteID,
		InvoiceID:    m.InvoiceID,
		Amount:       m.Amount,
		AppliedAt:    m.AppliedAt,
	}
}

// FromDomain populates the persistence model from a domain CreditNoteApplication entity.
func (m *CreditNoteApplicationModel) FromDomain(app *finance.CreditNoteApplication) {
	m.FromDomainBaseEntity(app.BaseEntity)
	m.CreditNoteID = app.CreditNoteID
	m.InvoiceID = app.InvoiceID
	m.Amount = app.Amount
	m.AppliedAt = app.AppliedAt
}

// CustomerCreditModel is the persistence model for the CustomerCredit aggregate root.
type CustomerCreditModel struct {
	TenantAggregateModel
	CustomerID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_credit_tenant_customer,priority:2"`
	CustomerName       string            `gorm:"type:varchar(200)"`
	CreditLimit        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CurrentBalance     decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	AvailableCredit    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CreditScore        int               `gorm:"not null;default:100"`
	RiskLevel          finance.RiskLevel `gorm:"type:varchar(10);not null;default:'low';index"`
	OnTimePaymentRate  decimal.Decimal   `gorm:"type:decimal(5,2);not null"`
	AverageDaysToPay   decimal.Decimal   `gorm:"type:decimal(8,2);not null"`
	LastRecalculatedAt *time.Time
}

// TableName returns the table name for GORM
func (CustomerCreditModel) TableName() string {
	return "customer_credits"
}

// ToDomain converts the persistence model to a domain CustomerCredit entity.
func (m *CustomerCreditModel) ToDomain() *finance.CustomerCredit {
	cc := &finance.CustomerCredit{
		CustomerID:         m.CustomerID,
		CustomerName:       m.CustomerName,
		CreditLimit:        m.CreditLimit,
		CurrentBalance:     m.CurrentBalance,
		AvailableCredit:    m.AvailableCredit,
		CreditScore:        m.CreditScore,
		RiskLevel:          m.RiskLevel,
		OnTimePaymentRate:  m.OnTimePaymentRate,
		AverageDaysToPay:   m.AverageDaysToPay,
		LastRecalculatedAt: m.LastRecalculatedAt,
	}
	m.PopulateTenantAggregateRoot(&cc.TenantAggregateRoot)
	return cc
}

// FromDomain populates the persistence model from a domain CustomerCredit entity.
func (m *CustomerCreditModel) FromDomain(cc *finance.CustomerCredit) {
	m.FromDomainTenantAggregateRoot(cc.TenantAggregateRoot)
	m.CustomerID = cc.CustomerID
	m.CustomerName = cc.CustomerName
	m.CreditLimit = cc.CreditLimit
	m.CurrentBalance = cc.CurrentBalance
	m.AvailableCredit = cc.AvailableCredit
	m.CreditScore = cc.CreditScore
	m.RiskLevel = cc.RiskLevel
	m.OnTimePaymentRate = cc.OnTimePaymentRate
	m.AverageDaysToPay = cc.AverageDaysToPay
	m.LastRecalculatedAt = cc.LastRecalculatedAt
}

// CustomerCreditModelFromDomain creates a new persistence model from a domain CustomerCredit.
func CustomerCreditModelFromDomain(cc *finance.CustomerCredit) *CustomerCreditModel {
	m := &CustomerCreditModel{}
	m.FromDomain(cc)
	return m
}

// DocumentSequenceModel is the persistence model for per-period document
// number sequences. One row exists per tenant, document type and period.
type DocumentSequenceModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_doc_seq_scope,priority:1"`
	DocType   string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_doc_seq_scope,priority:2"`
	Period    string    `gorm:"type:varchar(6);not null;uniqueIndex:idx_doc_seq_scope,priority:3"`
	LastValue int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
