package finance

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	numberGen      finance.NumberGenerator
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	ledgerSync     LedgerSync
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	numberGen finance.NumberGenerator,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	ledgerSync LedgerSync,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		numberGen:      numberGen,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		ledgerSync:     ledgerSync,
		logger:         logger,
	}
}

// InvoiceItemRequest represents an invoice line item in requests
type InvoiceItemRequest struct {
	Description     string             `json:"description"`
	Quantity        decimal.Decimal    `json:"quantity"`
	UnitPrice       valueobject.Amount `json:"unit_price"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
}

// CreateInvoiceRequest represents a request to create an invoice.
// TaxRate, when given, applies to every item that carries no rate of its own.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number"` // Generated when absent
	CustomerID    uuid.UUID            `json:"customer_id"`
	CustomerName  string               `json:"customer_name"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date"`
	Currency      string               `json:"currency"`
	IsProforma    bool                 `json:"is_proforma"`
	Items         []InvoiceItemRequest `json:"items"`
	TaxRate       *decimal.Decimal     `json:"tax_rate"`
	TotalAmount   *valueobject.Amount  `json:"total_amount"` // Used when no items are given
	Notes         string               `json:"notes"`
}

// UpdateInvoiceRequest represents a request to update an invoice
// Nil fields are left unchanged
type UpdateInvoiceRequest struct {
	DueDate     *time.Time           `json:"due_date"`
	Items       []InvoiceItemRequest `json:"items"`
	TaxRate     *decimal.Decimal     `json:"tax_rate"`
	TotalAmount *valueobject.Amount  `json:"total_amount"`
	Notes       *string              `json:"notes"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search      string     `form:"search"`
	CustomerID  *uuid.UUID `form:"customer_id"`
	Status      string     `form:"status"`
	IsProforma  *bool      `form:"is_proforma"`
	FromDate    *time.Time `form:"from_date"`
	ToDate      *time.Time `form:"to_date"`
	OverdueOnly bool       `form:"overdue"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir"`
}

// InvoiceItemResponse represents an invoice line item in API responses
type InvoiceItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	Amount          decimal.Decimal `json:"amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	TenantID       uuid.UUID             `json:"tenant_id"`
	InvoiceNumber  string                `json:"invoice_number"`
	ProformaNumber string                `json:"proforma_number,omitempty"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	CustomerName   string                `json:"customer_name"`
	InvoiceDate    time.Time             `json:"invoice_date"`
	DueDate        *time.Time            `json:"due_date,omitempty"`
	Currency       string                `json:"currency"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	BalanceDue     decimal.Decimal       `json:"balance_due"`
	Status         string                `json:"status"`
	IsProforma     bool                  `json:"is_proforma"`
	Items          []InvoiceItemResponse `json:"items"`
	Notes          string                `json:"notes,omitempty"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	PaidAt         *time.Time            `json:"paid_at,omitempty"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason   string                `json:"cancel_reason,omitempty"`
	IsOverdue      bool                  `json:"is_overdue"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// Create creates a new draft invoice with a generated document number
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	docType := finance.DocumentTypeInvoice
	if req.IsProforma {
		docType = finance.DocumentTypeProforma
	}

	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		var err error
		number, err = s.numberGen.NextNumber(ctx, tenantID, docType, invoiceDate)
		if err != nil {
			return nil, err
		}
	}

	items, err := buildInvoiceItems(req.Items, req.TaxRate)
	if err != nil {
		return nil, err
	}

	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	var explicitTotal *decimal.Decimal
	if req.TotalAmount != nil {
		explicitTotal = &req.TotalAmount.Decimal
	}

	invoice, err := finance.NewInvoice(
		tenantID,
		number,
		req.CustomerID,
		req.CustomerName,
		invoiceDate,
		req.DueDate,
		currency,
		req.IsProforma,
		items,
		explicitTotal,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	return toInvoiceResponse(invoice), nil
}

// GetByID gets an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewNotFoundError("Invoice not found")
	}
	return toInvoiceResponse(invoice), nil
}

// List lists invoices with filtering
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := finance.InvoiceFilter{
		CustomerID:  filter.CustomerID,
		IsProforma:  filter.IsProforma,
		DateFrom:    filter.FromDate,
		DateTo:      filter.ToDate,
		OverdueOnly: filter.OverdueOnly,
		Search:      filter.Search,
		Page:        filter.Page,
		PageSize:    filter.PageSize,
		OrderBy:     filter.OrderBy,
		OrderDir:    filter.OrderDir,
	}
	if filter.Status != "" {
		status := finance.InvoiceStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid invoice status: " + filter.Status)
		}
		domainFilter.Status = &status
	}

	invoices, total, err := s.invoiceRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, total, nil
}

// Update modifies a draft or open invoice
// Paid and cancelled invoices are immutable
func (s *InvoiceService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var invoice *finance.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewNotFoundError("Invoice not found")
		}
		if invoice.Status.IsTerminal() {
			return shared.NewStateError("invoice in status " + invoice.Status.String() + " cannot be modified")
		}

		itemsChanged := false
		if len(req.Items) > 0 {
			items, err := buildInvoiceItems(req.Items, req.TaxRate)
			if err != nil {
				return err
			}
			if err := invoice.ReplaceItems(items); err != nil {
				return err
			}
			itemsChanged = true
		} else if req.TotalAmount != nil {
			if err := invoice.SetExplicitTotal(req.TotalAmount.Decimal); err != nil {
				return err
			}
		}
		if req.DueDate != nil {
			if err := invoice.SetDueDate(req.DueDate); err != nil {
				return err
			}
		}
		if req.Notes != nil {
			invoice.SetNotes(*req.Notes)
		}

		if itemsChanged {
			if err := s.invoiceRepo.ReplaceItems(ctx, invoice); err != nil {
				return err
			}
		}
		return s.invoiceRepo.Update(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	return toInvoiceResponse(invoice), nil
}

// Send issues the invoice to the customer
// Re-sending an already sent invoice only refreshes the sent timestamp
func (s *InvoiceService) Send(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewNotFoundError("Invoice not found")
	}

	if err := invoice.Send(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	if err := s.ledgerSync.SyncInvoice(ctx, invoice); err != nil {
		s.logger.Warn("ledger sync failed for sent invoice",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
	return toInvoiceResponse(invoice), nil
}

// ConvertProforma converts a proforma invoice into a real one
// The proforma number is retained for reference
func (s *InvoiceService) ConvertProforma(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewNotFoundError("Invoice not found")
	}

	number, err := s.numberGen.NextNumber(ctx, tenantID, finance.DocumentTypeInvoice, time.Now())
	if err != nil {
		return nil, err
	}
	if err := invoice.ConvertProforma(number); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	return toInvoiceResponse(invoice), nil
}

// Cancel cancels an invoice that has no money applied to it
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewNotFoundError("Invoice not found")
	}

	if err := invoice.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	if err := s.ledgerSync.RemoveInvoice(ctx, tenantID, invoice.ID); err != nil {
		s.logger.Warn("ledger removal failed for cancelled invoice",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}
	return toInvoiceResponse(invoice), nil
}

// Delete removes an invoice
// Paid invoices cannot be deleted
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return shared.NewNotFoundError("Invoice not found")
	}
	if !invoice.CanDelete() {
		return shared.NewStateError("paid invoice cannot be deleted")
	}
	if invoice.PaidAmount.IsPositive() {
		return shared.NewStateError("invoice with applied funds cannot be deleted")
	}

	if err := s.invoiceRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.ledgerSync.RemoveInvoice(ctx, tenantID, id); err != nil {
		s.logger.Warn("ledger removal failed for deleted invoice",
			zap.String("invoice_id", id.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, invoice *finance.Invoice) {
	publishDomainEvents(ctx, s.eventPublisher, s.logger, invoice)
}

func buildInvoiceItems(reqs []InvoiceItemRequest, invoiceTaxRate *decimal.Decimal) ([]finance.InvoiceItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	items := make([]finance.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		taxRate := r.TaxRate
		if taxRate.IsZero() && invoiceTaxRate != nil {
			taxRate = *invoiceTaxRate
		}
		item, err := finance.NewInvoiceItem(r.Description, r.Quantity, r.UnitPrice.Decimal, r.DiscountPercent, taxRate)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func resolveCurrency(code string) (valueobject.Currency, error) {
	if code == "" {
		return valueobject.DefaultCurrency, nil
	}
	currency := valueobject.Currency(code)
	if !currency.IsValid() {
		return "", shared.NewValidationError("unsupported currency: " + code)
	}
	return currency, nil
}

func toInvoiceResponse(inv *finance.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, it := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:              it.ID,
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
			TaxRate:         it.TaxRate,
			Amount:          it.Amount,
			TaxAmount:       it.TaxAmount,
		}
	}

	return &InvoiceResponse{
		ID:             inv.ID,
		TenantID:       inv.TenantID,
		InvoiceNumber:  inv.InvoiceNumber,
		ProformaNumber: inv.ProformaNumber,
		CustomerID:     inv.CustomerID,
		CustomerName:   inv.CustomerName,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		Currency:       string(inv.Currency),
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		PaidAmount:     inv.PaidAmount,
		BalanceDue:     inv.BalanceDue,
		Status:         inv.Status.String(),
		IsProforma:     inv.IsProforma,
		Items:          items,
		Notes:          inv.Notes,
		SentAt:         inv.SentAt,
		PaidAt:         inv.PaidAt,
		CancelledAt:    inv.CancelledAt,
		CancelReason:   inv.CancelReason,
		IsOverdue:      inv.IsOverdue(),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
		Version:        inv.Version,
	}
}
