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

// CreditNoteService provides application-level credit note operations
type CreditNoteService struct {
	creditNoteRepo finance.CreditNoteRepository
	invoiceRepo    finance.InvoiceRepository
	numberGen      finance.NumberGenerator
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(
	creditNoteRepo finance.CreditNoteRepository,
	invoiceRepo finance.InvoiceRepository,
	numberGen finance.NumberGenerator,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CreditNoteService {
	return &CreditNoteService{
		creditNoteRepo: creditNoteRepo,
		invoiceRepo:    invoiceRepo,
		numberGen:      numberGen,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreditNoteItemRequest represents a credit note line item in requests
type CreditNoteItemRequest struct {
	Description string             `json:"description"`
	Quantity    decimal.Decimal    `json:"quantity"`
	UnitPrice   valueobject.Amount `json:"unit_price"`
}

// CreateCreditNoteRequest represents a request to create a credit note
type CreateCreditNoteRequest struct {
	CreditNoteNumber string                  `json:"credit_note_number"` // Generated when absent
	CustomerID       uuid.UUID               `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	InvoiceID        *uuid.UUID              `json:"invoice_id"`
	CreditDate       time.Time               `json:"credit_date"`
	Reason           string                  `json:"reason"`
	Description      string                  `json:"description"`
	Currency         string                  `json:"currency"`
	Items            []CreditNoteItemRequest `json:"items"`
	TotalAmount      *valueobject.Amount     `json:"total_amount"` // Used when no items are given
}

// UpdateCreditNoteRequest represents a request to update a credit note
// Nil fields are left unchanged
type UpdateCreditNoteRequest struct {
	Reason      *string                 `json:"reason"`
	Description *string                 `json:"description"`
	CreditDate  *time.Time              `json:"credit_date"`
	Items       []CreditNoteItemRequest `json:"items"`
	TotalAmount *valueobject.Amount     `json:"total_amount"`
}

// ApplyCreditNoteRequest represents a request to apply credit to an invoice
type ApplyCreditNoteRequest struct {
	InvoiceID uuid.UUID          `json:"invoice_id"`
	Amount    valueobject.Amount `json:"amount"`
}

// CreditNoteListFilter defines filtering options for credit note list queries
type CreditNoteListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// CreditNoteItemResponse represents a credit note line item in API responses
type CreditNoteItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// CreditNoteApplicationResponse represents an application in API responses
type CreditNoteApplicationResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// CreditNoteResponse represents a credit note in API responses
type CreditNoteResponse struct {
	ID               uuid.UUID                       `json:"id"`
	TenantID         uuid.UUID                       `json:"tenant_id"`
	CreditNoteNumber string                          `json:"credit_note_number"`
	CustomerID       uuid.UUID                       `json:"customer_id"`
	CustomerName     string                          `json:"customer_name"`
	InvoiceID        *uuid.UUID                      `json:"invoice_id,omitempty"`
	CreditDate       time.Time                       `json:"credit_date"`
	Reason           string                          `json:"reason"`
	Description      string                          `json:"description"`
	Currency         string                          `json:"currency"`
	TotalAmount      decimal.Decimal                 `json:"total_amount"`
	AppliedAmount    decimal.Decimal                 `json:"applied_amount"`
	Balance          decimal.Decimal                 `json:"balance"`
	Status           string                          `json:"status"`
	Items            []CreditNoteItemResponse        `json:"items"`
	Applications     []CreditNoteApplicationResponse `json:"applications"`
	VoidedAt         *time.Time                      `json:"voided_at,omitempty"`
	VoidReason       string                          `json:"void_reason,omitempty"`
	CreatedAt        time.Time                       `json:"created_at"`
	UpdatedAt        time.Time                       `json:"updated_at"`
	Version          int                             `json:"version"`
}

// Create creates a new draft credit note with a generated document number
func (s *CreditNoteService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCreditNoteRequest) (*CreditNoteResponse, error) {
	creditDate := req.CreditDate
	if creditDate.IsZero() {
		creditDate = time.Now()
	}

	number := strings.TrimSpace(req.CreditNoteNumber)
	if number == "" {
		var err error
		number, err = s.numberGen.NextNumber(ctx, tenantID, finance.DocumentTypeCreditNote, creditDate)
		if err != nil {
			return nil, err
		}
	}

	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	items, err := buildCreditNoteItems(req.Items)
	if err != nil {
		return nil, err
	}

	var explicitTotal *decimal.Decimal
	if req.TotalAmount != nil {
		explicitTotal = &req.TotalAmount.Decimal
	}

	note, err := finance.NewCreditNote(
		tenantID,
		number,
		req.CustomerID,
		req.CustomerName,
		req.InvoiceID,
		creditDate,
		req.Reason,
		req.Description,
		currency,
		items,
		explicitTotal,
	)
	if err != nil {
		return nil, err
	}

	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, s.logger, note)
	return toCreditNoteResponse(note), nil
}

// GetByID gets a credit note by ID
func (s *CreditNoteService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CreditNoteResponse, error) {
	note, err := s.creditNoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.NewNotFoundError("Credit note not found")
	}
	return toCreditNoteResponse(note), nil
}

// List lists credit notes with filtering
func (s *CreditNoteService) List(ctx context.Context, tenantID uuid.UUID, filter CreditNoteListFilter) ([]CreditNoteResponse, int64, error) {
	domainFilter := finance.CreditNoteFilter{
		CustomerID: filter.CustomerID,
		DateFrom:   filter.FromDate,
		DateTo:     filter.ToDate,
		Search:     filter.Search,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		OrderBy:    filter.OrderBy,
		OrderDir:   filter.OrderDir,
	}
	if filter.Status != "" {
		status := finance.CreditNoteStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid credit note status: " + filter.Status)
		}
		domainFilter.Status = &status
	}

	notes, total, err := s.creditNoteRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CreditNoteResponse, len(notes))
	for i := range notes {
		responses[i] = *toCreditNoteResponse(&notes[i])
	}
	return responses, total, nil
}

// Apply applies part of the credit note balance to an invoice
// The credit relieves the invoice balance the same way payment funds do
func (s *CreditNoteService) Apply(ctx context.Context, tenantID, noteID uuid.UUID, req ApplyCreditNoteRequest) (*CreditNoteResponse, error) {
	var note *finance.CreditNote
	var invoice *finance.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.creditNoteRepo.FindByIDForUpdate(ctx, tenantID, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return shared.NewNotFoundError("Credit note not found")
		}

		invoice, err = s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewNotFoundError("Invoice not found")
		}
		if invoice.CustomerID != note.CustomerID {
			return shared.NewValidationError("invoice " + invoice.InvoiceNumber + " belongs to a different customer")
		}

		application, err := note.Apply(req.InvoiceID, req.Amount.Decimal)
		if err != nil {
			return err
		}
		if err := invoice.ApplyFunds(req.Amount.Decimal, note.ID, finance.FundsSourceCreditNote); err != nil {
			return err
		}

		if err := s.creditNoteRepo.AddApplication(ctx, application); err != nil {
			return err
		}
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return err
		}
		return s.creditNoteRepo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, s.logger, note)
	publishDomainEvents(ctx, s.eventPublisher, s.logger, invoice)
	return toCreditNoteResponse(note), nil
}

// Update modifies a credit note
// The total can never drop below what is already applied
func (s *CreditNoteService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCreditNoteRequest) (*CreditNoteResponse, error) {
	var note *finance.CreditNote
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		note, err = s.creditNoteRepo.FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if note == nil {
			return shared.NewNotFoundError("Credit note not found")
		}

		if err := note.UpdateDetails(req.Reason, req.Description, req.CreditDate); err != nil {
			return err
		}

		itemsChanged := false
		if len(req.Items) > 0 {
			items, err := buildCreditNoteItems(req.Items)
			if err != nil {
				return err
			}
			if err := note.ReplaceItems(items); err != nil {
				return err
			}
			itemsChanged = true
		} else if req.TotalAmount != nil {
			if err := note.SetExplicitTotal(req.TotalAmount.Decimal); err != nil {
				return err
			}
		}

		if itemsChanged {
			if err := s.creditNoteRepo.ReplaceItems(ctx, note); err != nil {
				return err
			}
		}
		return s.creditNoteRepo.Update(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return toCreditNoteResponse(note), nil
}

// Void voids a credit note that has no applied amounts
func (s *CreditNoteService) Void(ctx context.Context, tenantID, id uuid.UUID, reason string) (*CreditNoteResponse, error) {
	note, err := s.creditNoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.NewNotFoundError("Credit note not found")
	}

	if err := note.Void(reason); err != nil {
		return nil, err
	}
	if err := s.creditNoteRepo.Update(ctx, note); err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, s.logger, note)
	return toCreditNoteResponse(note), nil
}

// Delete removes a credit note that has not been fully applied
func (s *CreditNoteService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	note, err := s.creditNoteRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if note == nil {
		return shared.NewNotFoundError("Credit note not found")
	}
	if !note.CanDelete() {
		return shared.NewStateError("applied credit note cannot be deleted")
	}
	if note.AppliedAmount.IsPositive() {
		return shared.NewStateError("credit note with applied amounts cannot be deleted")
	}
	return s.creditNoteRepo.Delete(ctx, tenantID, id)
}

func buildCreditNoteItems(reqs []CreditNoteItemRequest) ([]finance.CreditNoteItem, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	items := make([]finance.CreditNoteItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := finance.NewCreditNoteItem(r.Description, r.Quantity, r.UnitPrice.Decimal)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func toCreditNoteResponse(cn *finance.CreditNote) *CreditNoteResponse {
	items := make([]CreditNoteItemResponse, len(cn.Items))
	for i, it := range cn.Items {
		items[i] = CreditNoteItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
		}
	}
	applications := make([]CreditNoteApplicationResponse, len(cn.Applications))
	for i, a := range cn.Applications {
		applications[i] = CreditNoteApplicationResponse{
			ID:        a.ID,
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
			AppliedAt: a.AppliedAt,
		}
	}

	return &CreditNoteResponse{
		ID:               cn.ID,
		TenantID:         cn.TenantID,
		CreditNoteNumber: cn.CreditNoteNumber,
		CustomerID:       cn.CustomerID,
		CustomerName:     cn.CustomerName,
		InvoiceID:        cn.InvoiceID,
		CreditDate:       cn.CreditDate,
		Reason:           cn.Reason,
		Description:      cn.Description,
		Currency:         string(cn.Currency),
		TotalAmount:      cn.TotalAmount,
		AppliedAmount:    cn.AppliedAmount,
		Balance:          cn.Balance,
		Status:           string(cn.Status),
		Items:            items,
		Applications:     applications,
		VoidedAt:         cn.VoidedAt,
		VoidReason:       cn.VoidReason,
		CreatedAt:        cn.CreatedAt,
		UpdatedAt:        cn.UpdatedAt,
		Version:          cn.Version,
	}
}
