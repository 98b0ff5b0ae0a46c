package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// allocationIdempotencyTTL is the retention window for allocation replay markers
const allocationIdempotencyTTL = 24 * time.Hour

// PaymentService provides application-level customer payment operations
type PaymentService struct {
	paymentRepo    finance.CustomerPaymentRepository
	invoiceRepo    finance.InvoiceRepository
	numberGen      finance.NumberGenerator
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	ledgerSync     LedgerSync
	idempotency    shared.IdempotencyStore
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo finance.CustomerPaymentRepository,
	invoiceRepo finance.InvoiceRepository,
	numberGen finance.NumberGenerator,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	ledgerSync LedgerSync,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		invoiceRepo:    invoiceRepo,
		numberGen:      numberGen,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		ledgerSync:     ledgerSync,
		idempotency:    idempotency,
		logger:         logger,
	}
}

// AllocationRequest represents a single allocation of payment funds to an invoice
type AllocationRequest struct {
	InvoiceID uuid.UUID          `json:"invoice_id"`
	Amount    valueobject.Amount `json:"amount"`
}

// CreatePaymentRequest represents a request to record a customer payment
// Allocations may be supplied inline and are applied in the same transaction
type CreatePaymentRequest struct {
	PaymentNumber string              `json:"payment_number"` // Generated when absent
	CustomerID    uuid.UUID           `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	PaymentDate   time.Time           `json:"payment_date"`
	Method        string              `json:"method"`
	Currency      string              `json:"currency"`
	Amount        valueobject.Amount  `json:"amount"`
	Reference     string              `json:"reference"`
	Notes         string              `json:"notes"`
	Allocations   []AllocationRequest `json:"allocations"`
}

// AllocatePaymentRequest represents a request to allocate payment funds
type AllocatePaymentRequest struct {
	Allocations []AllocationRequest `json:"allocations"`
	// IdempotencyKey comes from the Idempotency-Key header, not the body
	IdempotencyKey string `json:"-"`
}

// UpdatePaymentRequest represents a request to update payment details
// Nil fields are left unchanged
type UpdatePaymentRequest struct {
	PaymentDate *time.Time          `json:"payment_date"`
	Method      *string             `json:"method"`
	Amount      *valueobject.Amount `json:"amount"`
	Reference   *string             `json:"reference"`
	Notes       *string             `json:"notes"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	Method     string     `form:"method"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// PaymentAllocationResponse represents a payment allocation in API responses
type PaymentAllocationResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	AllocatedAt time.Time       `json:"allocated_at"`
}

// CustomerPaymentResponse represents a customer payment in API responses
type CustomerPaymentResponse struct {
	ID                uuid.UUID                   `json:"id"`
	TenantID          uuid.UUID                   `json:"tenant_id"`
	PaymentNumber     string                      `json:"payment_number"`
	CustomerID        uuid.UUID                   `json:"customer_id"`
	CustomerName      string                      `json:"customer_name"`
	PaymentDate       time.Time                   `json:"payment_date"`
	Method            string                      `json:"method"`
	Currency          string                      `json:"currency"`
	Amount            decimal.Decimal             `json:"amount"`
	AllocatedAmount   decimal.Decimal             `json:"allocated_amount"`
	UnallocatedAmount decimal.Decimal             `json:"unallocated_amount"`
	Status            string                      `json:"status"`
	Allocations       []PaymentAllocationResponse `json:"allocations"`
	Reference         string                      `json:"reference,omitempty"`
	Notes             string                      `json:"notes,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
	Version           int                         `json:"version"`
}

// Create records a new customer payment, applying any inline allocations
// in the same transaction
func (s *PaymentService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*CustomerPaymentResponse, error) {
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	number := strings.TrimSpace(req.PaymentNumber)
	if number == "" {
		var err error
		number, err = s.numberGen.NextNumber(ctx, tenantID, finance.DocumentTypePayment, paymentDate)
		if err != nil {
			return nil, err
		}
	}

	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	payment, err := finance.NewCustomerPayment(
		tenantID,
		number,
		req.CustomerID,
		req.CustomerName,
		paymentDate,
		finance.PaymentMethod(req.Method),
		currency,
		req.Amount.Decimal,
		req.Reference,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	var touched []*finance.Invoice
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return err
		}
		if len(req.Allocations) == 0 {
			return nil
		}
		var err error
		touched, err = s.applyAllocations(ctx, tenantID, payment, req.Allocations)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterAllocation(ctx, payment, touched)
	return toPaymentResponse(payment), nil
}

// Allocate applies payment funds to one or more invoices
// A repeated idempotency key within the retention window returns the current
// payment state without allocating again
func (s *PaymentService) Allocate(ctx context.Context, tenantID, paymentID uuid.UUID, req AllocatePaymentRequest) (*CustomerPaymentResponse, error) {
	if len(req.Allocations) == 0 {
		return nil, shared.NewValidationError("at least one allocation is required")
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := fmt.Sprintf("payment-allocate:%s:%s:%s", tenantID, paymentID, req.IdempotencyKey)
		fresh, err := s.idempotency.MarkProcessed(ctx, key, allocationIdempotencyTTL)
		if err != nil {
			s.logger.Warn("idempotency check failed, proceeding without replay protection",
				zap.String("payment_id", paymentID.String()),
				zap.Error(err),
			)
		} else if !fresh {
			s.logger.Info("duplicate allocation request suppressed",
				zap.String("payment_id", paymentID.String()),
				zap.String("idempotency_key", req.IdempotencyKey),
			)
			return s.GetByID(ctx, tenantID, paymentID)
		}
	}

	var payment *finance.CustomerPayment
	var touched []*finance.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.paymentRepo.FindByIDForUpdate(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewNotFoundError("Customer payment not found")
		}
		touched, err = s.applyAllocations(ctx, tenantID, payment, req.Allocations)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishAfterAllocation(ctx, payment, touched)
	return toPaymentResponse(payment), nil
}

// applyAllocations runs the allocation loop inside the caller's transaction.
// Each target invoice is locked, mutated and written back; the new allocation
// rows are inserted in one batch at the end.
func (s *PaymentService) applyAllocations(ctx context.Context, tenantID uuid.UUID, payment *finance.CustomerPayment, reqs []AllocationRequest) ([]*finance.Invoice, error) {
	newAllocations := make([]finance.PaymentAllocation, 0, len(reqs))
	touched := make([]*finance.Invoice, 0, len(reqs))

	for _, r := range reqs {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tenantID, r.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice == nil {
			return nil, shared.NewNotFoundError("Invoice not found: " + r.InvoiceID.String())
		}
		if invoice.CustomerID != payment.CustomerID {
			return nil, shared.NewValidationError("invoice " + invoice.InvoiceNumber + " belongs to a different customer")
		}

		alloc, err := payment.Allocate(r.InvoiceID, r.Amount.Decimal)
		if err != nil {
			return nil, err
		}
		if err := invoice.ApplyFunds(r.Amount.Decimal, payment.ID, finance.FundsSourcePayment); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			return nil, err
		}

		newAllocations = append(newAllocations, *alloc)
		touched = append(touched, invoice)
	}

	if err := s.paymentRepo.AddAllocations(ctx, newAllocations); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return touched, nil
}

// publishAfterAllocation drains events from the payment and every touched
// invoice, then notifies the ledger
func (s *PaymentService) publishAfterAllocation(ctx context.Context, payment *finance.CustomerPayment, invoices []*finance.Invoice) {
	publishDomainEvents(ctx, s.eventPublisher, s.logger, payment)
	for _, invoice := range invoices {
		publishDomainEvents(ctx, s.eventPublisher, s.logger, invoice)
	}
	if len(invoices) > 0 {
		if err := s.ledgerSync.SyncPayment(ctx, payment); err != nil {
			s.logger.Warn("ledger sync failed for payment",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// GetByID gets a customer payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerPaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewNotFoundError("Customer payment not found")
	}
	return toPaymentResponse(payment), nil
}

// List lists customer payments with filtering
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter PaymentListFilter) ([]CustomerPaymentResponse, int64, error) {
	domainFilter := finance.PaymentFilter{
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
		status := finance.PaymentStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("invalid payment status: " + filter.Status)
		}
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := finance.PaymentMethod(filter.Method)
		if !method.IsValid() {
			return nil, 0, shared.NewValidationError("invalid payment method: " + filter.Method)
		}
		domainFilter.Method = &method
	}

	payments, total, err := s.paymentRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerPaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, total, nil
}

// GetUnallocated returns payments that still have unallocated funds
func (s *PaymentService) GetUnallocated(ctx context.Context, tenantID uuid.UUID) ([]CustomerPaymentResponse, error) {
	payments, err := s.paymentRepo.FindUnallocated(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	responses := make([]CustomerPaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}
	return responses, nil
}

// Update modifies payment details
// The amount can only shrink down to what is already allocated
func (s *PaymentService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdatePaymentRequest) (*CustomerPaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewNotFoundError("Customer payment not found")
	}

	var method *finance.PaymentMethod
	if req.Method != nil {
		m := finance.PaymentMethod(*req.Method)
		if !m.IsValid() {
			return nil, shared.NewValidationError("invalid payment method: " + *req.Method)
		}
		method = &m
	}

	if err := payment.UpdateDetails(req.PaymentDate, method, req.Reference, req.Notes); err != nil {
		return nil, err
	}
	if req.Amount != nil {
		if err := payment.SetAmount(req.Amount.Decimal); err != nil {
			return nil, err
		}
	}

	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// Delete removes a payment that has no allocations
func (s *PaymentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	payment, err := s.paymentRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if payment == nil {
		return shared.NewNotFoundError("Customer payment not found")
	}
	if !payment.CanDelete() {
		return shared.NewStateError("payment with allocations cannot be deleted")
	}
	return s.paymentRepo.Delete(ctx, tenantID, id)
}

func toPaymentResponse(p *finance.CustomerPayment) *CustomerPaymentResponse {
	allocations := make([]PaymentAllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = PaymentAllocationResponse{
			ID:          a.ID,
			InvoiceID:   a.InvoiceID,
			Amount:      a.Amount,
			AllocatedAt: a.AllocatedAt,
		}
	}

	return &CustomerPaymentResponse{
		ID:                p.ID,
		TenantID:          p.TenantID,
		PaymentNumber:     p.PaymentNumber,
		CustomerID:        p.CustomerID,
		CustomerName:      p.CustomerName,
		PaymentDate:       p.PaymentDate,
		Method:            string(p.Method),
		Currency:          string(p.Currency),
		Amount:            p.Amount,
		AllocatedAmount:   p.AllocatedAmount,
		UnallocatedAmount: p.UnallocatedAmount,
		Status:            string(p.Status),
		Allocations:       allocations,
		Reference:         p.Reference,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}
