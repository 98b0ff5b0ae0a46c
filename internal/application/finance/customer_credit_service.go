package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/backoffice/backend/internal/domain/shared/valueobject"
)

// CustomerCreditService provides application-level credit ledger operations
type CustomerCreditService struct {
	creditRepo     finance.CustomerCreditRepository
	invoiceRepo    finance.InvoiceRepository
	txManager      TransactionManager
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerCreditService creates a new CustomerCreditService
func NewCustomerCreditService(
	creditRepo finance.CustomerCreditRepository,
	invoiceRepo finance.InvoiceRepository,
	txManager TransactionManager,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CustomerCreditService {
	return &CustomerCreditService{
		creditRepo:     creditRepo,
		invoiceRepo:    invoiceRepo,
		txManager:      txManager,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// CreateCustomerCreditRequest represents a request to create a credit record
type CreateCustomerCreditRequest struct {
	CustomerID   uuid.UUID          `json:"customer_id"`
	CustomerName string             `json:"customer_name"`
	CreditLimit  valueobject.Amount `json:"credit_limit"`
}

// UpdateCustomerCreditRequest represents a request to change the credit limit
type UpdateCustomerCreditRequest struct {
	CreditLimit valueobject.Amount `json:"credit_limit"`
}

// CustomerCreditListFilter defines filtering options for credit list queries
type CustomerCreditListFilter struct {
	Search    string `form:"search"`
	RiskLevel string `form:"risk_level"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir"`
}

// CustomerCreditResponse represents a credit record in API responses
type CustomerCreditResponse struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	AvailableCredit    decimal.Decimal `json:"available_credit"`
	CreditScore        int             `json:"credit_score"`
	RiskLevel          string          `json:"risk_level"`
	OnTimePaymentRate  decimal.Decimal `json:"on_time_payment_rate"`
	AverageDaysToPay   decimal.Decimal `json:"average_days_to_pay"`
	LastRecalculatedAt *time.Time      `json:"last_recalculated_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// Create creates a credit record for a customer
// Each customer has at most one record per tenant
func (s *CustomerCreditService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerCreditRequest) (*CustomerCreditResponse, error) {
	existing, err := s.creditRepo.FindByCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError("credit record already exists for customer")
	}

	credit, err := finance.NewCustomerCredit(tenantID, req.CustomerID, req.CustomerName, req.CreditLimit.Decimal)
	if err != nil {
		return nil, err
	}
	if err := s.creditRepo.Save(ctx, credit); err != nil {
		return nil, err
	}
	return toCustomerCreditResponse(credit), nil
}

// GetByID gets a credit record by ID
func (s *CustomerCreditService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CustomerCreditResponse, error) {
	credit, err := s.creditRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, shared.NewNotFoundError("Customer credit record not found")
	}
	return toCustomerCreditResponse(credit), nil
}

// GetByCustomer gets the credit record of a specific customer
func (s *CustomerCreditService) GetByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerCreditResponse, error) {
	credit, err := s.creditRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, shared.NewNotFoundError("Customer credit record not found")
	}
	return toCustomerCreditResponse(credit), nil
}

// List lists credit records with filtering
func (s *CustomerCreditService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerCreditListFilter) ([]CustomerCreditResponse, int64, error) {
	domainFilter := finance.CustomerCreditFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if filter.RiskLevel != "" {
		level := finance.RiskLevel(filter.RiskLevel)
		if !level.IsValid() {
			return nil, 0, shared.NewValidationError("invalid risk level: " + filter.RiskLevel)
		}
		domainFilter.RiskLevel = &level
	}

	credits, total, err := s.creditRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerCreditResponse, len(credits))
	for i := range credits {
		responses[i] = *toCustomerCreditResponse(&credits[i])
	}
	return responses, total, nil
}

// Update changes the credit limit and re-derives score and risk
func (s *CustomerCreditService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCustomerCreditRequest) (*CustomerCreditResponse, error) {
	credit, err := s.creditRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if credit == nil {
		return nil, shared.NewNotFoundError("Customer credit record not found")
	}

	if err := credit.SetCreditLimit(req.CreditLimit.Decimal); err != nil {
		return nil, err
	}
	if err := s.creditRepo.Update(ctx, credit); err != nil {
		return nil, err
	}
	return toCustomerCreditResponse(credit), nil
}

// Recalculate rebuilds the credit record from the customer's invoices.
// The rebuild is authoritative: it overwrites whatever the incremental
// event path has accumulated, so running it twice changes nothing.
func (s *CustomerCreditService) Recalculate(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerCreditResponse, error) {
	var credit *finance.CustomerCredit
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		credit, err = s.creditRepo.FindByCustomerForUpdate(ctx, tenantID, customerID)
		if err != nil {
			return err
		}

		invoices, err := s.invoiceRepo.FindByCustomer(ctx, tenantID, customerID)
		if err != nil {
			return err
		}
		standing := finance.ComputeCreditStanding(invoices)

		if credit == nil {
			// Lazy provisioning: first contact with this customer
			name := customerNameFromInvoices(invoices)
			credit, err = finance.NewCustomerCredit(tenantID, customerID, name, decimal.Zero)
			if err != nil {
				return err
			}
			credit.ApplyStanding(standing)
			return s.creditRepo.Save(ctx, credit)
		}

		credit.ApplyStanding(standing)
		return s.creditRepo.Update(ctx, credit)
	})
	if err != nil {
		return nil, err
	}

	publishDomainEvents(ctx, s.eventPublisher, s.logger, credit)
	s.logger.Info("customer credit recalculated",
		zap.String("customer_id", customerID.String()),
		zap.String("current_balance", credit.CurrentBalance.String()),
		zap.Int("credit_score", credit.CreditScore),
		zap.String("risk_level", credit.RiskLevel.String()),
	)
	return toCustomerCreditResponse(credit), nil
}

func customerNameFromInvoices(invoices []finance.Invoice) string {
	for i := range invoices {
		if invoices[i].CustomerName != "" {
			return invoices[i].CustomerName
		}
	}
	return ""
}

func toCustomerCreditResponse(cc *finance.CustomerCredit) *CustomerCreditResponse {
	return &CustomerCreditResponse{
		ID:                 cc.ID,
		TenantID:           cc.TenantID,
		CustomerID:         cc.CustomerID,
		CustomerName:       cc.CustomerName,
		CreditLimit:        cc.CreditLimit,
		CurrentBalance:     cc.CurrentBalance,
		AvailableCredit:    cc.AvailableCredit,
		CreditScore:        cc.CreditScore,
		RiskLevel:          cc.RiskLevel.String(),
		OnTimePaymentRate:  cc.OnTimePaymentRate,
		AverageDaysToPay:   cc.AverageDaysToPay,
		LastRecalculatedAt: cc.LastRecalculatedAt,
		CreatedAt:          cc.CreatedAt,
		UpdatedAt:          cc.UpdatedAt,
		Version:            cc.Version,
	}
}
