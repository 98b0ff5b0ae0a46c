package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/backoffice/backend/internal/domain/finance"
	"github.com/backoffice/backend/internal/domain/shared"
)

// stubTxManager runs the unit of work directly, without a database
type stubTxManager struct{}

func (stubTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockInvoiceRepository implements finance.InvoiceRepository for testing
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*finance.Invoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.InvoiceFilter) ([]finance.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ReplaceItems(ctx context.Context, invoice *finance.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ finance.InvoiceRepository = (*MockInvoiceRepository)(nil)

// MockCustomerPaymentRepository implements finance.CustomerPaymentRepository for testing
type MockCustomerPaymentRepository struct {
	mock.Mock
}

func (m *MockCustomerPaymentRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerPayment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CustomerPayment), args.Error(1)
}

func (m *MockCustomerPaymentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerPayment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CustomerPayment), args.Error(1)
}

func (m *MockCustomerPaymentRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.CustomerPayment, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.CustomerPayment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerPaymentRepository) FindUnallocated(ctx context.Context, tenantID uuid.UUID) ([]finance.CustomerPayment, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]finance.CustomerPayment), args.Error(1)
}

func (m *MockCustomerPaymentRepository) Save(ctx context.Context, payment *finance.CustomerPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockCustomerPaymentRepository) Update(ctx context.Context, payment *finance.CustomerPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockCustomerPaymentRepository) AddAllocations(ctx context.Context, allocations []finance.PaymentAllocation) error {
	args := m.Called(ctx, allocations)
	return args.Error(0)
}

func (m *MockCustomerPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ finance.CustomerPaymentRepository = (*MockCustomerPaymentRepository)(nil)

// MockCreditNoteRepository implements finance.CreditNoteRepository for testing
type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*finance.CreditNote, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CreditNoteFilter) ([]finance.CreditNote, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.CreditNote), args.Get(1).(int64), args.Error(2)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) Update(ctx context.Context, note *finance.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) ReplaceItems(ctx context.Context, note *finance.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) AddApplication(ctx context.Context, application *finance.CreditNoteApplication) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ finance.CreditNoteRepository = (*MockCreditNoteRepository)(nil)

// MockCustomerCreditRepository implements finance.CustomerCreditRepository for testing
type MockCustomerCreditRepository struct {
	mock.Mock
}

func (m *MockCustomerCreditRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.CustomerCredit, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CustomerCredit), args.Error(1)
}

func (m *MockCustomerCreditRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerCredit, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CustomerCredit), args.Error(1)
}

func (m *MockCustomerCreditRepository) FindByCustomerForUpdate(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerCredit, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.CustomerCredit), args.Error(1)
}

func (m *MockCustomerCreditRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter finance.CustomerCreditFilter) ([]finance.CustomerCredit, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.CustomerCredit), args.Get(1).(int64), args.Error(2)
}

func (m *MockCustomerCreditRepository) Save(ctx context.Context, credit *finance.CustomerCredit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}

func (m *MockCustomerCreditRepository) Update(ctx context.Context, credit *finance.CustomerCredit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}

var _ finance.CustomerCreditRepository = (*MockCustomerCreditRepository)(nil)

// MockNumberGenerator implements finance.NumberGenerator for testing
type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextNumber(ctx context.Context, tenantID uuid.UUID, docType finance.DocumentType, at time.Time) (string, error) {
	args := m.Called(ctx, tenantID, docType, at)
	return args.String(0), args.Error(1)
}

var _ finance.NumberGenerator = (*MockNumberGenerator)(nil)

// MockIdempotencyStore implements shared.IdempotencyStore for testing
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)
