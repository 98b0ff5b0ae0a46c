package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// RiskLevel classifies a customer's credit risk
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// IsValid checks if the risk level is valid
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
		return true
	}
	return false
}

// String returns the string representation of RiskLevel
func (r RiskLevel) String() string {
	return string(r)
}

// CustomerCredit represents the per-customer credit record
// It tracks the credit limit, current exposure and the derived score and
// risk level. There is exactly one record per customer and tenant.
type CustomerCredit struct {
	shared.TenantAggregateRoot
	CustomerID         uuid.UUID       `json:"customer_id"`
	CustomerName       string          `json:"customer_name"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	CurrentBalance     decimal.Decimal `json:"current_balance"` // Exposure
	AvailableCredit    decimal.Decimal `json:"available_credit"`
	CreditScore        int             `json:"credit_score"` // 0-100
	RiskLevel          RiskLevel       `json:"risk_level"`
	OnTimePaymentRate  decimal.Decimal `json:"on_time_payment_rate"` // Percent, 0-100
	AverageDaysToPay   decimal.Decimal `json:"average_days_to_pay"`
	LastRecalculatedAt *time.Time      `json:"last_recalculated_at"`
}

// NewCustomerCredit creates a new credit record for a customer
// New records start with full score since there is no payment history yet
func NewCustomerCredit(tenantID, customerID uuid.UUID, customerName string, creditLimit decimal.Decimal) (*CustomerCredit, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer ID cannot be empty")
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewValidationError("credit limit must not be negative")
	}

	cc := &CustomerCredit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		CustomerName:        customerName,
		CreditLimit:         creditLimit,
		CurrentBalance:      decimal.Zero,
		OnTimePaymentRate:   decimal.NewFromInt(100),
		AverageDaysToPay:    decimal.Zero,
	}
	cc.refreshDerived()
	return cc, nil
}

// Utilization returns currentBalance / creditLimit, or 0 when no limit is set
func (cc *CustomerCredit) Utilization() decimal.Decimal {
	if cc.CreditLimit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return cc.CurrentBalance.Div(cc.CreditLimit)
}

// ApplyInvoiceExposure adds a sent invoice's total to the customer exposure
func (cc *CustomerCredit) ApplyInvoiceExposure(amount decimal.Decimal) {
	cc.CurrentBalance = cc.CurrentBalance.Add(amount)
	cc.refreshDerived()
	cc.touch()
}

// ApplyPaymentRelief subtracts settled funds from the exposure, floored at zero
func (cc *CustomerCredit) ApplyPaymentRelief(amount decimal.Decimal) {
	cc.CurrentBalance = cc.CurrentBalance.Sub(amount)
	if cc.CurrentBalance.IsNegative() {
		cc.CurrentBalance = decimal.Zero
	}
	cc.refreshDerived()
	cc.touch()
}

// SetCreditLimit changes the credit limit and re-derives score and risk
func (cc *CustomerCredit) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewValidationError("credit limit must not be negative")
	}
	cc.CreditLimit = limit
	cc.refreshDerived()
	cc.touch()
	return nil
}

// ApplyStanding overwrites the record from an authoritative rebuild
// It is idempotent: applying the same standing twice leaves the record
// unchanged apart from the recalculation timestamp
func (cc *CustomerCredit) ApplyStanding(standing CreditStanding) {
	exposure := standing.Exposure
	if exposure.IsNegative() {
		exposure = decimal.Zero
	}
	cc.CurrentBalance = exposure
	cc.OnTimePaymentRate = standing.OnTimePaymentRate
	cc.AverageDaysToPay = standing.AverageDaysToPay
	now := time.Now()
	cc.LastRecalculatedAt = &now
	cc.refreshDerived()
	cc.touch()
	cc.AddDomainEvent(NewCreditBalanceRecalculatedEvent(cc))
}

// refreshDerived recomputes availableCredit, creditScore and riskLevel
// from the stored inputs
func (cc *CustomerCredit) refreshDerived() {
	cc.AvailableCredit = cc.CreditLimit.Sub(cc.CurrentBalance)
	util := cc.Utilization()
	cc.CreditScore = CalculateCreditScore(cc.OnTimePaymentRate, cc.AverageDaysToPay, util)
	cc.RiskLevel = CalculateRiskLevel(cc.CreditScore, util)
}

func (cc *CustomerCredit) touch() {
	cc.UpdatedAt = time.Now()
	cc.IncrementVersion()
}

// CalculateCreditScore computes the weighted credit score, clamped to [0,100].
// The on-time rate carries half the weight, payment speed and utilization
// split the rest.
func CalculateCreditScore(onTimeRate, avgDaysToPay, utilization decimal.Decimal) int {
	score := onTimeRate.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(50))

	days := avgDaysToPay.InexactFloat64()
	switch {
	case days <= 15:
		score = score.Add(decimal.NewFromInt(30))
	case days <= 30:
		score = score.Add(decimal.NewFromInt(25))
	case days <= 45:
		score = score.Add(decimal.NewFromInt(15))
	case days <= 60:
		score = score.Add(decimal.NewFromInt(10))
	default:
		score = score.Add(decimal.NewFromInt(5))
	}

	util := utilization.InexactFloat64()
	switch {
	case util <= 0.3:
		score = score.Add(decimal.NewFromInt(20))
	case util <= 0.5:
		score = score.Add(decimal.NewFromInt(15))
	case util <= 0.7:
		score = score.Add(decimal.NewFromInt(10))
	case util <= 0.9:
		score = score.Add(decimal.NewFromInt(5))
	}

	result := int(score.Round(0).IntPart())
	if result < 0 {
		return 0
	}
	if result > 100 {
		return 100
	}
	return result
}

// CalculateRiskLevel classifies the risk from score and utilization
func CalculateRiskLevel(score int, utilization decimal.Decimal) RiskLevel {
	util := utilization.InexactFloat64()
	switch {
	case score >= 80 && util < 0.7:
		return RiskLevelLow
	case score >= 60 && util < 0.9:
		return RiskLevelMedium
	case score >= 40:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// CreditStanding is the authoritative view of a customer's credit inputs,
// computed from the invoice list alone
type CreditStanding struct {
	Exposure          decimal.Decimal
	OnTimePaymentRate decimal.Decimal
	AverageDaysToPay  decimal.Decimal
}

// ComputeCreditStanding derives a customer's standing from their invoices.
// Exposure is the sum of balanceDue over non-draft, non-cancelled invoices.
// Payment behaviour derives from settled invoices only; a customer with no
// settled invoices gets a full on-time rate.
func ComputeCreditStanding(invoices []Invoice) CreditStanding {
	exposure := decimal.Zero
	paidCount := 0
	onTimeCount := 0
	totalDays := 0

	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == InvoiceStatusDraft || inv.Status == InvoiceStatusCancelled {
			continue
		}
		exposure = exposure.Add(inv.BalanceDue)
		if inv.Status == InvoiceStatusPaid {
			paidCount++
			totalDays += inv.DaysToPay()
			if inv.PaidOnTime() {
				onTimeCount++
			}
		}
	}

	standing := CreditStanding{
		Exposure:          exposure,
		OnTimePaymentRate: decimal.NewFromInt(100),
		AverageDaysToPay:  decimal.Zero,
	}
	if paidCount > 0 {
		standing.OnTimePaymentRate = decimal.NewFromInt(int64(onTimeCount)).
			Div(decimal.NewFromInt(int64(paidCount))).
			Mul(decimal.NewFromInt(100)).Round(2)
		standing.AverageDaysToPay = decimal.NewFromInt(int64(totalDays)).
			Div(decimal.NewFromInt(int64(paidCount))).Round(2)
	}
	return standing
}
