package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// EventTypeCreditBalanceRecalculated names the credit rebuild event
const EventTypeCreditBalanceRecalculated = "CreditBalanceRecalculated"

// CreditBalanceRecalculatedEvent is raised after an authoritative rebuild
// of a customer's credit record
type CreditBalanceRecalculatedEvent struct {
	shared.BaseDomainEvent
	CustomerCreditID uuid.UUID       `json:"customer_credit_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	CreditScore      int             `json:"credit_score"`
	RiskLevel        RiskLevel       `json:"risk_level"`
}

// EventType returns the event type name
func (e *CreditBalanceRecalculatedEvent) EventType() string {
	return EventTypeCreditBalanceRecalculated
}

// NewCreditBalanceRecalculatedEvent creates a new CreditBalanceRecalculatedEvent
func NewCreditBalanceRecalculatedEvent(cc *CustomerCredit) *CreditBalanceRecalculatedEvent {
	return &CreditBalanceRecalculatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditBalanceRecalculated, "CustomerCredit", cc.ID, cc.TenantID),
		CustomerCreditID: cc.ID,
		CustomerID:       cc.CustomerID,
		CurrentBalance:   cc.CurrentBalance,
		CreditScore:      cc.CreditScore,
		RiskLevel:        cc.RiskLevel,
	}
}
