package valueobject

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/backoffice/backend/internal/domain/shared"
)

// Amount is a boundary monetary value. On unmarshal it accepts either a JSON
// number or a decimal-formatted string and normalizes through ParseAmount,
// so every HTTP amount is validated before it reaches the domain. It
// marshals as a decimal string per the boundary contract.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal as a boundary Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountPtr wraps a decimal as an optional boundary Amount.
func AmountPtr(d decimal.Decimal) *Amount {
	a := NewAmount(d)
	return &a
}

// UnmarshalJSON implements json.Unmarshaler via ParseAmount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return shared.NewValidationError("amount is not valid JSON")
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// ParseAmount converts an incoming monetary representation into a canonical
// non-negative decimal. Callers hand it whatever the boundary produced, a
// native number or a decimal-formatted string, and get back a validated
// decimal or a validation error. Silent coercion to zero is never performed.
func ParseAmount(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return validateAmount(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, shared.NewValidationError("amount is required")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, shared.NewValidationError(fmt.Sprintf("amount %q is not a valid decimal", v))
		}
		return validateAmount(d)
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, shared.NewValidationError(fmt.Sprintf("amount %q is not a valid number", v.String()))
		}
		return validateAmount(d)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, shared.NewValidationError("amount is not a finite number")
		}
		return validateAmount(decimal.NewFromFloat(v))
	case float32:
		return ParseAmount(float64(v))
	case int:
		return validateAmount(decimal.NewFromInt(int64(v)))
	case int64:
		return validateAmount(decimal.NewFromInt(v))
	case nil:
		return decimal.Zero, shared.NewValidationError("amount is required")
	default:
		return decimal.Zero, shared.NewValidationError(fmt.Sprintf("amount of type %T is not numeric", value))
	}
}

// ParseOptionalAmount behaves like ParseAmount but treats nil and empty
// strings as absent, reporting presence through the second return value.
func ParseOptionalAmount(value any) (decimal.Decimal, bool, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, false, nil
		}
	}
	d, err := ParseAmount(value)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

func validateAmount(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, shared.NewValidationError(fmt.Sprintf("amount %s must not be negative", d.String()))
	}
	return d, nil
}
