package dto

import "github.com/backoffice/backend/internal/domain/shared/valueobject"

// Amount is the request-side monetary binding type. It accepts a JSON number
// or a decimal-formatted string and rejects negative or non-numeric input at
// bind time, before any handler or service logic runs.
type Amount = valueobject.Amount
