package persistence

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/backoffice/backend/internal/domain/shared"
)

const uniqueViolationCode = "23505"

// translateDBError maps driver-level failures onto domain errors.
// Unique index violations become ConflictError so callers can answer
// 409 for a duplicate document number instead of surfacing a raw
// database error.
func translateDBError(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewConflictError(conflictMsg)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return shared.NewConflictError(conflictMsg)
	}
	return err
}
