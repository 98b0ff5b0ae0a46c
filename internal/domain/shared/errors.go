package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code, so wrapped errors with custom
// messages still compare equal to the category sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for malformed or out-of-range input
func NewValidationError(message string) *DomainError {
	return NewDomainError("INVALID_INPUT", message)
}

// NewNotFoundError creates a domain error for a missing resource
func NewNotFoundError(message string) *DomainError {
	return NewDomainError("NOT_FOUND", message)
}

// NewConflictError creates a domain error for duplicate resources
func NewConflictError(message string) *DomainError {
	return NewDomainError("ALREADY_EXISTS", message)
}

// NewStateError creates a domain error for operations invalid in the current status
func NewStateError(message string) *DomainError {
	return NewDomainError("INVALID_STATE", message)
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)
