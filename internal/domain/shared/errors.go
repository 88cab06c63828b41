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

// Is reports whether target is a DomainError with the same code.
// This lets callers match on code with errors.Is even when the message differs.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Return validation failures. These are surfaced to callers by code so the
// dashboard can show a specific message.
var (
	ErrEmptySelection         = NewDomainError("EMPTY_SELECTION", "At least one product must be selected for the return")
	ErrReturnQuantityExceeded = NewDomainError("RETURN_QUANTITY_EXCEEDED", "Return quantity exceeds the quantity available for return")
	ErrFullReturnExists       = NewDomainError("FULL_RETURN_EXISTS", "An active full return already exists for this order")
	ErrLineNotInOrder         = NewDomainError("LINE_NOT_IN_ORDER", "Selected product is not part of the order")
	ErrDuplicateRequest       = NewDomainError("DUPLICATE_REQUEST", "This request has already been processed")
)
