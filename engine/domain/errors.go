package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for ingestion validation failures.
var (
	ErrInvalidOpportunity = errors.New("invalid opportunity")
	ErrMissingID          = errors.New("missing opportunity id")
	ErrInvalidMileage     = errors.New("mileage must be positive")
	ErrInvalidRate        = errors.New("rate must be positive")
	ErrInvalidWeight      = errors.New("weight must be positive")
	ErrInvalidDimensions  = errors.New("dimensions must be positive")
	ErrUnknownClass       = errors.New("unknown vehicle class")
	ErrUnknownEquipment   = errors.New("unknown equipment type")
	ErrUnknownUrgency     = errors.New("unknown urgency tier")
	ErrUnknownSize        = errors.New("unknown load size")
	ErrMissingLane        = errors.New("origin and destination are required")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

// Unwrap exposes both the specific sentinel and the shared
// ErrInvalidOpportunity root, so callers can match either.
func (e *ValidationError) Unwrap() []error {
	return []error{e.Wrapped, ErrInvalidOpportunity}
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
