package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Every validation failure wraps exactly one of them.
var (
	// ErrTypeMismatch reports a value that is not the expected kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrConstraintViolation reports a value of the right kind outside its allowed domain.
	ErrConstraintViolation = errors.New("constraint violation")
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Kind, e.Message)
}

// Unwrap exposes the kind so errors.Is(err, ErrConstraintViolation) works.
func (e *ValidationError) Unwrap() error { return e.Kind }

// TypeMismatch builds a ValidationError of kind ErrTypeMismatch.
func TypeMismatch(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Kind: ErrTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

// ConstraintViolation builds a ValidationError of kind ErrConstraintViolation.
func ConstraintViolation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Kind: ErrConstraintViolation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the sentinel kind carried by err, or nil if err is not a
// validation failure.
func KindOf(err error) error {
	switch {
	case errors.Is(err, ErrTypeMismatch):
		return ErrTypeMismatch
	case errors.Is(err, ErrConstraintViolation):
		return ErrConstraintViolation
	default:
		return nil
	}
}

// KindLabel maps a validation error to a short metrics/log label.
func KindLabel(err error) string {
	switch KindOf(err) {
	case ErrTypeMismatch:
		return "type_mismatch"
	case ErrConstraintViolation:
		return "constraint_violation"
	default:
		return "other"
	}
}
