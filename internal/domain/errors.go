package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a rejected input (target, tolerance, item, query).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrSearchBudgetExceeded signals a combination search that stopped early.
	// Results returned alongside it are partial but valid.
	ErrSearchBudgetExceeded = errors.New("search budget exceeded")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrBillNotRemovable signals an attempt to remove a sold bill.
	ErrBillNotRemovable = errors.New("bill cannot be removed")
	// ErrInvalidStatusTransition signals a forbidden bill lifecycle change.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// InvalidArgumentError wraps ErrInvalidArgument with the offending field.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgument.Error(), e.Field, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// NewInvalidArgument creates an invalid argument error for field.
func NewInvalidArgument(field, format string, args ...any) error {
	return &InvalidArgumentError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
