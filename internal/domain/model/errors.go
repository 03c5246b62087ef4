package model

import (
	"errors"
	"fmt"
)

// ErrInvalidContext is matched by every validation failure raised while building
// a TransactionContext.
var ErrInvalidContext = errors.New("invalid transaction context")

// ErrInvalidCard is matched by every validation failure raised for a Card.
var ErrInvalidCard = errors.New("invalid card")

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.kind, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidContext) and errors.Is(err, ErrInvalidCard) work.
func (e *ValidationError) Is(target error) bool {
	return target == e.kind
}

func contextError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), kind: ErrInvalidContext}
}

func cardError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), kind: ErrInvalidCard}
}
