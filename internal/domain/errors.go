package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrPaymentNotFound = errors.New("payment not found")
)

// ValidationError is a user-correctable input error. Message is shown to the user verbatim.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// DataIntegrityWarning describes stored data that violates an invariant (negative amounts,
// unparseable dates). It never aborts a computation.
type DataIntegrityWarning struct {
	EntryID string `json:"entryId"`
	Field   string `json:"field"`
	Detail  string `json:"detail"`
}

func (w DataIntegrityWarning) String() string {
	return fmt.Sprintf("entry %s: %s: %s", w.EntryID, w.Field, w.Detail)
}
