package core

import (
	"errors"
	"fmt"
)

// User-facing validation messages.
const (
	MsgMissingField       = "Text, amount, category, or date is missing"
	MsgInvalidAmount      = "Amount must be a positive number less than 1,000,000"
	MsgDescriptionTooLong = "Description must be less than 500 characters"
	MsgInvalidCategory    = "Invalid category selected"
	MsgInvalidDate        = "Invalid date format"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("user not found")
	ErrUnresolvable    = errors.New("user cannot be resolved")
	ErrStore           = errors.New("database error")

	// ErrNotFound is returned by stores and never leaves the service layer;
	// callers see ErrStore so record existence is not disclosed.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes the first input field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps an underlying persistence failure behind ErrStore.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
