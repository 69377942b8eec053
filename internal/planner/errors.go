package planner

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrInvalidAllotment is returned when the allotment is not a positive number.
	ErrInvalidAllotment = errors.New("invalid allotment")

	// ErrInvalidDate is returned when a cycle start date is not a real YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")
)

// ErrorKind names a validation failure in a stable, machine-readable form.
type ErrorKind string

const (
	KindInvalidAllotment ErrorKind = "invalid_allotment"
	KindInvalidDate      ErrorKind = "invalid_date"
)

// User-facing messages.
const (
	msgInvalidAllotment = "Allotment must be a positive number."
	msgAllotmentTooBig  = "Allotment is too large to plan."
	msgInvalidDate      = "Invalid date format. Please use YYYY-MM-DD."
)

// PlanError is a structured input-validation failure. It carries the kind,
// a message suitable for showing to the user, and the offending input.
type PlanError struct {
	Kind    ErrorKind
	Message string
	Input   string
}

func (e *PlanError) Error() string {
	if e.Input == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (got %q)", e.Message, e.Input)
}

// Unwrap maps the kind onto its sentinel so errors.Is works.
func (e *PlanError) Unwrap() error {
	switch e.Kind {
	case KindInvalidAllotment:
		return ErrInvalidAllotment
	case KindInvalidDate:
		return ErrInvalidDate
	}
	return nil
}

func invalidAllotment(msg, input string) *PlanError {
	return &PlanError{Kind: KindInvalidAllotment, Message: msg, Input: input}
}

func invalidDate(input string) *PlanError {
	return &PlanError{Kind: KindInvalidDate, Message: msgInvalidDate, Input: input}
}

// IsValidationError reports whether err is an input problem the user can fix.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAllotment) || errors.Is(err, ErrInvalidDate)
}
