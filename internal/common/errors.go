// Package common provides shared utilities and types used across the engine.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Storage errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Configuration errors.
	ErrMissingConfig      = errors.New("missing configuration")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrConfigInconsistent = errors.New("inconsistent configuration")

	// Authorization errors.
	ErrForbidden = errors.New("operation not permitted for role")
)

// ValidationError reports malformed input to an operation. It is always
// recoverable locally and is raised before any state change.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for a named input field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RejectionKind names the specific policy check a well-formed request failed.
type RejectionKind string

// Policy rejection kinds, one per distinguishable check.
const (
	RejectCoolingActive RejectionKind = "cooling_active"
	RejectLimitSingle   RejectionKind = "limit_single"
	RejectLimitDaily    RejectionKind = "limit_daily"
	RejectLimitMonthly  RejectionKind = "limit_monthly"
	RejectSCARequired   RejectionKind = "sca_required"
)

// PolicyRejection is a structured denial of a money-movement request. The
// kind lets callers present a precise message instead of a generic failure.
// HoursRemaining is only meaningful for cooling rejections.
type PolicyRejection struct {
	Kind           RejectionKind
	Message        string
	HoursRemaining int
}

func (e *PolicyRejection) Error() string {
	return fmt.Sprintf("policy rejection (%s): %s", e.Kind, e.Message)
}

// LedgerError reports a failure from the external atomic move. It is surfaced
// verbatim to the caller and never retried by the engine.
type LedgerError struct {
	Err    error
	Reason string
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger operation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("ledger operation failed: %s", e.Reason)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
