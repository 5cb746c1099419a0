// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Fatal run errors: these invalidate every fund's estimate and abort
	// the whole run.
	ErrMissingGoldData = &Error{Code: "MISSING_GOLD_DATA", Message: "gold price data missing or invalid"}
	ErrMissingFxData   = &Error{Code: "MISSING_FX_DATA", Message: "fx rate missing or invalid"}
	ErrDivisionByZero  = &Error{Code: "DIVISION_BY_ZERO", Message: "division by zero"}

	// Per-fund errors: these exclude a single fund and never abort the batch.
	ErrMissingFundData  = &Error{Code: "MISSING_FUND_DATA", Message: "fund record missing required fields"}
	ErrZeroEstimatedNAV = &Error{Code: "ZERO_ESTIMATED_NAV", Message: "estimated NAV is zero"}
	ErrDuplicateFund    = &Error{Code: "DUPLICATE_FUND", Message: "duplicate fund code"}

	// Collector errors
	ErrCollectorFailed = &Error{Code: "COLLECTOR_FAILED", Message: "collector failed"}
	ErrNoData          = &Error{Code: "NO_DATA", Message: "no data available"}

	// Storage errors
	ErrNotFound      = &Error{Code: "NOT_FOUND", Message: "not found"}
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// API errors
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}
)
