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

// StatusError carries the upstream HTTP status behind a FEED_FAILED error.
// Retrieve it with errors.As.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// Predefined errors
var (
	// Data errors: a malformed or insufficient input series is unrecoverable
	// for the current run and never retried.
	ErrDataEmpty        = &Error{Code: "DATA_EMPTY", Message: "price series is empty"}
	ErrDataUnordered    = &Error{Code: "DATA_UNORDERED", Message: "price series timestamps not strictly increasing"}
	ErrDataInvalid      = &Error{Code: "DATA_INVALID", Message: "price series contains an invalid bar"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "series shorter than indicator warm-up"}

	// Config errors are rejected before a simulation starts.
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Feed errors
	ErrFeedFailed = &Error{Code: "FEED_FAILED", Message: "price feed request failed"}

	// Ledger errors
	ErrLedgerFailed   = &Error{Code: "LEDGER_FAILED", Message: "ledger operation failed"}
	ErrRecordNotFound = &Error{Code: "RECORD_NOT_FOUND", Message: "record not found"}

	// Classifier errors
	ErrClassifierFailed = &Error{Code: "CLASSIFIER_FAILED", Message: "classifier call failed"}

	// LLM errors
	ErrLLMFailed = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}
)
