package actdb

import (
	"errors"
	"fmt"
)

// QueryError is returned by Query and ActNamed for caller programming errors.
//
// Query errors include:
//   - Invalid request: nil request, or Where with a nil predicate
//   - Unknown action: ActNamed with a name missing from the registry
//
// Lookups that simply match nothing are NOT errors; they return nil rows.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Request describes the offending request or action name.
	Request string
}

// QueryErrorCode categorizes query errors.
type QueryErrorCode string

const (
	// ErrCodeInvalidRequest indicates a request shape the engine cannot dispatch.
	ErrCodeInvalidRequest QueryErrorCode = "INVALID_REQUEST"

	// ErrCodeUnknownAction indicates a registry lookup miss.
	ErrCodeUnknownAction QueryErrorCode = "UNKNOWN_ACTION"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Request != "" {
		return fmt.Sprintf("%s: %s (request=%s)", e.Code, e.Message, e.Request)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidRequest returns true if the error is an invalid request error.
// Uses errors.As to handle wrapped errors.
func IsInvalidRequest(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeInvalidRequest
	}
	return false
}

// IsUnknownAction returns true if the error is an unknown action error.
func IsUnknownAction(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == ErrCodeUnknownAction
	}
	return false
}

// NewInvalidRequestError creates a QueryError for an undispatchable request.
func NewInvalidRequestError(request, message string) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Request: request,
	}
}

// NewUnknownActionError creates a QueryError for a registry miss.
func NewUnknownActionError(name string) *QueryError {
	return &QueryError{
		Code:    ErrCodeUnknownAction,
		Message: "action is not registered",
		Request: name,
	}
}

// Fault reports a broken engine invariant.
//
// DUPLICATE_VALUE and CORRUPT_INDEX are raised with panic: they mean the
// append path or the cache fill path is broken, and continuing would hand
// out values that violate memoization. NONDETERMINISTIC_ACTION is reported
// to the fault handler and resolution continues with the cached value.
type Fault struct {
	// Code identifies the broken invariant.
	Code FaultCode

	// Message is a human-readable description.
	Message string

	// ID is the affected entry.
	ID string

	// Version is the affected entry's version.
	Version int

	// Details contains additional context (e.g. value hashes).
	Details map[string]string
}

// FaultCode categorizes faults.
type FaultCode string

const (
	// FaultCodeDuplicateValue indicates a second cache fill for one id.
	FaultCodeDuplicateValue FaultCode = "DUPLICATE_VALUE"

	// FaultCodeCorruptIndex indicates a non-contiguous or non-action seq insert.
	FaultCodeCorruptIndex FaultCode = "CORRUPT_INDEX"

	// FaultCodeNondeterministicAction indicates re-evaluation disagreed with the cache.
	FaultCodeNondeterministicAction FaultCode = "NONDETERMINISTIC_ACTION"
)

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s (id=%s, version=%d)", f.Code, f.Message, f.ID, f.Version)
}

// IsFault returns true if err is (or wraps) a Fault with the given code.
func IsFault(err error, code FaultCode) bool {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code == code
	}
	return false
}

func newFault(code FaultCode, id string, version int, message string) *Fault {
	return &Fault{
		Code:    code,
		Message: message,
		ID:      id,
		Version: version,
	}
}
