package pathstore

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the failure class of a store operation.
type ErrorCode string

const (
	// CodeNotFound is returned when a read addresses missing data and the
	// store was configured with Options.ErrorOnMissing.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeInvalidKey is returned when a dictionary key contains the path
	// separator or bracket characters.
	CodeInvalidKey ErrorCode = "INVALID_KEY"
	// CodeInvalidLocator is returned when a locator of the wrong kind is
	// supplied, or more than one locator is supplied.
	CodeInvalidLocator ErrorCode = "INVALID_LOCATOR"
	// CodeMissingKey is returned when a dictionary write requires a key
	// locator and none was supplied.
	CodeMissingKey ErrorCode = "MISSING_KEY"
	// CodeMissingIndex is returned when an array merge requires an index
	// locator and none was supplied.
	CodeMissingIndex ErrorCode = "MISSING_INDEX"
	// CodeMergeTargetMissing is returned when Merge addresses a path with no
	// existing data.
	CodeMergeTargetMissing ErrorCode = "MERGE_TARGET_MISSING"
	// CodeIndexOutOfRange is returned when an explicit array index is not a
	// valid element or insertion point.
	CodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"
	// CodeUnknownPath is returned when an operation addresses a path that has
	// no declared entry.
	CodeUnknownPath ErrorCode = "UNKNOWN_PATH"
	// CodeIOFailure is returned when reading or writing the backing file
	// fails during Load, Save or Reload.
	CodeIOFailure ErrorCode = "IO_FAILURE"
)

// StoreError is the concrete error type returned by all store operations.
type StoreError struct {
	code       ErrorCode
	message    string
	wrappedErr error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// Code returns the error code.
func (e *StoreError) Code() ErrorCode {
	return e.code
}

// Unwrap returns the wrapped error if any.
func (e *StoreError) Unwrap() error {
	return e.wrappedErr
}

// CodeOf extracts the ErrorCode from err, or "" if err does not carry one.
func CodeOf(err error) ErrorCode {
	var se *StoreError
	if errors.As(err, &se) {
		return se.code
	}
	return ""
}

// storeErrorf builds a StoreError with a formatted message.
func storeErrorf(code ErrorCode, format string, args ...any) *StoreError {
	return &StoreError{code: code, message: fmt.Sprintf(format, args...)}
}

// ioFailure wraps an underlying I/O error.
func ioFailure(message string, err error) *StoreError {
	return &StoreError{code: CodeIOFailure, message: message, wrappedErr: err}
}
