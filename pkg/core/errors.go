package core

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a storage failure. Every operation in the storage
// contract reports failures as typed *VectorError values; no operation
// panics on malformed caller input.
type ErrorCode string

const (
	CodeIndexNotFound         ErrorCode = "index_not_found"
	CodeIndexAlreadyExists    ErrorCode = "index_already_exists"
	CodeVectorNotFound        ErrorCode = "vector_not_found"
	CodeDimensionMismatch     ErrorCode = "dimension_mismatch"
	CodeInvalidQuery          ErrorCode = "invalid_query"
	CodeInvalidFilter         ErrorCode = "invalid_filter"
	CodeQueryTimeout          ErrorCode = "query_timeout"
	CodeConnectionFailed      ErrorCode = "connection_failed"
	CodeAuthenticationFailed  ErrorCode = "authentication_failed"
	CodePermissionDenied      ErrorCode = "permission_denied"
	CodeSerialization         ErrorCode = "serialization"
	CodeDeserialization       ErrorCode = "deserialization"
	CodeInvalidConfig         ErrorCode = "invalid_config"
	CodeMissingConfig         ErrorCode = "missing_config"
	CodeResourceLimitExceeded ErrorCode = "resource_limit_exceeded"
	CodeInsufficientStorage   ErrorCode = "insufficient_storage"
	CodeOutOfMemory           ErrorCode = "out_of_memory"
	CodeNotSupported          ErrorCode = "not_supported"
	CodeOperationFailed       ErrorCode = "operation_failed"
	CodeConcurrentModify      ErrorCode = "concurrent_modification"
	CodeInternal              ErrorCode = "internal"
)

// VectorError is the typed error value returned by every storage backend.
// Expected/Actual carry the dimensions for CodeDimensionMismatch.
type VectorError struct {
	Code     ErrorCode
	Message  string
	Expected int
	Actual   int
	Err      error
}

// Error implements the error interface
func (e *VectorError) Error() string {
	if e.Code == CodeDimensionMismatch {
		return fmt.Sprintf("%s: expected %d, got %d", e.Code, e.Expected, e.Actual)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any
func (e *VectorError) Unwrap() error { return e.Err }

// Is matches any *VectorError carrying the same code, so callers can test
// with errors.Is against the code sentinels below.
func (e *VectorError) Is(target error) bool {
	t, ok := target.(*VectorError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Code sentinels for errors.Is matching.
var (
	ErrIndexNotFound         = &VectorError{Code: CodeIndexNotFound}
	ErrIndexAlreadyExists    = &VectorError{Code: CodeIndexAlreadyExists}
	ErrVectorNotFound        = &VectorError{Code: CodeVectorNotFound}
	ErrDimensionMismatch     = &VectorError{Code: CodeDimensionMismatch}
	ErrInvalidQuery          = &VectorError{Code: CodeInvalidQuery}
	ErrInvalidFilter         = &VectorError{Code: CodeInvalidFilter}
	ErrQueryTimeout          = &VectorError{Code: CodeQueryTimeout}
	ErrConnectionFailed      = &VectorError{Code: CodeConnectionFailed}
	ErrNotSupported          = &VectorError{Code: CodeNotSupported}
	ErrResourceLimitExceeded = &VectorError{Code: CodeResourceLimitExceeded}
	ErrOperationFailed       = &VectorError{Code: CodeOperationFailed}
	ErrInternal              = &VectorError{Code: CodeInternal}
)

// IndexNotFoundError reports a missing index
func IndexNotFoundError(name string) *VectorError {
	return &VectorError{Code: CodeIndexNotFound, Message: fmt.Sprintf("index %q not found", name)}
}

// IndexAlreadyExistsError reports a name collision on index creation
func IndexAlreadyExistsError(name string) *VectorError {
	return &VectorError{Code: CodeIndexAlreadyExists, Message: fmt.Sprintf("index %q already exists", name)}
}

// VectorNotFoundError reports a missing document id
func VectorNotFoundError(id string) *VectorError {
	return &VectorError{Code: CodeVectorNotFound, Message: fmt.Sprintf("vector %q not found", id)}
}

// DimensionMismatchError reports an embedding whose length does not match
// the index dimension
func DimensionMismatchError(expected, actual int) *VectorError {
	return &VectorError{Code: CodeDimensionMismatch, Expected: expected, Actual: actual}
}

// InvalidQueryError reports a malformed search request
func InvalidQueryError(msg string) *VectorError {
	return &VectorError{Code: CodeInvalidQuery, Message: msg}
}

// InvalidFilterError reports a malformed filter condition
func InvalidFilterError(msg string) *VectorError {
	return &VectorError{Code: CodeInvalidFilter, Message: msg}
}

// NotSupportedError reports an operation the backend cannot perform
func NotSupportedError(msg string) *VectorError {
	return &VectorError{Code: CodeNotSupported, Message: msg}
}

// InvalidConfigError reports a rejected configuration
func InvalidConfigError(msg string) *VectorError {
	return &VectorError{Code: CodeInvalidConfig, Message: msg}
}

// ResourceLimitError reports an exceeded capacity limit
func ResourceLimitError(msg string) *VectorError {
	return &VectorError{Code: CodeResourceLimitExceeded, Message: msg}
}

// SerializationError wraps an encode failure
func SerializationError(err error) *VectorError {
	return &VectorError{Code: CodeSerialization, Message: "encode failed", Err: err}
}

// DeserializationError wraps a decode failure
func DeserializationError(err error) *VectorError {
	return &VectorError{Code: CodeDeserialization, Message: "decode failed", Err: err}
}

// OperationFailedError wraps a backend operation failure
func OperationFailedError(msg string, err error) *VectorError {
	return &VectorError{Code: CodeOperationFailed, Message: msg, Err: err}
}

// InternalError wraps an invariant violation. These indicate a defect, not
// a recoverable condition.
func InternalError(msg string, err error) *VectorError {
	return &VectorError{Code: CodeInternal, Message: msg, Err: err}
}

// IsRetryable reports whether a caller may reasonably retry the operation.
// The engines never retry internally; retry and backoff policy belongs
// entirely to the caller.
func (e *VectorError) IsRetryable() bool {
	switch e.Code {
	case CodeQueryTimeout, CodeConnectionFailed, CodeInsufficientStorage, CodeConcurrentModify:
		return true
	default:
		return false
	}
}

// IsClientError reports whether the failure was caused by caller input
func (e *VectorError) IsClientError() bool {
	switch e.Code {
	case CodeIndexNotFound, CodeIndexAlreadyExists, CodeVectorNotFound,
		CodeDimensionMismatch, CodeInvalidQuery, CodeInvalidFilter,
		CodeInvalidConfig, CodeMissingConfig, CodeNotSupported,
		CodeAuthenticationFailed, CodePermissionDenied:
		return true
	default:
		return false
	}
}

// IsServerError reports whether the failure originated in the backend
func (e *VectorError) IsServerError() bool {
	switch e.Code {
	case CodeSerialization, CodeDeserialization, CodeResourceLimitExceeded,
		CodeInsufficientStorage, CodeOutOfMemory, CodeOperationFailed,
		CodeInternal:
		return true
	default:
		return false
	}
}

// AsVectorError extracts a *VectorError from an error chain
func AsVectorError(err error) (*VectorError, bool) {
	var ve *VectorError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StoreError wraps errors with operation context
type StoreError struct {
	Op  string // Operation name
	Err error  // Underlying error
}

// Error implements the error interface
func (e *StoreError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("vexdb: %v", e.Err)
	}
	return fmt.Sprintf("vexdb: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StoreError) Unwrap() error { return e.Err }

// Is checks if the error matches the target
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapError wraps an error with operation context
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
