package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestVectorErrorIs(t *testing.T) {
	err := IndexNotFoundError("docs")
	if !errors.Is(err, ErrIndexNotFound) {
		t.Error("errors.Is should match the index-not-found sentinel")
	}
	if errors.Is(err, ErrVectorNotFound) {
		t.Error("errors.Is should not match a different code")
	}

	wrapped := WrapError("describeIndex", err)
	if !errors.Is(wrapped, ErrIndexNotFound) {
		t.Error("errors.Is should match through StoreError wrapping")
	}
}

func TestVectorErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := OperationFailedError("flush", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}

	var ve *VectorError
	if !errors.As(WrapError("upsert", err), &ve) {
		t.Fatal("errors.As should extract *VectorError through StoreError")
	}
	if ve.Code != CodeOperationFailed {
		t.Errorf("extracted code = %v, want %v", ve.Code, CodeOperationFailed)
	}
}

func TestDimensionMismatchError(t *testing.T) {
	err := DimensionMismatchError(128, 64)
	if err.Expected != 128 || err.Actual != 64 {
		t.Errorf("dimensions = (%d, %d), want (128, 64)", err.Expected, err.Actual)
	}
	msg := err.Error()
	if !strings.Contains(msg, "128") || !strings.Contains(msg, "64") {
		t.Errorf("message should carry both dimensions: %q", msg)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       *VectorError
		retryable bool
		client    bool
		server    bool
	}{
		{"index not found", IndexNotFoundError("x"), false, true, false},
		{"index already exists", IndexAlreadyExistsError("x"), false, true, false},
		{"vector not found", VectorNotFoundError("id"), false, true, false},
		{"dimension mismatch", DimensionMismatchError(3, 4), false, true, false},
		{"invalid query", InvalidQueryError("bad"), false, true, false},
		{"invalid filter", InvalidFilterError("bad"), false, true, false},
		{"invalid config", InvalidConfigError("bad"), false, true, false},
		{"not supported", NotSupportedError("text query"), false, true, false},
		{"query timeout", &VectorError{Code: CodeQueryTimeout}, true, false, false},
		{"connection failed", &VectorError{Code: CodeConnectionFailed}, true, false, false},
		{"concurrent modify", &VectorError{Code: CodeConcurrentModify}, true, false, false},
		{"insufficient storage", &VectorError{Code: CodeInsufficientStorage}, true, false, true},
		{"resource limit", ResourceLimitError("too many vectors"), false, false, true},
		{"serialization", SerializationError(fmt.Errorf("bad")), false, false, true},
		{"deserialization", DeserializationError(fmt.Errorf("bad")), false, false, true},
		{"operation failed", OperationFailedError("op", nil), false, false, true},
		{"internal", InternalError("bug", nil), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.IsRetryable(); got != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.retryable)
			}
			if got := tt.err.IsClientError(); got != tt.client {
				t.Errorf("IsClientError() = %v, want %v", got, tt.client)
			}
			if got := tt.err.IsServerError(); got != tt.server {
				t.Errorf("IsServerError() = %v, want %v", got, tt.server)
			}
		})
	}
}

func TestClientServerDisjoint(t *testing.T) {
	codes := []ErrorCode{
		CodeIndexNotFound, CodeIndexAlreadyExists, CodeVectorNotFound,
		CodeDimensionMismatch, CodeInvalidQuery, CodeInvalidFilter,
		CodeQueryTimeout, CodeConnectionFailed, CodeAuthenticationFailed,
		CodePermissionDenied, CodeSerialization, CodeDeserialization,
		CodeInvalidConfig, CodeMissingConfig, CodeResourceLimitExceeded,
		CodeInsufficientStorage, CodeOutOfMemory, CodeNotSupported,
		CodeOperationFailed, CodeConcurrentModify, CodeInternal,
	}
	for _, code := range codes {
		err := &VectorError{Code: code}
		if err.IsClientError() && err.IsServerError() {
			t.Errorf("code %q classified as both client and server error", code)
		}
	}
}

func TestAsVectorError(t *testing.T) {
	ve, ok := AsVectorError(WrapError("search", IndexNotFoundError("docs")))
	if !ok || ve.Code != CodeIndexNotFound {
		t.Errorf("AsVectorError() = (%v, %v)", ve, ok)
	}

	if _, ok := AsVectorError(fmt.Errorf("plain error")); ok {
		t.Error("AsVectorError() should fail on plain errors")
	}
}

func TestWrapErrorNil(t *testing.T) {
	if WrapError("op", nil) != nil {
		t.Error("WrapError(op, nil) should be nil")
	}
}

func TestStoreErrorMessage(t *testing.T) {
	err := WrapError("createIndex", IndexAlreadyExistsError("docs"))
	msg := err.Error()
	if !strings.Contains(msg, "createIndex") {
		t.Errorf("message should include the operation: %q", msg)
	}
	if !strings.Contains(msg, "docs") {
		t.Errorf("message should include the cause: %q", msg)
	}
}
