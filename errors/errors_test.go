package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	err = New(ErrCodeTransformFailure, "bad batch", http.StatusInternalServerError)
	if err.Retryable {
		t.Error("TRANSFORM_FAILURE should not be retryable")
	}
}

func TestConfiguration(t *testing.T) {
	err := Configuration("batch_size", "must be positive")
	if err.Code != ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", err.Code)
	}
	if err.Details["field"] != "batch_size" {
		t.Errorf("expected field=batch_size, got %v", err.Details["field"])
	}
	if !strings.Contains(err.Error(), "batch_size must be positive") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTransformFailure_UnwrapsCause(t *testing.T) {
	cause := stderrors.New("decode failed")
	err := TransformFailure(2, cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["batch_index"] != 2 {
		t.Errorf("expected batch_index=2, got %v", err.Details["batch_index"])
	}
	if !strings.Contains(err.Error(), "cause: decode failed") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("next: %w", Timeout("next"))
	if !Is(err, ErrCodeTimeout) {
		t.Error("expected wrapped timeout to match")
	}
	if Is(err, ErrCodeTransformFailure) {
		t.Error("unexpected match on TRANSFORM_FAILURE")
	}
	if Is(nil, ErrCodeTimeout) {
		t.Error("nil error must not match")
	}
	if !IsRetryable(err) {
		t.Error("timeout should be retryable")
	}
}

func TestCodeOf_PlainError(t *testing.T) {
	if code := CodeOf(stderrors.New("plain")); code != "" {
		t.Errorf("expected empty code, got %q", code)
	}
}

func TestWithDetails(t *testing.T) {
	err := NotFound("cache entry", "abc").WithDetails(map[string]any{"dir": ".cache"})
	if err.Details["id"] != "abc" || err.Details["dir"] != ".cache" {
		t.Errorf("unexpected details %v", err.Details)
	}
	err = Internal(nil).WithDetail("k", 1)
	if err.Details["k"] != 1 {
		t.Errorf("expected k=1, got %v", err.Details["k"])
	}
}

func TestToResponse(t *testing.T) {
	resp := Cancelled("pipeline").ToResponse()
	if resp.Error.Code != ErrCodeCancelled {
		t.Errorf("expected CANCELLED, got %s", resp.Error.Code)
	}
	if resp.Error.Details["operation"] != "pipeline" {
		t.Errorf("unexpected details %v", resp.Error.Details)
	}
}
