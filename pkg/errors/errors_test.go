package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthenticated, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeNetwork, status: 0, publicMsg: "network unreachable", retryable: true, detailsOK: true},
		{code: CodeTimeout, status: http.StatusRequestTimeout, publicMsg: "request timed out", retryable: true, detailsOK: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "service unavailable", retryable: true, detailsOK: true},
		{code: CodeStorageFull, status: 0, publicMsg: "local storage full", detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown code should map to internal, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("disk gone")
	err := Wrap(CodeStorage, cause, "persist cart")
	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to survive errors.Is")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeStorage {
		t.Fatalf("expected typed error through wrapping, got %v", typed)
	}
}

func TestRetryableClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "typed network", err: New(CodeNetwork, "fetch failed"), want: true},
		{name: "typed timeout", err: New(CodeTimeout, "deadline"), want: true},
		{name: "typed validation", err: New(CodeValidation, "bad payload"), want: false},
		{name: "typed unauthenticated", err: New(CodeUnauthenticated, "expired"), want: false},
		{name: "raw timeout message", err: stdErrors.New("request timed out after 10s"), want: true},
		{name: "raw refused message", err: stdErrors.New("dial tcp: connection refused"), want: true},
		{name: "raw app message", err: stdErrors.New("table 5 already has a submitted order"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Fatalf("%s: expected retryable=%v got %v", tt.name, tt.want, got)
		}
	}
}
