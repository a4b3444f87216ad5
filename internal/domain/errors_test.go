package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("connection refused")
	extErr := &ExternalSystemError{SystemType: "HTTP", Kind: ExternalNetworkError, Message: "fetch failed", Err: cause}

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "external is sentinel", err: extErr, target: ErrExternalSystem, want: true},
		{name: "external unwraps cause", err: extErr, target: cause, want: true},
		{name: "wrapped external", err: fmt.Errorf("import: %w", extErr), target: ErrExternalSystem, want: true},
		{name: "external is not integration", err: extErr, target: ErrIntegration, want: false},
		{name: "not found", err: &OrderNotFoundError{OrderID: "X"}, target: ErrOrderNotFound, want: true},
		{name: "integration", err: &IntegrationError{Op: "export", Message: "no valid orders"}, target: ErrIntegration, want: true},
		{name: "validation", err: &ValidationError{OrderID: "X", Violations: []string{"bad"}}, target: ErrValidation, want: true},
		{name: "nil error", err: nil, target: ErrIntegration, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExternalSystemErrorMessage(t *testing.T) {
	err := &ExternalSystemError{SystemType: "HTTP", Kind: ExternalProtocolError, StatusCode: 500, Message: "unexpected status"}
	want := "external system HTTP: protocol error (status 500): unexpected status"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}

	got, ok := AsExternalSystemError(fmt.Errorf("wrap: %w", err))
	if !ok || got.StatusCode != 500 {
		t.Fatalf("expected to extract external error, got %v %v", got, ok)
	}
	if _, ok := AsExternalSystemError(ErrIntegration); ok {
		t.Fatal("integration error must not be reported as external")
	}
}
