package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_RendersFieldsSorted(t *testing.T) {
	err := &ValidationError{
		Message: "Validation failed",
		Fields: map[string]string{
			"sourceType": "sourceType is required",
			"metadata":   "metadata must be a valid JSON document",
		},
	}
	want := "Validation failed (metadata: metadata must be a valid JSON document; sourceType: sourceType is required)"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestValidationError_FieldsOnly(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"metadata": "bad"}}
	if got := err.Error(); got != "metadata: bad" {
		t.Errorf("got %q", got)
	}
}

func TestErrorPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load alert 9: %w", &NotFoundError{Resource: "alert", ID: 9})
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should unwrap")
	}
	if IsAuthorization(wrapped) || IsValidation(wrapped) {
		t.Error("predicates must not cross error kinds")
	}

	var te *TransientError
	chain := fmt.Errorf("poll: %w", &TransientError{StatusCode: 503, Err: errors.New("down")})
	if !errors.As(chain, &te) || te.StatusCode != 503 {
		t.Error("TransientError should unwrap with its status code")
	}
}

func TestStatusTerminal(t *testing.T) {
	if StatusOpen.Terminal() || StatusEscalated.Terminal() {
		t.Error("OPEN and ESCALATED are live states")
	}
	if !StatusResolved.Terminal() || !StatusAutoClosed.Terminal() {
		t.Error("RESOLVED and AUTO_CLOSED are terminal")
	}
}
