package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestInvalid_MatchesValidationClass(t *testing.T) {
	err := Invalid("UPI Reference ID required")
	if err.Error() != "UPI Reference ID required" {
		t.Fatalf("message=%q", err.Error())
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation class")
	}
	wrapped := fmt.Errorf("place order: %w", err)
	if !errors.Is(wrapped, ErrValidation) {
		t.Fatalf("wrapped error lost its class")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("validation error must not match ErrNotFound")
	}
}
