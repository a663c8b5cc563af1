package types

import (
	"errors"
	"fmt"
	"testing"
)

var errCause = errors.New("cause")

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		validation bool
		notFound   bool
		system     bool
	}{
		{"validation", Validationf(errCause, "bad %s", "input"), true, false, false},
		{"not found", NotFoundf(errCause, "missing %d", 1), false, true, false},
		{"system", Systemf(errCause, "db down"), false, false, true},
		{"wrapped validation", fmt.Errorf("add: %w", Validationf(nil, "bad")), true, false, false},
		{"plain", errCause, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
			if got := IsSystem(tt.err); got != tt.system {
				t.Errorf("IsSystem() = %v, want %v", got, tt.system)
			}
		})
	}
}

func TestErrorsUnwrapToCause(t *testing.T) {
	for _, err := range []error{
		Validationf(errCause, "v"),
		NotFoundf(errCause, "n"),
		Systemf(errCause, "s"),
	} {
		if !errors.Is(err, errCause) {
			t.Errorf("%v does not unwrap to cause", err)
		}
	}
}

func TestSystemErrorMessage(t *testing.T) {
	err := Systemf(errCause, "load transactions")
	if err.Error() != "load transactions: cause" {
		t.Errorf("Error() = %q", err.Error())
	}
	if Systemf(nil, "plain").Error() != "plain" {
		t.Errorf("Error() without cause should be the message")
	}
}
