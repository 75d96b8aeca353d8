package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorUnwrap(t *testing.T) {
	derr := NewDomainError(ErrorCodeStateConflict, ErrIllegalTransition)

	if !errors.Is(derr, ErrIllegalTransition) {
		t.Error("DomainError must unwrap to the original error")
	}

	wrapped := fmt.Errorf("apply batch item: %w", derr)
	var out *DomainError

	if !errors.As(wrapped, &out) || out.Code != ErrorCodeStateConflict {
		t.Errorf("errors.As through wrapping failed: %v", wrapped)
	}
}

func TestNewValidationError(t *testing.T) {
	derr := NewValidationError("rating", ErrRatingRequired)

	if derr.Code != ErrorCodeValidation {
		t.Errorf("code = %s", derr.Code)
	}

	if derr.Field != "rating" {
		t.Errorf("field = %s", derr.Field)
	}

	if derr.Error() != ErrRatingRequired.Error() {
		t.Errorf("message = %s", derr.Error())
	}
}

func TestErrorCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewValidationError("rating", ErrRatingRequired), ErrorCodeValidation},
		{NewDomainError(ErrorCodeAuthorization, ErrAccessDenied), ErrorCodeAuthorization},
		{fmt.Errorf("lookup: %w", ErrNotFound), ErrorCodeNotFound},
		{errors.New("boom"), ErrorCodeInternal},
	}

	for _, tt := range tests {
		if got := ErrorCodeOf(tt.err); got != tt.want {
			t.Errorf("ErrorCodeOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
