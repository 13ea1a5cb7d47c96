package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("disk on fire")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, 0},
		{"not found", NewNotFoundError("/a", "Directory a not found."), KindNotFound},
		{"invalid input", NewInvalidInputError("bad"), KindInvalidInput},
		{"conflict", NewConflictError("/a", "exists", nil), KindConflict},
		{"backend", NewBackendFailure("mkdir", cause), KindBackendFailure},
		{"plain error", cause, KindBackendFailure},
		{"wrapped", fmt.Errorf("outer: %w", NewNotFoundError("", "gone")), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewBackendFailure("rename", errors.New("EXDEV"))
	if got, want := err.Error(), "BackendFailure: rename failed: EXDEV"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	nf := NewNotFoundError("/x/y", "Directory x not found.")
	if got, want := nf.Error(), "NotFound: Directory x not found. (path: /x/y)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewConflictError("/a", "duplicate", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !IsConflict(err) {
		t.Error("IsConflict() = false, want true")
	}
}

func TestInvalidInputDetails(t *testing.T) {
	err := NewInvalidInputError("validation failed",
		FieldError{Field: "/name", Message: "minLength: got 0, want 1"},
	)
	if !IsInvalidInput(err) {
		t.Fatal("IsInvalidInput() = false")
	}
	if len(err.Details) != 1 || err.Details[0].Field != "/name" {
		t.Errorf("Details = %+v", err.Details)
	}
}
