package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"app error wins", Newf(ErrInternal, 7, "custom %d", 7), 7},
		{"wrapped app error", fmt.Errorf("building: %w", New(ErrInvalidInput, ExitInvalidInput, "bad flag")), ExitInvalidInput},
		{"invalid input", fmt.Errorf("parsing: %w", ErrInvalidInput), ExitInvalidInput},
		{"document unavailable", fmt.Errorf("loading docs/a.txt: %w", ErrDocumentUnavailable), ExitInputUnavailable},
		{"input unavailable", ErrInputUnavailable, ExitInputUnavailable},
		{"unknown", errors.New("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := Newf(ErrDocumentUnavailable, ExitInputUnavailable, "opening %s", "d1.txt")
	if !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("expected errors.Is to match the sentinel")
	}
	if got, want := err.Error(), "document unavailable: opening d1.txt"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
