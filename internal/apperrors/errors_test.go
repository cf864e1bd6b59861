package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := WithMetadata(CodeNotFound, "order not found", map[string]string{"id": "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match NOT_FOUND")
	}
	if errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unexpected match on different code")
	}
}

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("compose: %w", Wrap(CodeSequenceUnavailable, "allocate", cause))

	if !errors.Is(err, cause) {
		t.Fatalf("cause lost in chain")
	}
	if got := CodeOf(err); got != CodeSequenceUnavailable {
		t.Fatalf("CodeOf = %s, want %s", got, CodeSequenceUnavailable)
	}
	if got := err.Error(); got != "compose: allocate: connection refused" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != CodeUnknown {
		t.Fatalf("CodeOf = %s, want UNKNOWN", got)
	}
}

func TestNotFoundMetadata(t *testing.T) {
	err := NotFound("invoice", "abc")
	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error")
	}
	if e.Metadata["kind"] != "invoice" || e.Metadata["id"] != "abc" {
		t.Fatalf("unexpected metadata %#v", e.Metadata)
	}
}
