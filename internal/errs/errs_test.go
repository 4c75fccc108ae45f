package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(E(KindNotFound, "gone")); got != KindNotFound {
		t.Errorf("KindOf = %v, want not found", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v, want internal", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Errorf("KindOf(nil) = %v, want internal", got)
	}
}

func TestKindOfWalksWrapChain(t *testing.T) {
	inner := E(KindDuplicate, "email taken")
	outer := fmt.Errorf("creating user: %w", inner)
	if got := KindOf(outer); got != KindDuplicate {
		t.Errorf("KindOf(wrapped) = %v, want duplicate", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "query failed", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}
	if msg := err.Error(); msg != "query failed: connection refused" {
		t.Errorf("Error() = %q", msg)
	}
}

func TestHelpers(t *testing.T) {
	if !NotFound(E(KindNotFound, "x")) {
		t.Error("NotFound = false for a not-found error")
	}
	if NotFound(E(KindBadRequest, "x")) {
		t.Error("NotFound = true for a bad-request error")
	}
	if !Duplicate(E(KindDuplicate, "x")) {
		t.Error("Duplicate = false for a duplicate error")
	}
}
