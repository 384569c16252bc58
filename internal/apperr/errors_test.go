package apperr

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestErrorsAreStableStrings(t *testing.T) {
	cases := map[string]error{
		"capability unavailable": ErrCapabilityUnavailable,
		"store unreachable":      ErrStoreUnreachable,
		"parse failure":          ErrParse,
		"terminated":             ErrTerminated,
	}
	for want, e := range cases {
		if e == nil || e.Error() != want {
			t.Fatalf("error %q mismatch: got %#v", want, e)
		}
	}
}

func TestWrappedKindsMatch(t *testing.T) {
	err := fmt.Errorf("%w: set co2: %v", ErrStoreUnreachable, errors.New("dial tcp: refused"))
	if !errors.Is(err, ErrStoreUnreachable) {
		t.Fatalf("wrapped error lost its kind: %v", err)
	}
	if errors.Is(err, ErrTerminated) {
		t.Fatalf("unexpected kind match: %v", err)
	}
}

func TestTerminatedErrorUnwraps(t *testing.T) {
	err := fmt.Errorf("loop: %w", &TerminatedError{Signal: syscall.SIGTERM})
	if !errors.Is(err, ErrTerminated) {
		t.Fatalf("expected ErrTerminated in chain: %v", err)
	}
	var te *TerminatedError
	if !errors.As(err, &te) || te.Signal != syscall.SIGTERM {
		t.Fatalf("signal not preserved: %v", err)
	}
	if got := (&TerminatedError{}).Error(); got != "terminated" {
		t.Fatalf("got %q", got)
	}
}
