package resilience

import (
	"errors"

	rerrors "github.com/slok/goresilience/errors"
)

var (
	// ErrCircuitOpen is returned when the circuit refuses to attempt a call.
	ErrCircuitOpen = rerrors.ErrCircuitOpen

	// ErrTimeout is returned when a guarded call exceeds its time budget.
	ErrTimeout = rerrors.ErrTimeout
)

// Reason classifies why a guarded call did not produce a result.
type Reason string

const (
	ReasonCircuitOpen  Reason = "circuit_open"
	ReasonTimeout      Reason = "timeout"
	ReasonStoreFailure Reason = "store_failure"
)

// ReasonOf maps a guard error to its Reason.
func ReasonOf(err error) Reason {
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return ReasonCircuitOpen
	case errors.Is(err, ErrTimeout):
		return ReasonTimeout
	default:
		return ReasonStoreFailure
	}
}

// IsDegraded reports whether err was produced by the guard itself rather than
// by the guarded dependency.
func IsDegraded(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTimeout)
}
