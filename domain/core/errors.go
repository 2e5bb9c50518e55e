package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInvalidInput      = errors.New("invalid input")
	ErrNonFiniteInput    = fmt.Errorf("%w: non-finite numeric value", ErrInvalidInput)
	ErrEmptyPayload      = fmt.Errorf("%w: empty payload", ErrInvalidInput)
	ErrUnknownCheckpoint = fmt.Errorf("%w: unknown checkpoint", ErrInvalidInput)
	ErrUnknownPolicy     = fmt.Errorf("%w: unknown axiom policy", ErrInvalidInput)

	// External strategy errors
	ErrPriorArtLookup = errors.New("prior-art lookup failed")

	// Determinism errors
	ErrNonDeterministic = errors.New("non-deterministic result")
	ErrHashMismatch     = errors.New("hash mismatch")
)

// NewNonFiniteError reports which named input carried NaN or ±Inf
func NewNonFiniteError(field string, value float64) error {
	return fmt.Errorf("%w: %s=%v", ErrNonFiniteInput, field, value)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

func NewPriorArtError(hypothesisID string, err error) error {
	return fmt.Errorf("%w for hypothesis %s: %v", ErrPriorArtLookup, hypothesisID, err)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrNonDeterministic) ||
		errors.Is(err, ErrHashMismatch)
}
