package core

import (
	"errors"
	"math"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestParseHypothesisID(t *testing.T) {
	tests := []struct {
		input     string
		expectErr bool
	}{
		{"h-1", false},
		{"", true},
		{"   ", true},
	}

	for _, tt := range tests {
		_, err := ParseHypothesisID(tt.input)
		if tt.expectErr && err == nil {
			t.Errorf("Expected error for %q, got nil", tt.input)
		}
		if !tt.expectErr && err != nil {
			t.Errorf("Unexpected error for %q: %v", tt.input, err)
		}
	}
}

func TestFingerprintIsBoundarySafe(t *testing.T) {
	a := Fingerprint("a|b", "c")
	b := Fingerprint("a", "b|c")
	if a.Equals(b) {
		t.Error("Expected different fingerprints for different part boundaries")
	}
	if !Fingerprint("x", "y").Equals(Fingerprint("x", "y")) {
		t.Error("Expected identical fingerprints for identical parts")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Expected 12-char short hash, got %q", a.Short())
	}
}

func TestFingerprintMapOrderIndependent(t *testing.T) {
	m1 := map[string]string{"a": "1", "b": "2"}
	m2 := map[string]string{"b": "2", "a": "1"}
	if !FingerprintMap(m1).Equals(FingerprintMap(m2)) {
		t.Error("Expected map fingerprint to ignore insertion order")
	}
}

func TestNonFiniteErrorIsInputError(t *testing.T) {
	err := NewNonFiniteError("value", math.NaN())
	if !errors.Is(err, ErrNonFiniteInput) {
		t.Errorf("Expected ErrNonFiniteInput, got %v", err)
	}
	if !IsInputError(err) {
		t.Error("Expected non-finite error to classify as input error")
	}
}
