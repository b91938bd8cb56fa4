package core

import (
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

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-1", RunID("run-1"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRunID(tt.input)
		if tt.hasError {
			if err == nil {
				t.Errorf("ParseRunID(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRunID(%q): unexpected error %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("ParseRunID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestComputeParamsHashIgnoresKeyOrder(t *testing.T) {
	a := ComputeParamsHash(map[string]interface{}{"points": 100, "prefix": "exper"})
	b := ComputeParamsHash(map[string]interface{}{"prefix": "exper", "points": 100})
	if a != b {
		t.Errorf("hash depends on key order: %s vs %s", a, b)
	}

	c := ComputeParamsHash(map[string]interface{}{"points": 1000, "prefix": "exper"})
	if a == c {
		t.Error("different parameters produced the same hash")
	}
	if len(a.Short()) != 12 {
		t.Errorf("Short() length = %d, want 12", len(a.Short()))
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(NewMissingColumnError("boundaries", "exper3")) {
		t.Error("missing column should be recoverable")
	}
	if !IsRecoverable(NewDegenerateSignalError("novice1", 2)) {
		t.Error("degenerate signal should be recoverable at batch level")
	}
	if IsRecoverable(NewUnmappedTimeError(12)) {
		t.Error("unmapped time must not be recoverable")
	}
	if !IsProgrammerError(NewUnmappedTimeError(12)) {
		t.Error("unmapped time is a programmer error")
	}
}
