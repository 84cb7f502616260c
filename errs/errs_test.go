package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsWarning(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"degenerate", &DegeneratePeakWarning{Index: 3, Amplitude: 1e-12}, true},
		{"empty", &EmptyStrokeWarning{Op: "undo"}, true},
		{"wrapped", fmt.Errorf("track 1: %w", &EmptyStrokeWarning{Op: "commit"}), true},
		{"format", &FormatError{Row: 2, Index: 9, Reason: "bad"}, false},
		{"range", &RangeError{Index: 1, Value: 2}, false},
		{"sentinel", ErrLayoutFrozen, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWarning(tt.err); got != tt.want {
				t.Fatalf("IsWarning(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessagesCarryOffendingValues(t *testing.T) {
	var fe error = &FormatError{Row: 4, Column: "index", Value: "abc", Reason: "not an integer"}
	if !strings.Contains(fe.Error(), `"abc"`) || !strings.Contains(fe.Error(), "row 4") {
		t.Fatalf("unexpected message: %s", fe)
	}
	se := &SchemaError{Missing: []string{"index", "drawn_positive"}}
	if !strings.Contains(se.Error(), "index, drawn_positive") {
		t.Fatalf("unexpected message: %s", se)
	}
	var target *FormatError
	if !errors.As(fmt.Errorf("decode: %w", fe), &target) || target.Row != 4 {
		t.Fatalf("errors.As failed for wrapped FormatError")
	}
}
