// Package errs holds the error taxonomy shared by the envelope packages.
//
// Fatal conditions (FormatError, SchemaError, RangeError) are returned to the
// caller. Warnings (DegeneratePeakWarning, EmptyStrokeWarning) describe
// conditions the core absorbs locally; use IsWarning to tell them apart.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCaptureInProgress = errors.New("stroke capture in progress")
	ErrLayoutFrozen      = errors.New("layout is finalized")
	ErrWrongPhase        = errors.New("operation not allowed in current phase")
	ErrTrackIndex        = errors.New("track index out of range")
)

// FormatError reports a malformed persisted row.
type FormatError struct {
	Row    int // 1-based data row, 0 for the header
	Column string
	Index  int
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("format error at row %d column %q (value %q): %s", e.Row, e.Column, e.Value, e.Reason)
	}
	return fmt.Sprintf("format error at row %d (index %d): %s", e.Row, e.Index, e.Reason)
}

// SchemaError reports required columns missing from a persisted header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: missing required columns %s", strings.Join(e.Missing, ", "))
}

// RangeError reports an index out of bounds or a sample that cannot be
// represented after correction.
type RangeError struct {
	Index  int
	Value  float64
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range error at index %d (value %g): %s", e.Index, e.Value, e.Reason)
}

// DegeneratePeakWarning is raised when a peak is too small to divide by.
// Synthesis continues with a zero scale factor at that anchor.
type DegeneratePeakWarning struct {
	Index     int
	Amplitude float64
}

func (w *DegeneratePeakWarning) Error() string {
	return fmt.Sprintf("degenerate peak at index %d (amplitude %g): scale factor forced to 0", w.Index, w.Amplitude)
}

// EmptyStrokeWarning is raised by a commit with no samples or an undo with an
// empty history. Both are no-ops.
type EmptyStrokeWarning struct {
	Op string
}

func (w *EmptyStrokeWarning) Error() string {
	return fmt.Sprintf("%s: nothing to apply", w.Op)
}

// IsWarning reports whether err is (or wraps) a non-fatal warning.
func IsWarning(err error) bool {
	var dp *DegeneratePeakWarning
	var es *EmptyStrokeWarning
	return errors.As(err, &dp) || errors.As(err, &es)
}
