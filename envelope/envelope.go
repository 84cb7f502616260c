// Package envelope holds the drawn amplitude envelope of a track and the
// stroke capture state machine that edits it.
package envelope

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-envelope/waveform"
)

// Envelope is a pair of non-negative magnitude curves, one per half of the
// waveform, measured from the track's baseline. Each half also remembers
// which indices have been drawn.
type Envelope struct {
	halves [2]half
}

type half struct {
	values []float64
	drawn  []bool
}

// New returns a zero-filled envelope of n samples.
func New(n int) *Envelope {
	e := &Envelope{}
	for s := range e.halves {
		e.halves[s] = half{values: make([]float64, n), drawn: make([]bool, n)}
	}
	return e
}

// Len returns the number of samples.
func (e *Envelope) Len() int { return len(e.halves[0].values) }

// At returns the magnitude of one half at index i.
func (e *Envelope) At(s waveform.Sign, i int) float64 { return e.halves[s].values[i] }

// Positive returns the positive magnitude at index i.
func (e *Envelope) Positive(i int) float64 { return e.halves[waveform.Positive].values[i] }

// Negative returns the negative magnitude at index i.
func (e *Envelope) Negative(i int) float64 { return e.halves[waveform.Negative].values[i] }

// IsDrawn reports whether index i of one half has been written by a stroke or
// restored from a persisted row.
func (e *Envelope) IsDrawn(s waveform.Sign, i int) bool { return e.halves[s].drawn[i] }

// DrawnIndices returns the drawn indices of one half in ascending order.
func (e *Envelope) DrawnIndices(s waveform.Sign) []int {
	var out []int
	for i, d := range e.halves[s].drawn {
		if d {
			out = append(out, i)
		}
	}
	return out
}

// Values returns a copy of one half.
func (e *Envelope) Values(s waveform.Sign) []float64 {
	return append([]float64(nil), e.halves[s].values...)
}

// Set writes magnitude v at index i of one half and marks it drawn.
func (e *Envelope) Set(s waveform.Sign, i int, v float64) error {
	if i < 0 || i >= e.Len() {
		return fmt.Errorf("envelope index %d out of range [0,%d)", i, e.Len())
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("envelope magnitude at %d must be finite and >= 0, got %g", i, v)
	}
	e.halves[s].values[i] = v
	e.halves[s].drawn[i] = true
	return nil
}

func (e *Envelope) restore(s waveform.Sign, i int, v float64, drawn bool) {
	e.halves[s].values[i] = v
	e.halves[s].drawn[i] = drawn
}

// Clear zeroes both halves and forgets every drawn index.
func (e *Envelope) Clear() {
	for s := range e.halves {
		clear(e.halves[s].values)
		clear(e.halves[s].drawn)
	}
}

// Clone returns a deep copy.
func (e *Envelope) Clone() *Envelope {
	c := &Envelope{}
	for s := range e.halves {
		c.halves[s] = half{
			values: append([]float64(nil), e.halves[s].values...),
			drawn:  append([]bool(nil), e.halves[s].drawn...),
		}
	}
	return c
}

// Equal reports whether both envelopes hold bit-identical values and drawn marks.
func (e *Envelope) Equal(o *Envelope) bool {
	if e.Len() != o.Len() {
		return false
	}
	for s := range e.halves {
		a, b := e.halves[s], o.halves[s]
		for i := range a.values {
			if math.Float64bits(a.values[i]) != math.Float64bits(b.values[i]) || a.drawn[i] != b.drawn[i] {
				return false
			}
		}
	}
	return true
}
