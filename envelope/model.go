package envelope

import (
	"math"

	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/waveform"
)

// State is the capture state of a Model.
type State int

const (
	Idle State = iota
	CapturingPositive
	CapturingNegative
)

func (s State) String() string {
	switch s {
	case CapturingPositive:
		return "capturing-positive"
	case CapturingNegative:
		return "capturing-negative"
	default:
		return "idle"
	}
}

// Model owns one track's envelope and its undo history, and turns pointer
// samples into committed strokes.
//
// Only committed strokes are visible through Envelope; the stroke being
// captured is exposed separately by Pending.
type Model struct {
	env     *Envelope
	history []*Stroke
	state   State
	pending *builder
}

// NewModel returns an idle model with a zero envelope of n samples.
func NewModel(n int) *Model {
	return &Model{env: New(n)}
}

// State returns the current capture state.
func (m *Model) State() State { return m.state }

// Capturing reports whether a stroke is mid-capture.
func (m *Model) Capturing() bool { return m.state != Idle }

// Envelope returns the committed envelope. Callers must not modify it while
// the model is in use; use Clone for an independent copy.
func (m *Model) Envelope() *Envelope { return m.env }

// Depth returns the number of strokes on the undo stack.
func (m *Model) Depth() int { return len(m.history) }

// Strokes returns the committed strokes, oldest first.
func (m *Model) Strokes() []*Stroke {
	return append([]*Stroke(nil), m.history...)
}

// Begin starts a stroke on one half of the envelope with its first sample.
// Beginning while already capturing discards the unfinished stroke.
func (m *Model) Begin(sign waveform.Sign, index int, magnitude float64) {
	m.pending = newBuilder(sign)
	if sign == waveform.Negative {
		m.state = CapturingNegative
	} else {
		m.state = CapturingPositive
	}
	m.Extend(index, magnitude)
}

// Extend appends a pointer sample to the stroke being captured. Samples
// outside the envelope or with a non-finite magnitude are ignored, as are
// calls while idle.
func (m *Model) Extend(index int, magnitude float64) {
	if m.pending == nil {
		return
	}
	if index < 0 || index >= m.env.Len() || math.IsNaN(magnitude) || math.IsInf(magnitude, 0) {
		return
	}
	m.pending.add(index, magnitude)
}

// Pending returns the interpolated values of the stroke being captured, or
// nil when idle.
func (m *Model) Pending() []Sample {
	if m.pending == nil {
		return nil
	}
	return m.pending.writes()
}

// Cancel drops the stroke being captured without touching the envelope.
func (m *Model) Cancel() {
	m.pending = nil
	m.state = Idle
}

// Commit writes the captured stroke into the envelope and pushes it onto the
// undo stack. A stroke without samples is dropped and reported with an
// EmptyStrokeWarning.
func (m *Model) Commit() (*Stroke, error) {
	b := m.pending
	m.Cancel()
	if b == nil || len(b.raw) == 0 {
		return nil, &errs.EmptyStrokeWarning{Op: "commit"}
	}

	st := &Stroke{
		Sign:   b.sign,
		Raw:    append([]Sample(nil), b.raw...),
		Writes: b.writes(),
	}
	st.prior = make([]priorValue, len(st.Writes))
	for k, w := range st.Writes {
		st.prior[k] = priorValue{
			value: m.env.At(b.sign, w.Index),
			drawn: m.env.IsDrawn(b.sign, w.Index),
		}
		m.env.restore(b.sign, w.Index, w.Magnitude, true)
	}
	m.history = append(m.history, st)
	return st, nil
}

// Undo pops the most recent stroke and puts back the values it overwrote,
// including values left by earlier strokes at overlapping indices.
func (m *Model) Undo() (*Stroke, error) {
	if m.Capturing() {
		return nil, errs.ErrCaptureInProgress
	}
	if len(m.history) == 0 {
		return nil, &errs.EmptyStrokeWarning{Op: "undo"}
	}
	st := m.history[len(m.history)-1]
	m.history[len(m.history)-1] = nil
	m.history = m.history[:len(m.history)-1]
	for k, w := range st.Writes {
		p := st.prior[k]
		m.env.restore(st.Sign, w.Index, p.value, p.drawn)
	}
	return st, nil
}

// Reset clears the envelope and the undo history. Any stroke being captured
// is discarded.
func (m *Model) Reset() {
	m.Cancel()
	m.env.Clear()
	clear(m.history)
	m.history = m.history[:0]
}

// Replace swaps in a restored envelope and clears the history. The envelope
// length must match.
func (m *Model) Replace(env *Envelope) error {
	if env.Len() != m.env.Len() {
		return &errs.RangeError{Index: env.Len(), Value: float64(m.env.Len()), Reason: "envelope length mismatch"}
	}
	m.Reset()
	m.env = env.Clone()
	return nil
}
