// Package waveform holds the immutable mono sample sequences the envelope
// engine works on, and loads them from WAV files.
package waveform

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-envelope/internal/wavio"
	"gonum.org/v1/gonum/floats"
)

// Waveform is an immutable mono sample sequence with its sample rate.
// Samples are expected in [-1, 1].
type Waveform struct {
	samples    []float64
	sampleRate int
}

// New copies samples into a new Waveform.
func New(samples []float64, sampleRate int) (*Waveform, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0, got %d", sampleRate)
	}
	for i, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite sample at index %d", i)
		}
	}
	return &Waveform{
		samples:    append([]float64(nil), samples...),
		sampleRate: sampleRate,
	}, nil
}

// Len returns the number of samples.
func (w *Waveform) Len() int { return len(w.samples) }

// SampleRate returns the sample rate in Hz.
func (w *Waveform) SampleRate() int { return w.sampleRate }

// At returns the sample at index i.
func (w *Waveform) At(i int) float64 { return w.samples[i] }

// Samples returns a copy of the sample data.
func (w *Waveform) Samples() []float64 {
	return append([]float64(nil), w.samples...)
}

// MaxAbs returns the largest absolute sample value.
func (w *Waveform) MaxAbs() float64 {
	if len(w.samples) == 0 {
		return 0
	}
	return floats.Norm(w.samples, math.Inf(1))
}

// Equal reports whether both waveforms hold bit-identical samples at the same rate.
func (w *Waveform) Equal(o *Waveform) bool {
	if w == nil || o == nil {
		return w == o
	}
	if w.sampleRate != o.sampleRate || len(w.samples) != len(o.samples) {
		return false
	}
	for i := range w.samples {
		if math.Float64bits(w.samples[i]) != math.Float64bits(o.samples[i]) {
			return false
		}
	}
	return true
}

// Normalize scales x in place so its peak magnitude is 1. Silent input is left as is.
func Normalize(x []float64) {
	if len(x) == 0 {
		return
	}
	peak := floats.Norm(x, math.Inf(1))
	if peak <= 0 {
		return
	}
	floats.Scale(1/peak, x)
}

// LoadOptions controls Load.
type LoadOptions struct {
	// TargetRate resamples the file when > 0 and different from the file rate.
	TargetRate int
}

// Load reads a WAV file, averages it to mono and peak-normalizes it.
func Load(path string, opts LoadOptions) (*Waveform, error) {
	data, rate, err := wavio.ReadMono(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("load %s: empty wav data", path)
	}
	if opts.TargetRate > 0 && opts.TargetRate != rate {
		data, err = wavio.ResampleIfNeeded(data, rate, opts.TargetRate)
		if err != nil {
			return nil, fmt.Errorf("resample %s: %w", path, err)
		}
		rate = opts.TargetRate
	}
	Normalize(data)
	return New(data, rate)
}
