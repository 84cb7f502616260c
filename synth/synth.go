// Package synth derives the modified waveform from the original waveform, its
// peaks and a drawn envelope.
//
// Every peak becomes an anchor whose scale factor is the drawn magnitude at
// the peak divided by the peak amplitude. Each half of the waveform gets its
// own factor curve: linear between consecutive anchors of that sign and flat
// before the first and after the last one. A sample is multiplied by the
// curve of its own sign, so the original fine structure is kept while the
// peaks follow the drawing. A sign without anchors scales to silence.
package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-envelope/dsp"
	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/peaks"
	"github.com/cwbudde/algo-envelope/waveform"
)

// DefaultEpsilon is the smallest peak magnitude used as a divisor.
const DefaultEpsilon = 1e-6

// Options controls synthesis.
type Options struct {
	// Epsilon is the degenerate-peak floor; zero selects DefaultEpsilon.
	Epsilon float64
}

func DefaultOptions() Options {
	return Options{Epsilon: DefaultEpsilon}
}

// Anchor is one peak with its drawn magnitude and scale factor.
type Anchor struct {
	Peak   peaks.Peak
	Drawn  float64
	Factor float64
}

// Result is the output of Synthesize.
type Result struct {
	Waveform *waveform.Waveform
	// Anchors follows the peak index order.
	Anchors []Anchor
	// Warnings holds a DegeneratePeakWarning per near-zero peak.
	Warnings []error
}

// Synthesize builds a new waveform of the same length and rate as orig. It
// never modifies its inputs and is deterministic: equal inputs give
// bit-identical output.
func Synthesize(orig *waveform.Waveform, env *envelope.Envelope, idx *peaks.Index, opts Options) (*Result, error) {
	n := orig.Len()
	if env.Len() != n {
		return nil, fmt.Errorf("envelope length %d does not match waveform length %d", env.Len(), n)
	}
	if idx.SampleCount() != n {
		return nil, fmt.Errorf("peak index built for %d samples, waveform has %d", idx.SampleCount(), n)
	}
	eps := opts.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}

	res := &Result{}
	all := idx.All()
	res.Anchors = make([]Anchor, len(all))
	for k, p := range all {
		drawn := env.At(p.Sign, p.Index)
		a := Anchor{Peak: p, Drawn: drawn}
		mag := math.Abs(p.Amplitude)
		if mag < eps {
			res.Warnings = append(res.Warnings, &errs.DegeneratePeakWarning{Index: p.Index, Amplitude: p.Amplitude})
		} else {
			a.Factor = drawn / mag
		}
		res.Anchors[k] = a
	}

	curves := [2][]float64{
		factorCurve(res.Anchors, waveform.Positive, n),
		factorCurve(res.Anchors, waveform.Negative, n),
	}
	out := make([]float64, n)
	for i := range out {
		v := orig.At(i)
		out[i] = v * curves[waveform.SignOf(v)][i]
	}
	w, err := waveform.New(out, orig.SampleRate())
	if err != nil {
		return nil, err
	}
	res.Waveform = w
	return res, nil
}

// factorCurve expands the anchors of one sign into a per-sample factor.
func factorCurve(anchors []Anchor, sign waveform.Sign, n int) []float64 {
	curve := make([]float64, n)
	var pts []Anchor
	for _, a := range anchors {
		if a.Peak.Sign == sign {
			pts = append(pts, a)
		}
	}
	if len(pts) == 0 || n == 0 {
		return curve
	}

	first, last := pts[0], pts[len(pts)-1]
	for i := 0; i <= first.Peak.Index; i++ {
		curve[i] = first.Factor
	}
	for k := 0; k+1 < len(pts); k++ {
		a, b := pts[k], pts[k+1]
		for i := a.Peak.Index; i < b.Peak.Index; i++ {
			curve[i] = dsp.FlushDenormals(dsp.LerpIndex(a.Peak.Index, a.Factor, b.Peak.Index, b.Factor, i))
		}
	}
	for i := last.Peak.Index; i < n; i++ {
		curve[i] = last.Factor
	}
	return curve
}

// Factor returns the scale factor of the anchor at a peak index, or 0 when
// index is not a peak.
func (r *Result) Factor(index int) float64 {
	for _, a := range r.Anchors {
		if a.Peak.Index == index {
			return a.Factor
		}
	}
	return 0
}
