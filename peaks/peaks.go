// Package peaks detects the local extrema of a waveform that the synthesizer
// uses as scaling anchors.
package peaks

import "github.com/cwbudde/algo-envelope/waveform"

// Peak is a local extremum of a waveform.
type Peak struct {
	Index     int
	Amplitude float64
	Sign      waveform.Sign
}

// Index is the ordered peak sequence of one waveform.
type Index struct {
	peaks []Peak
	n     int
}

// Detect scans w for local extrema.
//
// Equal neighbouring samples are collapsed into runs first. A non-zero run is
// a peak when it is strictly more extreme (above for positive, below for
// negative values) than every neighbouring run; the peak is reported at the
// run's first index. Zero samples are never peaks.
func Detect(w *waveform.Waveform) *Index {
	n := w.Len()
	idx := &Index{n: n}
	if n == 0 {
		return idx
	}

	type run struct {
		start int
		value float64
	}
	runs := make([]run, 0, n)
	for i := 0; i < n; i++ {
		v := w.At(i)
		if len(runs) > 0 && runs[len(runs)-1].value == v {
			continue
		}
		runs = append(runs, run{start: i, value: v})
	}

	for r, cur := range runs {
		if cur.value == 0 {
			continue
		}
		positive := cur.value > 0
		extreme := true
		if r > 0 && !beyond(cur.value, runs[r-1].value, positive) {
			extreme = false
		}
		if r < len(runs)-1 && !beyond(cur.value, runs[r+1].value, positive) {
			extreme = false
		}
		if !extreme {
			continue
		}
		sign := waveform.Positive
		if !positive {
			sign = waveform.Negative
		}
		idx.peaks = append(idx.peaks, Peak{Index: cur.start, Amplitude: cur.value, Sign: sign})
	}
	return idx
}

func beyond(v, neighbour float64, positive bool) bool {
	if positive {
		return v > neighbour
	}
	return v < neighbour
}

// All returns a copy of every peak in index order.
func (x *Index) All() []Peak {
	return append([]Peak(nil), x.peaks...)
}

// Len returns the number of peaks.
func (x *Index) Len() int { return len(x.peaks) }

// SampleCount returns the length of the waveform the index was built from.
func (x *Index) SampleCount() int { return x.n }

// BySign returns the peaks of one sign in index order.
func (x *Index) BySign(s waveform.Sign) []Peak {
	var out []Peak
	for _, p := range x.peaks {
		if p.Sign == s {
			out = append(out, p)
		}
	}
	return out
}
