package envelope

import (
	"sort"

	"github.com/cwbudde/algo-envelope/dsp"
	"github.com/cwbudde/algo-envelope/waveform"
)

// Sample is one (index, magnitude) point of a stroke.
type Sample struct {
	Index     int
	Magnitude float64
}

// Stroke is one committed pointer drag. It is immutable once committed.
type Stroke struct {
	Sign waveform.Sign
	// Raw holds the pointer samples in capture order.
	Raw []Sample
	// Writes holds the interpolated, clipped values the stroke wrote, by ascending index.
	Writes []Sample

	prior []priorValue
}

type priorValue struct {
	value float64
	drawn bool
}

// Touched returns the indices the stroke wrote, ascending.
func (s *Stroke) Touched() []int {
	out := make([]int, len(s.Writes))
	for i, w := range s.Writes {
		out[i] = w.Index
	}
	return out
}

// builder accumulates one stroke while the pointer is down.
type builder struct {
	sign    waveform.Sign
	raw     []Sample
	values  map[int]float64
	prevIdx int
	prevMag float64
}

func newBuilder(sign waveform.Sign) *builder {
	return &builder{sign: sign, values: make(map[int]float64)}
}

// add records a pointer sample and fills any index gap since the previous
// sample by linear interpolation. Later writes to an index replace earlier ones.
func (b *builder) add(index int, magnitude float64) {
	if len(b.raw) == 0 || index == b.prevIdx {
		b.values[index] = magnitude
	} else {
		lo, hi := b.prevIdx, index
		vlo, vhi := b.prevMag, magnitude
		if lo > hi {
			lo, hi = hi, lo
			vlo, vhi = vhi, vlo
		}
		ramp := dsp.Ramp(vlo, vhi, hi-lo+1)
		for k, v := range ramp {
			b.values[lo+k] = v
		}
	}
	b.raw = append(b.raw, Sample{Index: index, Magnitude: magnitude})
	b.prevIdx = index
	b.prevMag = magnitude
}

// writes returns the clipped per-index values in ascending index order.
func (b *builder) writes() []Sample {
	out := make([]Sample, 0, len(b.values))
	for i, v := range b.values {
		if v < 0 {
			v = 0
		}
		out = append(out, Sample{Index: i, Magnitude: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
