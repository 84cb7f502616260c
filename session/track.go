package session

import (
	"fmt"

	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/peaks"
	"github.com/cwbudde/algo-envelope/projector"
	"github.com/cwbudde/algo-envelope/synth"
	"github.com/cwbudde/algo-envelope/waveform"
)

// DefaultAxisHeadroom widens the drawing axis beyond the loudest sample.
const DefaultAxisHeadroom = 0.1

// Track is one waveform with its envelope, undo history and display settings.
// Tracks share nothing with each other.
type Track struct {
	// Name is used for output file names.
	Name     string
	Original *waveform.Waveform
	Peaks    *peaks.Index
	Model    *envelope.Model
	// Baseline is the display centering value. Synthesized output does not
	// contain it.
	Baseline float64
	Scheme   projector.ColorScheme
}

// NewTrack detects the peaks of w and creates an empty envelope for it.
func NewTrack(name string, w *waveform.Waveform, baseline float64) (*Track, error) {
	if w == nil || w.Len() == 0 {
		return nil, fmt.Errorf("track %q: empty waveform", name)
	}
	return &Track{
		Name:     name,
		Original: w,
		Peaks:    peaks.Detect(w),
		Model:    envelope.NewModel(w.Len()),
		Baseline: baseline,
		Scheme:   projector.DefaultScheme,
	}, nil
}

// Synthesize derives the modified waveform from the committed envelope.
func (t *Track) Synthesize(opts synth.Options) (*synth.Result, error) {
	return synth.Synthesize(t.Original, t.Model.Envelope(), t.Peaks, opts)
}

// Centered returns w shifted up by the baseline, the form shown on screen
// and handed to the exporter.
func (t *Track) Centered(w *waveform.Waveform) (*waveform.Waveform, error) {
	x := w.Samples()
	for i := range x {
		x[i] += t.Baseline
	}
	return waveform.New(x, w.SampleRate())
}

// axisRange is the distance from the baseline to the top edge of the band.
func (t *Track) axisRange() float64 {
	m := t.Original.MaxAbs()
	if m == 0 {
		m = 1
	}
	return m * (1 + DefaultAxisHeadroom)
}

// sampleIndex maps a normalized x in [0,1] to the nearest sample index.
func (t *Track) sampleIndex(x float64) int {
	n := t.Original.Len()
	i := int(x*float64(n-1) + 0.5)
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// amplitude maps a y in [0,1] inside the band (0 at the top) to an
// amplitude. The band is centered on the baseline.
func (t *Track) amplitude(local float64) float64 {
	return t.Baseline + t.axisRange()*(1-2*local)
}
