// Package export writes modified waveforms as playable mono WAV files.
package export

import (
	"fmt"

	"github.com/cwbudde/algo-envelope/dsp"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/internal/wavio"
	"github.com/cwbudde/algo-envelope/waveform"
)

// Options controls export.
type Options struct {
	// ClipTolerance is the fraction of samples (0..1) allowed to clip before
	// the export reports a RangeError.
	ClipTolerance float64
}

func DefaultOptions() Options {
	return Options{ClipTolerance: 0}
}

func (o Options) Validate() error {
	if o.ClipTolerance < 0 || o.ClipTolerance > 1 {
		return fmt.Errorf("clip tolerance must be in [0,1], got %g", o.ClipTolerance)
	}
	return nil
}

// Report describes a correction pass.
type Report struct {
	Samples int
	Clipped int
	// FirstClip is the first clipped index, -1 when nothing clipped.
	FirstClip      int
	FirstClipValue float64
	// WorstIndex is the index of the largest pre-clip magnitude.
	WorstIndex int
	WorstValue float64
}

// ClippedFraction returns Clipped/Samples.
func (r Report) ClippedFraction() float64 {
	if r.Samples == 0 {
		return 0
	}
	return float64(r.Clipped) / float64(r.Samples)
}

// Correct subtracts baseline from every sample and clips to [-1, 1].
func Correct(w *waveform.Waveform, baseline float64) ([]float64, Report) {
	n := w.Len()
	out := make([]float64, n)
	rep := Report{Samples: n, FirstClip: -1}
	for i := 0; i < n; i++ {
		v := w.At(i) - baseline
		if a := abs(v); a > abs(rep.WorstValue) {
			rep.WorstIndex = i
			rep.WorstValue = v
		}
		if v > 1 || v < -1 {
			if rep.FirstClip < 0 {
				rep.FirstClip = i
				rep.FirstClipValue = v
			}
			rep.Clipped++
		}
		out[i] = dsp.Clamp(v, -1, 1)
	}
	return out, rep
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// WriteWAV corrects w by baseline and writes it to path as 16-bit mono PCM at
// the waveform's sample rate. The file is written completely or not at all.
//
// When more than opts.ClipTolerance of the samples clip, the file is still
// written with clipping applied and a *errs.RangeError naming the worst
// sample is returned alongside the report.
func WriteWAV(path string, w *waveform.Waveform, baseline float64, opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, err
	}
	data, rep := Correct(w, baseline)
	if err := wavio.WriteMono(path, data, w.SampleRate()); err != nil {
		return rep, fmt.Errorf("write %s: %w", path, err)
	}
	if rep.Clipped > 0 && rep.ClippedFraction() > opts.ClipTolerance {
		return rep, &errs.RangeError{
			Index:  rep.WorstIndex,
			Value:  rep.WorstValue,
			Reason: fmt.Sprintf("%d of %d samples clipped after baseline correction", rep.Clipped, rep.Samples),
		}
	}
	return rep, nil
}
