package export

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/internal/wavio"
	"github.com/cwbudde/algo-envelope/waveform"
)

func TestCorrectSubtractsBaselineAndClips(t *testing.T) {
	in := []float64{0, 0.3, 0.5, -0.5, -0.9, 1.0, 0.95}
	w, err := waveform.New(in, 8000)
	if err != nil {
		t.Fatalf("waveform.New: %v", err)
	}
	out, rep := Correct(w, 0.3)
	for i, v := range in {
		want := math.Max(-1, math.Min(1, v-0.3))
		if out[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, out[i], want)
		}
	}
	if rep.Clipped != 1 || rep.FirstClip != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.WorstIndex != 4 || math.Abs(rep.WorstValue+1.2) > 1e-12 {
		t.Fatalf("unexpected worst sample %+v", rep)
	}
}

func TestWriteWAVMatchesCorrection(t *testing.T) {
	in := make([]float64, 400)
	for i := range in {
		in[i] = 0.3 + 0.6*math.Sin(2*math.Pi*float64(i)/40)
	}
	w, _ := waveform.New(in, 16000)
	path := filepath.Join(t.TempDir(), "1_future_tone.wav")
	rep, err := WriteWAV(path, w, 0.3, DefaultOptions())
	if err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if rep.Clipped != 0 {
		t.Fatalf("unexpected clipping %+v", rep)
	}
	got, rate, err := wavio.ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != 16000 || len(got) != len(in) {
		t.Fatalf("rate=%d len=%d", rate, len(got))
	}
	var mean float64
	for i := range in {
		want := in[i] - 0.3
		if math.Abs(got[i]-want) > 1e-3 {
			t.Fatalf("sample %d = %f, want %f", i, got[i], want)
		}
		mean += got[i]
	}
	if math.Abs(mean/float64(len(got))) > 1e-3 {
		t.Fatalf("DC offset not removed: mean %f", mean/float64(len(got)))
	}
}

func TestWriteWAVReportsExcessClipping(t *testing.T) {
	w, _ := waveform.New([]float64{0.2, 0.9, 1.0, 0.1}, 8000)
	path := filepath.Join(t.TempDir(), "loud.wav")
	rep, err := WriteWAV(path, w, -0.5, Options{ClipTolerance: 0.25})
	var re *errs.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if re.Index != 2 || math.Abs(re.Value-1.5) > 1e-12 {
		t.Fatalf("unexpected RangeError %+v", re)
	}
	if rep.Clipped != 2 {
		t.Fatalf("clipped = %d, want 2", rep.Clipped)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("file should still be written: %v", err)
	}

	// Within tolerance: no error.
	if _, err := WriteWAV(path, w, -0.5, Options{ClipTolerance: 0.5}); err != nil {
		t.Fatalf("expected no error within tolerance, got %v", err)
	}
}

func TestWriteWAVRejectsBadOptions(t *testing.T) {
	w, _ := waveform.New([]float64{0}, 8000)
	path := filepath.Join(t.TempDir(), "x.wav")
	if _, err := WriteWAV(path, w, 0, Options{ClipTolerance: 2}); err == nil {
		t.Fatalf("expected options error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no file expected after option failure")
	}
}
