package peaks

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-envelope/waveform"
)

func mustWave(t *testing.T, s []float64) *waveform.Waveform {
	t.Helper()
	w, err := waveform.New(s, 1000)
	if err != nil {
		t.Fatalf("waveform.New: %v", err)
	}
	return w
}

func TestDetectRiseFall(t *testing.T) {
	x := Detect(mustWave(t, []float64{0, 1, 2, 3, 2, 1, 0}))
	got := x.All()
	if len(got) != 1 {
		t.Fatalf("expected 1 peak, got %d: %+v", len(got), got)
	}
	if got[0].Index != 3 || got[0].Sign != waveform.Positive || got[0].Amplitude != 3 {
		t.Fatalf("unexpected peak: %+v", got[0])
	}
}

func TestDetectSignedExtrema(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []Peak
	}{
		{
			name: "alternating",
			in:   []float64{0, 0.5, 0, -0.7, 0, 0.2, 0},
			want: []Peak{{1, 0.5, waveform.Positive}, {3, -0.7, waveform.Negative}, {5, 0.2, waveform.Positive}},
		},
		{
			name: "plateau keeps first index",
			in:   []float64{0, 0.4, 0.9, 0.9, 0.9, 0.3, 0},
			want: []Peak{{2, 0.9, waveform.Positive}},
		},
		{
			name: "positive local minimum is not a peak",
			in:   []float64{0, 1, 0.2, 0.5, 0},
			want: []Peak{{1, 1, waveform.Positive}, {3, 0.5, waveform.Positive}},
		},
		{
			name: "boundary runs count one-sided",
			in:   []float64{0.8, 0.4, 0, -0.4, -0.8},
			want: []Peak{{0, 0.8, waveform.Positive}, {4, -0.8, waveform.Negative}},
		},
		{
			name: "constant run has first index representative",
			in:   []float64{0.5, 0.5, 0.5},
			want: []Peak{{0, 0.5, waveform.Positive}},
		},
		{
			name: "silence",
			in:   []float64{0, 0, 0},
			want: nil,
		},
		{
			name: "square wave",
			in:   []float64{0, 1, 1, 1, -1, -1, -1, 1, 1},
			want: []Peak{{1, 1, waveform.Positive}, {4, -1, waveform.Negative}, {7, 1, waveform.Positive}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(mustWave(t, tt.in)).All()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d peaks %+v, want %+v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("peak %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDetectSineHasOnePeakPerHalfCycle(t *testing.T) {
	const spw, periods = 100, 4
	s := make([]float64, spw*periods)
	for i := range s {
		s[i] = math.Sin(2 * math.Pi * float64(i) / spw)
	}
	x := Detect(mustWave(t, s))
	pos := x.BySign(waveform.Positive)
	neg := x.BySign(waveform.Negative)
	if len(pos) != periods || len(neg) != periods {
		t.Fatalf("expected %d positive and negative peaks, got %d/%d", periods, len(pos), len(neg))
	}
	for k, p := range pos {
		if p.Index != k*spw+spw/4 {
			t.Fatalf("positive peak %d at %d, want %d", k, p.Index, k*spw+spw/4)
		}
	}
	if x.Len() != 2*periods || x.SampleCount() != spw*periods {
		t.Fatalf("unexpected index stats: len=%d n=%d", x.Len(), x.SampleCount())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	x := Detect(mustWave(t, []float64{0, 1, 0}))
	a := x.All()
	a[0].Index = 99
	if x.All()[0].Index != 1 {
		t.Fatalf("All exposed internal storage")
	}
}
