package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-envelope/internal/wavio"
	"github.com/cwbudde/algo-envelope/wavegen"
	"gonum.org/v1/gonum/floats"
)

func main() {
	cfg := wavegen.DefaultConfig()

	presetNum := flag.Int("preset", 0, "Generator preset 1..4 (0 = use flags)")
	waveType := flag.String("type", string(cfg.WaveType), "Wave type: sine, square, triangle, sawtooth, custom")
	harmonics := flag.String("harmonics", "", "Comma-separated partial amplitudes for -type custom")
	output := flag.String("output", "", "Output WAV path (default <type>_wave.wav)")
	flag.Float64Var(&cfg.Frequency, "freq", cfg.Frequency, "Frequency in Hz")
	flag.IntVar(&cfg.SamplesPerWavelength, "spw", cfg.SamplesPerWavelength, "Samples per wavelength")
	flag.IntVar(&cfg.Periods, "periods", cfg.Periods, "Number of periods")
	flag.Parse()

	if *presetNum != 0 {
		p, err := wavegen.Preset(*presetNum)
		if err != nil {
			die("wave-gen: %v", err)
		}
		cfg = p
	} else {
		wt, err := wavegen.ParseWaveType(*waveType)
		if err != nil {
			die("wave-gen: %v", err)
		}
		cfg.WaveType = wt
		h, err := parseHarmonics(*harmonics)
		if err != nil {
			die("wave-gen: %v", err)
		}
		cfg.Harmonics = h
	}

	w, err := wavegen.Generate(cfg)
	if err != nil {
		die("wave-gen: %v", err)
	}
	path := *output
	if path == "" {
		path = fmt.Sprintf("%s_wave.wav", cfg.WaveType)
	}
	x := w.Samples()
	if err := wavio.WriteMono(path, x, w.SampleRate()); err != nil {
		die("wav write error: %v", err)
	}

	rms := floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Type: %s, Frequency: %g Hz, SampleRate: %d Hz, Samples: %d\n", cfg.WaveType, cfg.Frequency, w.SampleRate(), w.Len())
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", w.MaxAbs(), rms)
}

func parseHarmonics(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid harmonic %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
