package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-envelope/analysis"
	"github.com/cwbudde/algo-envelope/internal/wavio"
)

func main() {
	originalPath := flag.String("original", "", "Original WAV path")
	modifiedPath := flag.String("modified", "", "Modified WAV path (e.g. 1_future_tone.wav)")
	sampleRate := flag.Int("sample-rate", 0, "Analysis sample rate in Hz (0 = original's rate)")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *originalPath == "" || *modifiedPath == "" {
		die("both -original and -modified are required")
	}

	orig, origSR, err := wavio.ReadMono(*originalPath)
	if err != nil {
		die("failed to read original: %v", err)
	}
	sr := *sampleRate
	if sr <= 0 {
		sr = origSR
	}
	orig, err = wavio.ResampleIfNeeded(orig, origSR, sr)
	if err != nil {
		die("failed to resample original: %v", err)
	}
	mod, modSR, err := wavio.ReadMono(*modifiedPath)
	if err != nil {
		die("failed to read modified: %v", err)
	}
	mod, err = wavio.ResampleIfNeeded(mod, modSR, sr)
	if err != nil {
		die("failed to resample modified: %v", err)
	}

	m := analysis.Compare(orig, mod, sr)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			die("json: %v", err)
		}
		return
	}

	fmt.Printf("Frames: %d @ %d Hz\n", m.Frames, m.SampleRate)
	fmt.Printf("Original: rms=%.6f peak=%.6f dc=%.6f\n", m.Original.RMS, m.Original.Peak, m.Original.DC)
	fmt.Printf("Modified: rms=%.6f peak=%.6f dc=%.6f\n", m.Modified.RMS, m.Modified.Peak, m.Modified.DC)
	fmt.Printf("Gain: %.3f dB\n", m.GainDB)
	fmt.Printf("Time RMSE: %.6f\n", m.TimeRMSE)
	fmt.Printf("Correlation: %.6f\n", m.Correlation)
	fmt.Printf("Envelope RMSE: %.3f dB\n", m.EnvelopeRMSEDB)
	fmt.Printf("Decay: original %.3f dB/s, modified %.3f dB/s\n", m.OrigDecayDBPerS, m.ModDecayDBPerS)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
