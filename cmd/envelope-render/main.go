package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/cwbudde/algo-envelope/analysis"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/internal/playback"
	"github.com/cwbudde/algo-envelope/preset"
	"github.com/cwbudde/algo-envelope/session"
	"go.uber.org/zap"
)

func main() {
	presetPath := flag.String("preset", "", "Session preset JSON path (defaults when empty)")
	scriptPath := flag.String("script", "", "Event script JSON to replay (optional)")
	loadDir := flag.String("load", "", "Directory with envelope_<n>.csv files to restore before replay")
	outDir := flag.String("output", "out", "Output directory")
	play := flag.Bool("play", false, "Play previews on the audio device")
	deviceRate := flag.Int("device-rate", playback.DefaultSampleRate, "Playback device sample rate")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	verbose := flag.Bool("verbose", false, "Log session events")
	flag.Parse()

	params := preset.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		params = p
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			die("logger: %v", err)
		}
		logger = l
	}
	defer logger.Sync()

	tracks, err := params.BuildTracks()
	if err != nil {
		die("%v", err)
	}

	cfg := params.Session
	cfg.Logger = logger
	if *play {
		player, err := playback.New(*deviceRate)
		if err != nil {
			die("%v", err)
		}
		cfg.Player = player
	}

	s, err := session.New(tracks, cfg)
	if err != nil {
		die("%v", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *loadDir != "" {
		n, err := s.LoadEnvelopes(*loadDir)
		if err != nil {
			die("load envelopes: %v", err)
		}
		fmt.Printf("Restored %d envelope(s) from %s\n", n, *loadDir)
	}

	if *scriptPath != "" {
		events, err := loadScript(*scriptPath)
		if err != nil {
			die("script %q: %v", *scriptPath, err)
		}
		for i, ev := range events {
			if err := s.Dispatch(ctx, ev); err != nil {
				die("event %d (%T): %v", i, ev, err)
			}
		}
		fmt.Printf("Replayed %d event(s), phase %s\n", len(events), s.Phase())
	}
	if s.Capturing() {
		die("script ends in the middle of a stroke on track %d", s.ActiveTrack()+1)
	}
	s.WaitPreview()

	csvPaths, err := s.Persist(*outDir)
	if err != nil {
		die("persist: %v", err)
	}
	results, err := s.Export(*outDir)
	var rerr *errs.RangeError
	if err != nil && !errors.As(err, &rerr) {
		die("export: %v", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	projPaths, err := s.WriteProjections(*outDir)
	if err != nil {
		die("projections: %v", err)
	}

	for _, p := range csvPaths {
		fmt.Printf("Wrote %s\n", p)
	}
	for _, r := range results {
		fmt.Printf("Wrote %s (%d samples, %d clipped)\n", r.Path, r.Report.Samples, r.Report.Clipped)
	}
	for _, p := range projPaths {
		fmt.Printf("Wrote %s\n", p)
	}

	all := make([]analysis.Metrics, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		t, _ := s.Track(i)
		res, err := s.Synthesize(i)
		if err != nil {
			die("%v", err)
		}
		m := analysis.Compare(t.Original.Samples(), res.Waveform.Samples(), t.Original.SampleRate())
		all = append(all, m)
		if *jsonOut {
			continue
		}
		fmt.Printf("Track %d (%s): anchors=%d gain=%.2f dB rmse=%.6f env_rmse=%.2f dB corr=%.4f\n",
			i+1, t.Name, len(res.Anchors), m.GainDB, m.TimeRMSE, m.EnvelopeRMSEDB, m.Correlation)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			die("json: %v", err)
		}
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
