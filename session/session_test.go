package session

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cwbudde/algo-envelope/codec"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/projector"
	"github.com/cwbudde/algo-envelope/waveform"
	"github.com/cwbudde/algo-envelope/wavegen"
)

func sineTrack(t *testing.T, name string, baseline float64) *Track {
	t.Helper()
	w, err := wavegen.Generate(wavegen.Config{
		WaveType:             wavegen.Sine,
		Frequency:            100,
		SamplesPerWavelength: 40,
		Periods:              4,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	tr, err := NewTrack(name, w, baseline)
	if err != nil {
		t.Fatalf("NewTrack: %v", err)
	}
	return tr
}

func newSession(t *testing.T, cfg Config, tracks ...*Track) *Session {
	t.Helper()
	if len(tracks) == 0 {
		tracks = []*Track{sineTrack(t, "a.wav", 0), sineTrack(t, "b.wav", 0)}
	}
	s, err := New(tracks, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func mustDispatch(t *testing.T, s *Session, evs ...Event) {
	t.Helper()
	for _, ev := range evs {
		if err := s.Dispatch(context.Background(), ev); err != nil {
			t.Fatalf("Dispatch(%#v): %v", ev, err)
		}
	}
}

func drawingSession(t *testing.T, cfg Config, tracks ...*Track) *Session {
	t.Helper()
	s := newSession(t, cfg, tracks...)
	mustDispatch(t, s, Command{Kind: CmdCommitLayout})
	return s
}

func TestPhaseGating(t *testing.T) {
	s := newSession(t, DefaultConfig())
	ctx := context.Background()
	if s.Phase() != PhaseLayout {
		t.Fatalf("phase=%v", s.Phase())
	}
	if err := s.Dispatch(ctx, Command{Kind: CmdReset}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("reset in layout phase: %v", err)
	}
	if err := s.Dispatch(ctx, Command{Kind: CmdFinalizeDrawing}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("finalize in layout phase: %v", err)
	}
	mustDispatch(t, s, Command{Kind: CmdCommitLayout})
	if !s.Layout().Frozen() || s.Phase() != PhaseDrawing {
		t.Fatalf("layout not committed: phase=%v", s.Phase())
	}
	if err := s.Dispatch(ctx, Command{Kind: CmdCommitLayout}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("second commitLayout: %v", err)
	}
	mustDispatch(t, s, Command{Kind: CmdFinalizeDrawing})
	if err := s.Dispatch(ctx, PointerDown{X: 0.5, Y: 0.1}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("draw after finalize: %v", err)
	}
	if err := s.Dispatch(ctx, Command{Kind: CmdUndo}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("undo after finalize: %v", err)
	}
}

func TestLayoutDragMovesBoundary(t *testing.T) {
	s := newSession(t, DefaultConfig())
	mustDispatch(t, s,
		PointerDown{X: 0.3, Y: 0.51},
		PointerMove{X: 0.3, Y: 0.6},
		PointerUp{X: 0.3, Y: 0.7},
	)
	b0, b1 := s.Layout().Band(0), s.Layout().Band(1)
	if b0.Top != 0 || b0.Bottom != 0.7 || b1.Top != 0.7 || b1.Bottom != 1 {
		t.Fatalf("bands=%+v %+v", b0, b1)
	}
	// A press away from every boundary grabs nothing.
	mustDispatch(t, s, PointerDown{X: 0.3, Y: 0.2}, PointerMove{X: 0.3, Y: 0.4}, PointerUp{X: 0.3, Y: 0.4})
	if got := s.Layout().Band(0).Bottom; got != 0.7 {
		t.Fatalf("boundary moved to %g without a grab", got)
	}
}

func TestStrokeCommitsAboveAndBelowBaseline(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	tr := s.tracks[0]
	n := tr.Original.Len()

	mustDispatch(t, s, PointerDown{X: 0, Y: 0.1})
	if !s.Capturing() || s.ActiveTrack() != 0 {
		t.Fatalf("capturing=%v active=%d", s.Capturing(), s.ActiveTrack())
	}
	mustDispatch(t, s, PointerMove{X: 0.5, Y: 0.1}, PointerUp{X: 1, Y: 0.1})
	if s.Capturing() {
		t.Fatal("still capturing after pointer up")
	}

	want := tr.amplitude(s.Layout().ToLocal(0, 0.1))
	if math.Abs(want-0.6*tr.axisRange()) > 1e-12 {
		t.Fatalf("amplitude mapping %g", want)
	}
	env := tr.Model.Envelope()
	for i := 0; i < n; i++ {
		if !env.IsDrawn(waveform.Positive, i) || env.Positive(i) != want {
			t.Fatalf("positive[%d]=%g drawn=%v want %g", i, env.Positive(i), env.IsDrawn(waveform.Positive, i), want)
		}
	}

	mustDispatch(t, s, PointerDown{X: 0, Y: 0.4}, PointerUp{X: 0.25, Y: 0.4})
	last := int(0.25*float64(n-1) + 0.5)
	if got := env.Negative(last); math.Abs(got-0.6*tr.axisRange()) > 1e-12 {
		t.Fatalf("negative[%d]=%g", last, got)
	}
	if env.IsDrawn(waveform.Negative, last+1) {
		t.Fatalf("negative stroke overran index %d", last)
	}
	if tr.Model.Depth() != 2 {
		t.Fatalf("depth=%d", tr.Model.Depth())
	}
	if s.tracks[1].Model.Depth() != 0 {
		t.Fatal("stroke leaked into second track")
	}
}

func TestMovesOutsideActiveBandAreIgnored(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	mustDispatch(t, s,
		PointerDown{X: 0, Y: 0.1},
		PointerMove{X: 0.5, Y: 0.8},
		PointerUp{X: 0.5, Y: 0.8},
	)
	env := s.tracks[0].Model.Envelope()
	if got := env.DrawnIndices(waveform.Positive); len(got) != 1 || got[0] != 0 {
		t.Fatalf("drawn=%v, want [0]", got)
	}
	if len(s.tracks[1].Model.Envelope().DrawnIndices(waveform.Positive)) != 0 {
		t.Fatal("second track touched")
	}
}

func TestUndoAndResetCommands(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	tr := s.tracks[1]
	before := tr.Model.Envelope().Clone()

	// Undo on an empty history is absorbed.
	mustDispatch(t, s, Command{Kind: CmdUndo, Track: 1})

	mustDispatch(t, s, PointerDown{X: 0.1, Y: 0.6}, PointerMove{X: 0.4, Y: 0.55}, PointerUp{X: 0.6, Y: 0.6})
	if tr.Model.Envelope().Equal(before) {
		t.Fatal("stroke had no effect")
	}
	mustDispatch(t, s, Command{Kind: CmdUndo, Track: 1})
	if !tr.Model.Envelope().Equal(before) {
		t.Fatal("undo did not restore the envelope")
	}

	mustDispatch(t, s, PointerDown{X: 0.1, Y: 0.6}, PointerUp{X: 0.6, Y: 0.6})
	mustDispatch(t, s, Command{Kind: CmdReset, Track: 1})
	if tr.Model.Depth() != 0 || len(tr.Model.Envelope().DrawnIndices(waveform.Positive)) != 0 {
		t.Fatal("reset left state behind")
	}

	err := s.Dispatch(context.Background(), Command{Kind: CmdUndo, Track: 7})
	if !errors.Is(err, errs.ErrTrackIndex) {
		t.Fatalf("bad track: %v", err)
	}
}

func TestCaptureBlocksReadersAndCommands(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	ctx := context.Background()
	mustDispatch(t, s, PointerDown{X: 0.2, Y: 0.2})

	if err := s.Dispatch(ctx, Command{Kind: CmdReset, Track: 0}); !errors.Is(err, errs.ErrCaptureInProgress) {
		t.Fatalf("reset: %v", err)
	}
	if err := s.Dispatch(ctx, Command{Kind: CmdFinalizeDrawing}); !errors.Is(err, errs.ErrCaptureInProgress) {
		t.Fatalf("finalize: %v", err)
	}
	if _, err := s.Export(t.TempDir()); !errors.Is(err, errs.ErrCaptureInProgress) {
		t.Fatalf("export: %v", err)
	}
	if _, err := s.Persist(t.TempDir()); !errors.Is(err, errs.ErrCaptureInProgress) {
		t.Fatalf("persist: %v", err)
	}
	if _, err := s.Projections(); !errors.Is(err, errs.ErrCaptureInProgress) {
		t.Fatalf("projections: %v", err)
	}
	mustDispatch(t, s, PointerUp{X: 0.3, Y: 0.2})
	if _, err := s.Projections(); err != nil {
		t.Fatalf("projections after commit: %v", err)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := drawingSession(t, DefaultConfig())
	mustDispatch(t, s,
		PointerDown{X: 0, Y: 0.2}, PointerMove{X: 0.5, Y: 0.05}, PointerUp{X: 1, Y: 0.3},
		PointerDown{X: 0, Y: 0.9}, PointerUp{X: 0.7, Y: 0.95},
	)
	paths, err := s.Persist(dir)
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[1]) != "envelope_2.csv" {
		t.Fatalf("paths=%v", paths)
	}

	fresh := drawingSession(t, DefaultConfig())
	n, err := fresh.LoadEnvelopes(dir)
	if err != nil || n != 2 {
		t.Fatalf("LoadEnvelopes: n=%d err=%v", n, err)
	}
	for i := 0; i < 2; i++ {
		a, err := s.Synthesize(i)
		if err != nil {
			t.Fatal(err)
		}
		b, err := fresh.Synthesize(i)
		if err != nil {
			t.Fatal(err)
		}
		if !a.Waveform.Equal(b.Waveform) {
			t.Fatalf("track %d: restored envelope synthesizes differently", i)
		}
	}
}

func TestLoadEnvelopesSkipsMissingFiles(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	n, err := s.LoadEnvelopes(t.TempDir())
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestExportWritesFilesAndReportsClipping(t *testing.T) {
	dir := t.TempDir()
	s := drawingSession(t, DefaultConfig(), sineTrack(t, "in/tone.wav", 0.25), sineTrack(t, "other.wav", 0))
	// Track 0 drawn at the top edge, above full scale.
	mustDispatch(t, s, PointerDown{X: 0, Y: 0}, PointerUp{X: 1, Y: 0})

	res, err := s.Export(dir)
	var rerr *errs.RangeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected clipping RangeError, got %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("results=%d", len(res))
	}
	if filepath.Base(res[0].Path) != "1_future_tone.wav" || filepath.Base(res[1].Path) != "2_future_other.wav" {
		t.Fatalf("paths=%s %s", res[0].Path, res[1].Path)
	}
	for _, r := range res {
		if _, err := os.Stat(r.Path); err != nil {
			t.Fatalf("missing %s: %v", r.Path, err)
		}
	}
	if res[0].Report.Clipped == 0 || res[1].Report.Clipped != 0 {
		t.Fatalf("clipped=%d,%d", res[0].Report.Clipped, res[1].Report.Clipped)
	}
}

func TestProjectionsAndFiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schemes.NaturalLang = projector.ColorScheme{Background: "#FFFFFF", Positive: "#FF0000", Negative: "#0000FF"}
	s := drawingSession(t, cfg)
	mustDispatch(t, s, PointerDown{X: 0, Y: 0.1}, PointerUp{X: 1, Y: 0.1})

	sets, err := s.Projections()
	if err != nil {
		t.Fatal(err)
	}
	names := []string{projector.FinalDrawing, projector.NaturalLang, projector.WaveComparison}
	for i, set := range sets {
		if set.Name != names[i] || len(set.Tracks) != 2 {
			t.Fatalf("set %d = %s with %d tracks", i, set.Name, len(set.Tracks))
		}
	}
	if sets[1].Scheme.Background != "#FFFFFF" {
		t.Fatalf("scheme not passed through: %+v", sets[1].Scheme)
	}
	cmp := sets[2].Tracks[0].Lines
	if cmp[0].Opacity != 0.6 || cmp[1].Opacity != 0.4 {
		t.Fatalf("opacities=%g,%g", cmp[0].Opacity, cmp[1].Opacity)
	}

	dir := t.TempDir()
	paths, err := s.WriteProjections(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"final_drawing.json", "natural_lang.json", "wave_comparison.json"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Fatalf("missing %s (have %v)", want, paths)
		}
	}
}

type recordingPlayer struct {
	mu    sync.Mutex
	plays []int
}

func (p *recordingPlayer) Play(ctx context.Context, samples []float64, rate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, len(samples))
	return nil
}

func TestPreviewPlaysAllTracks(t *testing.T) {
	p := &recordingPlayer{}
	cfg := DefaultConfig()
	cfg.Player = p
	s := newSession(t, cfg)
	if err := s.Dispatch(context.Background(), Command{Kind: CmdPreview}); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("preview in layout phase: %v", err)
	}
	mustDispatch(t, s, Command{Kind: CmdCommitLayout}, Command{Kind: CmdPreview})
	s.WaitPreview()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.plays) != 2 || p.plays[0] != 160 || p.plays[1] != 160 {
		t.Fatalf("plays=%v", p.plays)
	}
}

type blockingPlayer struct {
	started  chan struct{}
	canceled atomic.Int32
}

func (p *blockingPlayer) Play(ctx context.Context, samples []float64, rate int) error {
	p.started <- struct{}{}
	<-ctx.Done()
	p.canceled.Add(1)
	return ctx.Err()
}

func TestNewPreviewCancelsRunningOne(t *testing.T) {
	p := &blockingPlayer{started: make(chan struct{}, 4)}
	cfg := DefaultConfig()
	cfg.Player = p
	s := drawingSession(t, cfg)

	mustDispatch(t, s, Command{Kind: CmdPreview})
	<-p.started
	mustDispatch(t, s, Command{Kind: CmdPreview})
	if got := p.canceled.Load(); got != 1 {
		t.Fatalf("canceled=%d after second preview, want 1", got)
	}
	<-p.started

	// Drawing continues while a preview is playing.
	mustDispatch(t, s, PointerDown{X: 0, Y: 0.1}, PointerUp{X: 0.5, Y: 0.1})

	s.Close()
	if got := p.canceled.Load(); got != 2 {
		t.Fatalf("canceled=%d after close, want 2", got)
	}
}

func TestPreviewWithoutPlayer(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	if err := s.Dispatch(context.Background(), Command{Kind: CmdPreview}); !errors.Is(err, ErrNoPlayer) {
		t.Fatalf("err=%v", err)
	}
}

func TestParseCommandKind(t *testing.T) {
	for _, k := range []CommandKind{CmdPreview, CmdReset, CmdUndo, CmdCommitLayout, CmdFinalizeDrawing} {
		got, err := ParseCommandKind(k.String())
		if err != nil || got != k {
			t.Fatalf("round trip %v: %v %v", k, got, err)
		}
	}
	if _, err := ParseCommandKind("redo"); err == nil {
		t.Fatal("expected error")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OriginalOpacity = 2
	if _, err := New([]*Track{sineTrack(t, "a", 0)}, cfg); err == nil {
		t.Fatal("expected opacity error")
	}
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Fatal("expected error for no tracks")
	}
}

func TestEncodeRestoreAndRender(t *testing.T) {
	s := drawingSession(t, DefaultConfig())
	mustDispatch(t, s, PointerDown{X: 0, Y: 0.3}, PointerUp{X: 1, Y: 0.2})

	var buf bytes.Buffer
	if err := s.EncodeEnvelope(0, &buf); err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	rows, err := codec.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	env, err := codec.Restore(rows, s.tracks[0].Original.Len())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	want, _, err := s.Render(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RestoreEnvelope(0, env); err != nil {
		t.Fatalf("RestoreEnvelope: %v", err)
	}
	if s.tracks[0].Model.Depth() != 0 {
		t.Fatal("restore kept undo history")
	}
	got, _, err := s.Render(0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: %g != %g", i, got[i], want[i])
		}
	}

	mustDispatch(t, s, Command{Kind: CmdFinalizeDrawing})
	if err := s.RestoreEnvelope(0, env); !errors.Is(err, errs.ErrWrongPhase) {
		t.Fatalf("restore after finalize: %v", err)
	}
}
