// Package session ties tracks, layout and capture together behind a single
// event dispatcher.
//
// A session moves through three phases. In the layout phase pointer drags
// move the band boundaries. commitLayout freezes them and enables drawing.
// finalizeDrawing ends editing; previews and outputs remain available.
// Events are handled synchronously one at a time. Only preview playback
// runs in the background.
package session

import (
	"fmt"

	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/export"
	"github.com/cwbudde/algo-envelope/layout"
	"github.com/cwbudde/algo-envelope/projector"
	"github.com/cwbudde/algo-envelope/synth"
	"go.uber.org/zap"
)

// Phase is the session's editing phase.
type Phase int

const (
	PhaseLayout Phase = iota
	PhaseDrawing
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhaseLayout:
		return "layout"
	case PhaseDrawing:
		return "drawing"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Schemes holds one color scheme per projection set.
type Schemes struct {
	FinalDrawing   projector.ColorScheme
	NaturalLang    projector.ColorScheme
	WaveComparison projector.ColorScheme
}

// Config configures a session.
type Config struct {
	Synth           synth.Options
	Export          export.Options
	MinBandHeight   float64
	GrabTolerance   float64
	OriginalOpacity float64
	ModifiedOpacity float64
	Schemes         Schemes

	// Player plays previews. Nil disables preview.
	Player Player
	// Logger receives warnings and state changes. Nil means no logging.
	Logger *zap.Logger
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() Config {
	return Config{
		Synth:           synth.DefaultOptions(),
		Export:          export.DefaultOptions(),
		MinBandHeight:   layout.DefaultMinHeight,
		GrabTolerance:   0.02,
		OriginalOpacity: projector.DefaultOriginalOpacity,
		ModifiedOpacity: projector.DefaultModifiedOpacity,
		Schemes: Schemes{
			FinalDrawing:   projector.DefaultScheme,
			NaturalLang:    projector.DefaultScheme,
			WaveComparison: projector.DefaultScheme,
		},
	}
}

func (c *Config) Validate() error {
	if c.MinBandHeight <= 0 || c.MinBandHeight >= 1 {
		return fmt.Errorf("min band height must be in (0,1)")
	}
	if c.GrabTolerance < 0 {
		return fmt.Errorf("grab tolerance must be >= 0")
	}
	if c.OriginalOpacity < 0 || c.OriginalOpacity > 1 || c.ModifiedOpacity < 0 || c.ModifiedOpacity > 1 {
		return fmt.Errorf("opacities must be in [0,1]")
	}
	if c.Synth.Epsilon < 0 {
		return fmt.Errorf("synth epsilon must be >= 0")
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	for name, s := range map[string]projector.ColorScheme{
		projector.FinalDrawing:   c.Schemes.FinalDrawing,
		projector.NaturalLang:    c.Schemes.NaturalLang,
		projector.WaveComparison: c.Schemes.WaveComparison,
	} {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%s scheme: %w", name, err)
		}
	}
	return nil
}

// Session is one editing session over a fixed list of tracks.
type Session struct {
	cfg    Config
	log    *zap.Logger
	tracks []*Track
	layout *layout.Manager
	phase  Phase

	// active is the track being drawn on, -1 when idle.
	active int
	// grabbed is the boundary being dragged in the layout phase, -1 when none.
	grabbed int

	preview *Previewer
}

// New creates a session in the layout phase.
func New(tracks []*Track, cfg Config) (*Session, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("session needs at least one track")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lm, err := layout.NewManager(len(tracks), cfg.MinBandHeight)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		cfg:     cfg,
		log:     log,
		tracks:  append([]*Track(nil), tracks...),
		layout:  lm,
		phase:   PhaseLayout,
		active:  -1,
		grabbed: -1,
	}
	if cfg.Player != nil {
		s.preview = NewPreviewer(cfg.Player, log)
	}
	return s, nil
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Len returns the number of tracks.
func (s *Session) Len() int { return len(s.tracks) }

// Track returns track i.
func (s *Session) Track(i int) (*Track, error) {
	if i < 0 || i >= len(s.tracks) {
		return nil, fmt.Errorf("%w: %d", errs.ErrTrackIndex, i)
	}
	return s.tracks[i], nil
}

// Layout returns the band manager.
func (s *Session) Layout() *layout.Manager { return s.layout }

// Capturing reports whether a stroke is being drawn.
func (s *Session) Capturing() bool { return s.active >= 0 }

// ActiveTrack returns the track being drawn on, or -1.
func (s *Session) ActiveTrack() int { return s.active }

// Close stops any preview playback.
func (s *Session) Close() {
	if s.preview != nil {
		s.preview.Stop()
	}
}

// Synthesize runs the synthesizer for track i and logs degenerate peaks.
func (s *Session) Synthesize(i int) (*synth.Result, error) {
	t, err := s.Track(i)
	if err != nil {
		return nil, err
	}
	if t.Model.Capturing() {
		return nil, errs.ErrCaptureInProgress
	}
	res, err := t.Synthesize(s.cfg.Synth)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", i, err)
	}
	for _, w := range res.Warnings {
		s.log.Debug("degenerate peak", zap.Int("track", i), zap.Error(w))
	}
	return res, nil
}

func (s *Session) requirePhase(want Phase) error {
	if s.phase != want {
		return fmt.Errorf("%w: in %s phase, need %s", errs.ErrWrongPhase, s.phase, want)
	}
	return nil
}
