package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/waveform"
	"go.uber.org/zap"
)

// Event is one input to Dispatch.
type Event interface {
	event()
}

// Pointer coordinates are normalized display coordinates: X in [0,1] runs
// across the sample range, Y in [0,1] runs down through the track bands.
type (
	PointerDown struct{ X, Y float64 }
	PointerMove struct{ X, Y float64 }
	PointerUp   struct{ X, Y float64 }
)

// CommandKind names a discrete control command.
type CommandKind int

const (
	CmdPreview CommandKind = iota
	CmdReset
	CmdUndo
	CmdCommitLayout
	CmdFinalizeDrawing
)

var commandNames = [...]string{
	CmdPreview:         "preview",
	CmdReset:           "reset",
	CmdUndo:            "undo",
	CmdCommitLayout:    "commitLayout",
	CmdFinalizeDrawing: "finalizeDrawing",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// ParseCommandKind parses a command name, case-insensitively.
func ParseCommandKind(s string) (CommandKind, error) {
	for k, name := range commandNames {
		if strings.EqualFold(s, name) {
			return CommandKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// Command is a control command. Track is used by reset and undo.
type Command struct {
	Kind  CommandKind
	Track int
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Command) event()     {}

// ErrNoPlayer is returned by preview when the session has no player.
var ErrNoPlayer = errors.New("no preview player configured")

// Dispatch handles one event. It returns when the event is fully processed;
// only preview playback continues afterwards, bound to ctx.
//
// Pointer events outside any band, or outside the band a stroke started in,
// are ignored. Empty strokes and undo on an empty history are logged and
// absorbed.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case PointerDown:
		return s.pointerDown(e.X, e.Y)
	case PointerMove:
		return s.pointerMove(e.X, e.Y)
	case PointerUp:
		return s.pointerUp(e.X, e.Y)
	case Command:
		return s.command(ctx, e)
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

func validPoint(x, y float64) bool {
	return !math.IsNaN(x) && !math.IsNaN(y) && !math.IsInf(x, 0) && !math.IsInf(y, 0)
}

func (s *Session) pointerDown(x, y float64) error {
	if !validPoint(x, y) {
		return nil
	}
	switch s.phase {
	case PhaseLayout:
		s.grabbed = s.nearestBoundary(y)
		return nil
	case PhaseDrawing:
	default:
		return s.requirePhase(PhaseDrawing)
	}

	i := s.layout.Locate(y)
	if i < 0 {
		return nil
	}
	if s.active >= 0 {
		s.log.Warn("pointer down while capturing, dropping unfinished stroke", zap.Int("track", s.active))
		s.tracks[s.active].Model.Cancel()
		s.active = -1
	}
	t := s.tracks[i]
	amp := t.amplitude(s.layout.ToLocal(i, y))
	sign := waveform.Positive
	if amp < t.Baseline {
		sign = waveform.Negative
	}
	t.Model.Begin(sign, t.sampleIndex(x), magnitude(sign, amp, t.Baseline))
	s.active = i
	s.log.Debug("stroke started", zap.Int("track", i), zap.Stringer("sign", sign))
	return nil
}

// magnitude is the distance of amp from the baseline on the stroke's side.
// It goes negative when the pointer crosses the baseline; commit clips it.
func magnitude(sign waveform.Sign, amp, baseline float64) float64 {
	if sign == waveform.Negative {
		return baseline - amp
	}
	return amp - baseline
}

func (s *Session) extend(x, y float64) {
	if s.layout.Locate(y) != s.active {
		return
	}
	t := s.tracks[s.active]
	amp := t.amplitude(s.layout.ToLocal(s.active, y))
	sign := waveform.Positive
	if t.Model.State() == envelope.CapturingNegative {
		sign = waveform.Negative
	}
	t.Model.Extend(t.sampleIndex(x), magnitude(sign, amp, t.Baseline))
}

func (s *Session) pointerMove(x, y float64) error {
	if !validPoint(x, y) {
		return nil
	}
	switch s.phase {
	case PhaseLayout:
		if s.grabbed < 0 {
			return nil
		}
		return s.layout.Adjust(s.grabbed, y)
	case PhaseDrawing:
		if s.active >= 0 {
			s.extend(x, y)
		}
	}
	return nil
}

func (s *Session) pointerUp(x, y float64) error {
	switch s.phase {
	case PhaseLayout:
		if s.grabbed < 0 {
			return nil
		}
		i := s.grabbed
		s.grabbed = -1
		if !validPoint(x, y) {
			return nil
		}
		return s.layout.Adjust(i, y)
	case PhaseDrawing:
		if s.active < 0 {
			return nil
		}
		if validPoint(x, y) {
			s.extend(x, y)
		}
		i := s.active
		s.active = -1
		st, err := s.tracks[i].Model.Commit()
		if err != nil {
			if errs.IsWarning(err) {
				s.log.Debug("stroke dropped", zap.Int("track", i), zap.Error(err))
				return nil
			}
			return err
		}
		s.log.Debug("stroke committed", zap.Int("track", i), zap.Int("samples", len(st.Writes)))
	}
	return nil
}

// nearestBoundary returns the movable boundary within grab tolerance of y,
// or -1. Boundary i is the bottom of band i; the last bottom is fixed.
func (s *Session) nearestBoundary(y float64) int {
	best, bestDist := -1, s.cfg.GrabTolerance
	for i := 0; i < s.layout.Len()-1; i++ {
		d := math.Abs(s.layout.Band(i).Bottom - y)
		if d <= bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (s *Session) command(ctx context.Context, c Command) error {
	s.log.Debug("command", zap.Stringer("kind", c.Kind), zap.Int("track", c.Track))
	switch c.Kind {
	case CmdCommitLayout:
		if err := s.requirePhase(PhaseLayout); err != nil {
			return err
		}
		s.layout.Finalize()
		s.grabbed = -1
		s.phase = PhaseDrawing
		return nil
	case CmdFinalizeDrawing:
		if err := s.requirePhase(PhaseDrawing); err != nil {
			return err
		}
		if s.Capturing() {
			return errs.ErrCaptureInProgress
		}
		s.phase = PhaseFinalized
		return nil
	case CmdReset:
		t, err := s.editable(c.Track)
		if err != nil {
			return err
		}
		t.Model.Reset()
		return nil
	case CmdUndo:
		t, err := s.editable(c.Track)
		if err != nil {
			return err
		}
		if _, err := t.Model.Undo(); err != nil {
			if errs.IsWarning(err) {
				s.log.Info("nothing to undo", zap.Int("track", c.Track))
				return nil
			}
			return err
		}
		return nil
	case CmdPreview:
		return s.Preview(ctx)
	default:
		return fmt.Errorf("unknown command %v", c.Kind)
	}
}

func (s *Session) editable(i int) (*Track, error) {
	if err := s.requirePhase(PhaseDrawing); err != nil {
		return nil, err
	}
	if s.Capturing() {
		return nil, errs.ErrCaptureInProgress
	}
	return s.Track(i)
}
