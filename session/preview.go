package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cwbudde/algo-envelope/errs"
	"go.uber.org/zap"
)

// Player plays mono samples in [-1,1]. Play blocks until playback ends or
// ctx is canceled, and returns ctx.Err() in the latter case.
type Player interface {
	Play(ctx context.Context, samples []float64, sampleRate int) error
}

// Clip is one preview item.
type Clip struct {
	Track      int
	Samples    []float64
	SampleRate int
}

// Previewer plays at most one preview at a time. Starting a new preview
// stops the running one first.
type Previewer struct {
	player Player
	log    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPreviewer(p Player, log *zap.Logger) *Previewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Previewer{player: p, log: log}
}

// Start stops any running preview and plays clips in order in the
// background. It returns once the previous preview has stopped.
func (p *Previewer) Start(ctx context.Context, clips []Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel, p.done = cancel, done
	go func() {
		defer close(done)
		for _, c := range clips {
			if ctx.Err() != nil {
				return
			}
			if err := p.player.Play(ctx, c.Samples, c.SampleRate); err != nil {
				if !errors.Is(err, context.Canceled) {
					p.log.Warn("preview failed", zap.Int("track", c.Track), zap.Error(err))
				}
				return
			}
		}
	}()
}

// Stop cancels the running preview and waits for it to end.
func (p *Previewer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Wait blocks until the current preview has finished.
func (p *Previewer) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (p *Previewer) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
}

// Preview synthesizes every track and plays them one after another, baseline
// removed and clipped exactly as export writes them. It does not wait for
// playback.
func (s *Session) Preview(ctx context.Context) error {
	if s.phase == PhaseLayout {
		return fmt.Errorf("%w: preview needs drawing or finalized phase", errs.ErrWrongPhase)
	}
	if s.preview == nil {
		return ErrNoPlayer
	}
	if s.Capturing() {
		return errs.ErrCaptureInProgress
	}
	clips := make([]Clip, 0, len(s.tracks))
	for i, t := range s.tracks {
		samples, _, err := s.Render(i)
		if err != nil {
			return err
		}
		clips = append(clips, Clip{Track: i, Samples: samples, SampleRate: t.Original.SampleRate()})
	}
	s.preview.Start(ctx, clips)
	return nil
}

// WaitPreview blocks until the current preview has finished.
func (s *Session) WaitPreview() {
	if s.preview != nil {
		s.preview.Wait()
	}
}
