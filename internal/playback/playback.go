// Package playback plays preview audio on the default output device.
package playback

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-envelope/internal/wavio"
	"github.com/hajimehoshi/oto/v2"
)

// DefaultSampleRate is the device rate used when none is given.
const DefaultSampleRate = 48000

const pollInterval = 10 * time.Millisecond

// Player is a mono float32 output stream. Only one may exist per process.
type Player struct {
	ctx  *oto.Context
	rate int
}

// New opens the audio device at sampleRate (0 selects DefaultSampleRate).
func New(sampleRate int) (*Player, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	ctx, ready, err := oto.NewContext(sampleRate, 1, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &Player{ctx: ctx, rate: sampleRate}, nil
}

// SampleRate returns the device rate.
func (p *Player) SampleRate() int { return p.rate }

// Play resamples samples to the device rate and blocks until they have been
// played or ctx is canceled.
func (p *Player) Play(ctx context.Context, samples []float64, sampleRate int) error {
	data, err := wavio.ResampleIfNeeded(samples, sampleRate, p.rate)
	if err != nil {
		return err
	}
	pl := p.ctx.NewPlayer(bytes.NewReader(encodeFloat32LE(data)))
	defer pl.Close()
	pl.Play()

	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for pl.IsPlaying() {
		select {
		case <-ctx.Done():
			pl.Pause()
			return ctx.Err()
		case <-tick.C:
		}
	}
	return pl.Err()
}

// encodeFloat32LE converts samples to interleaved little-endian float32,
// clamped to [-1,1].
func encodeFloat32LE(x []float64) []byte {
	buf := make([]byte, 4*len(x))
	for i, v := range x {
		v = math.Max(-1, math.Min(1, v))
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(float32(v)))
	}
	return buf
}
