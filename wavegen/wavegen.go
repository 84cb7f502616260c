// Package wavegen synthesizes the periodic test waves a session can start from
// instead of a WAV file.
package wavegen

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-envelope/waveform"
)

// WaveType selects the generator shape.
type WaveType string

const (
	Sine     WaveType = "sine"
	Square   WaveType = "square"
	Triangle WaveType = "triangle"
	Sawtooth WaveType = "sawtooth"
	// Custom sums the harmonic series given in Config.Harmonics.
	Custom WaveType = "custom"
)

// ParseWaveType accepts a case-insensitive shape name.
func ParseWaveType(s string) (WaveType, error) {
	switch wt := WaveType(strings.ToLower(strings.TrimSpace(s))); wt {
	case Sine, Square, Triangle, Sawtooth, Custom:
		return wt, nil
	default:
		return "", fmt.Errorf("unknown wave type %q (use sine|square|triangle|sawtooth|custom)", s)
	}
}

// Config controls wave generation. The sample rate is derived as
// Frequency*SamplesPerWavelength and the length as SamplesPerWavelength*Periods.
type Config struct {
	WaveType             WaveType
	Frequency            float64
	SamplesPerWavelength int
	Periods              int

	// Harmonics holds the amplitude of partial k+1 for the custom wave type.
	Harmonics []float64
}

func DefaultConfig() Config {
	return Config{
		WaveType:             Sine,
		Frequency:            440,
		SamplesPerWavelength: 100,
		Periods:              10,
	}
}

// Preset returns one of the numbered generator presets (1..4).
func Preset(n int) (Config, error) {
	switch n {
	case 1:
		return Config{WaveType: Sine, Frequency: 440, SamplesPerWavelength: 100, Periods: 10}, nil
	case 2:
		return Config{WaveType: Square, Frequency: 220, SamplesPerWavelength: 80, Periods: 20}, nil
	case 3:
		return Config{WaveType: Triangle, Frequency: 100, SamplesPerWavelength: 200, Periods: 5}, nil
	case 4:
		return Config{WaveType: Sawtooth, Frequency: 50, SamplesPerWavelength: 120, Periods: 15}, nil
	default:
		return Config{}, fmt.Errorf("unknown preset %d (expected 1..4)", n)
	}
}

func (c *Config) Validate() error {
	if _, err := ParseWaveType(string(c.WaveType)); err != nil {
		return err
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be > 0")
	}
	if c.SamplesPerWavelength < 2 {
		return fmt.Errorf("samples per wavelength must be >= 2")
	}
	if c.Periods < 1 {
		return fmt.Errorf("periods must be >= 1")
	}
	if int(c.Frequency*float64(c.SamplesPerWavelength)) < 1 {
		return fmt.Errorf("derived sample rate must be >= 1 Hz")
	}
	if c.WaveType == Custom {
		if len(c.Harmonics) == 0 {
			return fmt.Errorf("custom wave needs at least one harmonic")
		}
		var any bool
		for k, a := range c.Harmonics {
			if math.IsNaN(a) || math.IsInf(a, 0) {
				return fmt.Errorf("harmonic %d is not finite", k+1)
			}
			if a != 0 {
				any = true
			}
		}
		if !any {
			return fmt.Errorf("custom wave harmonics are all zero")
		}
	}
	return nil
}

// SampleRate returns the derived sample rate in Hz.
func (c Config) SampleRate() int {
	return int(c.Frequency * float64(c.SamplesPerWavelength))
}

// Generate renders cfg into a peak-normalized waveform.
func Generate(cfg Config) (*waveform.Waveform, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.SamplesPerWavelength * cfg.Periods
	out := make([]float64, n)
	spw := float64(cfg.SamplesPerWavelength)
	for i := range out {
		// Phase in cycles; identical to freq*t with t = i/(freq*spw).
		phase := float64(i) / spw
		out[i] = shape(cfg, phase)
	}
	waveform.Normalize(out)
	return waveform.New(out, cfg.SampleRate())
}

func shape(cfg Config, phase float64) float64 {
	frac := phase - math.Floor(phase)
	switch cfg.WaveType {
	case Square:
		s := math.Sin(2 * math.Pi * phase)
		switch {
		case s > 0:
			return 1
		case s < 0:
			return -1
		default:
			return 0
		}
	case Triangle:
		// Symmetric ramp: -1 at the cycle start, +1 at mid-cycle.
		if frac < 0.5 {
			return -1 + 4*frac
		}
		return 1 - 4*(frac-0.5)
	case Sawtooth:
		return -1 + 2*frac
	case Custom:
		var sum float64
		for k, a := range cfg.Harmonics {
			sum += a * math.Sin(2*math.Pi*float64(k+1)*phase)
		}
		return sum
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
