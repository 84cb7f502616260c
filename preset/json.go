package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cwbudde/algo-envelope/projector"
	"github.com/cwbudde/algo-envelope/session"
	"github.com/cwbudde/algo-envelope/waveform"
	"github.com/cwbudde/algo-envelope/wavegen"
)

// File is the JSON schema for session presets.
type File struct {
	SynthEpsilon    *float64                 `json:"synth_epsilon"`
	ClipTolerance   *float64                 `json:"clip_tolerance"`
	MinBandHeight   *float64                 `json:"min_band_height"`
	OriginalOpacity *float64                 `json:"original_opacity"`
	ModifiedOpacity *float64                 `json:"modified_opacity"`
	Colors          map[string]SchemeSetting `json:"colors"`
	Tracks          []TrackSetting           `json:"tracks"`
}

// SchemeSetting is a partial color scheme. Colors are #RRGGBB, a palette
// name or a 1-based palette number.
type SchemeSetting struct {
	Background *string `json:"background"`
	Positive   *string `json:"positive"`
	Negative   *string `json:"negative"`
}

// TrackSetting selects the source of one track: a WAV file, a numbered
// generator preset, or explicit generator parameters applied over the preset
// (or the default generator when no preset is given).
type TrackSetting struct {
	Name       string            `json:"name"`
	WavPath    string            `json:"wav_path"`
	TargetRate *int              `json:"target_rate"`
	Preset     *int              `json:"preset"`
	Generator  *GeneratorSetting `json:"generator"`
	Baseline   *float64          `json:"baseline"`
}

// GeneratorSetting is a partial wavegen.Config.
type GeneratorSetting struct {
	WaveType             *string   `json:"wave_type"`
	Frequency            *float64  `json:"frequency"`
	SamplesPerWavelength *int      `json:"samples_per_wavelength"`
	Periods              *int      `json:"periods"`
	Harmonics            []float64 `json:"harmonics"`
}

// Color scheme keys in File.Colors.
const (
	SchemeDrawing        = "drawing"
	SchemeFinalDrawing   = "final_drawing"
	SchemeNaturalLang    = "natural_language"
	SchemeWaveComparison = "wave_comparison"
)

// Params is a fully resolved session setup.
type Params struct {
	Session       session.Config
	DrawingScheme projector.ColorScheme
	Tracks        []TrackSource
}

// TrackSource describes where a track's waveform comes from. Exactly one of
// WavPath and Generator is set.
type TrackSource struct {
	Name       string
	WavPath    string
	TargetRate int
	Generator  *wavegen.Config
	Baseline   float64
}

// NewDefaultParams returns the default session with one generated sine track.
func NewDefaultParams() *Params {
	gen := wavegen.DefaultConfig()
	return &Params{
		Session:       session.DefaultConfig(),
		DrawingScheme: projector.DefaultScheme,
		Tracks:        []TrackSource{{Name: generatedName(gen), Generator: &gen}},
	}
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
// Relative WAV paths are resolved against the preset's directory.
func LoadJSON(path string) (*Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}

	p := NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range p.Tracks {
		if wp := p.Tracks[i].WavPath; wp != "" && !filepath.IsAbs(wp) {
			p.Tracks[i].WavPath = filepath.Clean(filepath.Join(base, wp))
		}
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.SynthEpsilon != nil {
		if *f.SynthEpsilon <= 0 {
			return fmt.Errorf("synth_epsilon must be > 0")
		}
		dst.Session.Synth.Epsilon = *f.SynthEpsilon
	}
	if f.ClipTolerance != nil {
		if *f.ClipTolerance < 0 || *f.ClipTolerance > 1 {
			return fmt.Errorf("clip_tolerance must be in [0,1]")
		}
		dst.Session.Export.ClipTolerance = *f.ClipTolerance
	}
	if f.MinBandHeight != nil {
		if *f.MinBandHeight <= 0 || *f.MinBandHeight >= 1 {
			return fmt.Errorf("min_band_height must be in (0,1)")
		}
		dst.Session.MinBandHeight = *f.MinBandHeight
	}
	if f.OriginalOpacity != nil {
		if *f.OriginalOpacity < 0 || *f.OriginalOpacity > 1 {
			return fmt.Errorf("original_opacity must be in [0,1]")
		}
		dst.Session.OriginalOpacity = *f.OriginalOpacity
	}
	if f.ModifiedOpacity != nil {
		if *f.ModifiedOpacity < 0 || *f.ModifiedOpacity > 1 {
			return fmt.Errorf("modified_opacity must be in [0,1]")
		}
		dst.Session.ModifiedOpacity = *f.ModifiedOpacity
	}

	keys := make([]string, 0, len(f.Colors))
	for k := range f.Colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var target *projector.ColorScheme
		switch k {
		case SchemeDrawing:
			target = &dst.DrawingScheme
		case SchemeFinalDrawing:
			target = &dst.Session.Schemes.FinalDrawing
		case SchemeNaturalLang:
			target = &dst.Session.Schemes.NaturalLang
		case SchemeWaveComparison:
			target = &dst.Session.Schemes.WaveComparison
		default:
			return fmt.Errorf("unknown colors key %q", k)
		}
		if err := applyScheme(target, f.Colors[k]); err != nil {
			return fmt.Errorf("colors[%s]: %w", k, err)
		}
	}

	if len(f.Tracks) == 0 {
		return nil
	}
	tracks := make([]TrackSource, 0, len(f.Tracks))
	for i, ts := range f.Tracks {
		src, err := trackSource(ts)
		if err != nil {
			return fmt.Errorf("tracks[%d]: %w", i, err)
		}
		tracks = append(tracks, src)
	}
	dst.Tracks = tracks
	return nil
}

func applyScheme(dst *projector.ColorScheme, s SchemeSetting) error {
	for _, f := range []struct {
		v       *string
		palette []projector.NamedColor
		out     *string
	}{
		{s.Background, projector.BackgroundPalette, &dst.Background},
		{s.Positive, projector.PositivePalette, &dst.Positive},
		{s.Negative, projector.NegativePalette, &dst.Negative},
	} {
		if f.v == nil {
			continue
		}
		c, err := projector.ResolveColor(f.palette, *f.v)
		if err != nil {
			return err
		}
		*f.out = c
	}
	return nil
}

func trackSource(ts TrackSetting) (TrackSource, error) {
	var src TrackSource
	if ts.Baseline != nil {
		src.Baseline = *ts.Baseline
	}
	wav := strings.TrimSpace(ts.WavPath)
	if wav != "" {
		if ts.Preset != nil || ts.Generator != nil {
			return src, fmt.Errorf("wav_path cannot be combined with a generator")
		}
		src.WavPath = wav
		if ts.TargetRate != nil {
			if *ts.TargetRate <= 0 {
				return src, fmt.Errorf("target_rate must be > 0")
			}
			src.TargetRate = *ts.TargetRate
		}
		src.Name = ts.Name
		if src.Name == "" {
			src.Name = filepath.Base(wav)
		}
		return src, nil
	}

	cfg := wavegen.DefaultConfig()
	if ts.Preset != nil {
		c, err := wavegen.Preset(*ts.Preset)
		if err != nil {
			return src, err
		}
		cfg = c
	}
	if g := ts.Generator; g != nil {
		if g.WaveType != nil {
			wt, err := wavegen.ParseWaveType(*g.WaveType)
			if err != nil {
				return src, err
			}
			cfg.WaveType = wt
		}
		if g.Frequency != nil {
			cfg.Frequency = *g.Frequency
		}
		if g.SamplesPerWavelength != nil {
			cfg.SamplesPerWavelength = *g.SamplesPerWavelength
		}
		if g.Periods != nil {
			cfg.Periods = *g.Periods
		}
		if len(g.Harmonics) > 0 {
			cfg.Harmonics = append([]float64(nil), g.Harmonics...)
		}
	}
	if err := cfg.Validate(); err != nil {
		return src, err
	}
	src.Generator = &cfg
	src.Name = ts.Name
	if src.Name == "" {
		src.Name = generatedName(cfg)
	}
	return src, nil
}

func generatedName(cfg wavegen.Config) string {
	return fmt.Sprintf("%s_%gHz", cfg.WaveType, cfg.Frequency)
}

// Load produces the waveform of a track source.
func (s TrackSource) Load() (*waveform.Waveform, error) {
	if s.Generator != nil {
		return wavegen.Generate(*s.Generator)
	}
	return waveform.Load(s.WavPath, waveform.LoadOptions{TargetRate: s.TargetRate})
}

// BuildTracks loads every track source and creates the session tracks.
func (p *Params) BuildTracks() ([]*session.Track, error) {
	tracks := make([]*session.Track, 0, len(p.Tracks))
	for i, src := range p.Tracks {
		w, err := src.Load()
		if err != nil {
			return nil, fmt.Errorf("track %d (%s): %w", i+1, src.Name, err)
		}
		t, err := session.NewTrack(src.Name, w, src.Baseline)
		if err != nil {
			return nil, err
		}
		t.Scheme = p.DrawingScheme
		tracks = append(tracks, t)
	}
	return tracks, nil
}
