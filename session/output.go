package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-envelope/codec"
	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/export"
	"github.com/cwbudde/algo-envelope/projector"
	"go.uber.org/zap"
)

// Output file names. Track numbers are 1-based.
func EnvelopeFileName(track int) string { return fmt.Sprintf("envelope_%d.csv", track+1) }

func AudioFileName(track int, name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("%d_future_%s.wav", track+1, base)
}

var projectionFiles = map[string]string{
	projector.FinalDrawing:   "final_drawing.json",
	projector.NaturalLang:    "natural_lang.json",
	projector.WaveComparison: "wave_comparison.json",
}

// ExportResult describes one written audio file.
type ExportResult struct {
	Track  int
	Path   string
	Report export.Report
}

func (s *Session) readable() error {
	if s.Capturing() {
		return errs.ErrCaptureInProgress
	}
	return nil
}

// Export writes the modified audio of every track into dir. Clipping beyond
// the configured tolerance does not stop the export; the RangeErrors are
// joined into the returned error after all files are written.
func (s *Session) Export(dir string) ([]ExportResult, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	var (
		out     []ExportResult
		clipped []error
	)
	for i, t := range s.tracks {
		res, err := s.Synthesize(i)
		if err != nil {
			return out, err
		}
		centered, err := t.Centered(res.Waveform)
		if err != nil {
			return out, fmt.Errorf("track %d: %w", i, err)
		}
		path := filepath.Join(dir, AudioFileName(i, t.Name))
		rep, err := export.WriteWAV(path, centered, t.Baseline, s.cfg.Export)
		var rerr *errs.RangeError
		switch {
		case errors.As(err, &rerr):
			s.log.Warn("export clipped",
				zap.Int("track", i),
				zap.Int("index", rerr.Index),
				zap.Float64("value", rerr.Value),
				zap.Int("clipped", rep.Clipped))
			clipped = append(clipped, fmt.Errorf("track %d: %w", i, err))
		case err != nil:
			return out, fmt.Errorf("track %d: %w", i, err)
		}
		out = append(out, ExportResult{Track: i, Path: path, Report: rep})
	}
	return out, errors.Join(clipped...)
}

// Persist writes one envelope CSV per track into dir and returns the paths.
func (s *Session) Persist(dir string) ([]string, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	var paths []string
	for i, t := range s.tracks {
		res, err := s.Synthesize(i)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, EnvelopeFileName(i))
		if err := codec.WriteFile(path, codec.Rows(t.Model.Envelope(), res)); err != nil {
			return paths, fmt.Errorf("track %d: %w", i, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// LoadEnvelope replaces the envelope of track i with the one stored at path.
// The track's undo history is cleared.
func (s *Session) LoadEnvelope(i int, path string) error {
	t, err := s.Track(i)
	if err != nil {
		return err
	}
	_, env, err := codec.ReadFile(path, t.Original.Len())
	if err != nil {
		return err
	}
	if err := s.RestoreEnvelope(i, env); err != nil {
		return err
	}
	s.log.Info("envelope loaded", zap.Int("track", i), zap.String("path", path))
	return nil
}

// RestoreEnvelope replaces the envelope of track i with env and clears the
// track's undo history.
func (s *Session) RestoreEnvelope(i int, env *envelope.Envelope) error {
	if s.phase == PhaseFinalized {
		return fmt.Errorf("%w: drawing is finalized", errs.ErrWrongPhase)
	}
	if err := s.readable(); err != nil {
		return err
	}
	t, err := s.Track(i)
	if err != nil {
		return err
	}
	return t.Model.Replace(env)
}

// EncodeEnvelope writes the persisted rows of track i to w.
func (s *Session) EncodeEnvelope(i int, w io.Writer) error {
	if err := s.readable(); err != nil {
		return err
	}
	res, err := s.Synthesize(i)
	if err != nil {
		return err
	}
	return codec.Encode(w, codec.Rows(s.tracks[i].Model.Envelope(), res))
}

// Render returns the modified audio of track i as export would write it.
func (s *Session) Render(i int) ([]float64, export.Report, error) {
	if err := s.readable(); err != nil {
		return nil, export.Report{}, err
	}
	res, err := s.Synthesize(i)
	if err != nil {
		return nil, export.Report{}, err
	}
	t := s.tracks[i]
	centered, err := t.Centered(res.Waveform)
	if err != nil {
		return nil, export.Report{}, err
	}
	out, rep := export.Correct(centered, t.Baseline)
	return out, rep, nil
}

// LoadEnvelopes loads envelope_<n>.csv for every track that has one in dir
// and returns how many were loaded.
func (s *Session) LoadEnvelopes(dir string) (int, error) {
	loaded := 0
	for i := range s.tracks {
		path := filepath.Join(dir, EnvelopeFileName(i))
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := s.LoadEnvelope(i, path); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// Projections builds the finalDrawing, naturalLanguage and waveComparison
// sets, in that order.
func (s *Session) Projections() ([]projector.Set, error) {
	if err := s.readable(); err != nil {
		return nil, err
	}
	sets := []projector.Set{
		{Name: projector.FinalDrawing, Scheme: s.cfg.Schemes.FinalDrawing},
		{Name: projector.NaturalLang, Scheme: s.cfg.Schemes.NaturalLang},
		{Name: projector.WaveComparison, Scheme: s.cfg.Schemes.WaveComparison},
	}
	for i, t := range s.tracks {
		res, err := s.Synthesize(i)
		if err != nil {
			return nil, err
		}
		sets[0].Tracks = append(sets[0].Tracks, projector.TrackLines{
			Track: i,
			Lines: projector.RawEnvelope(t.Model.Envelope(), t.Baseline, sets[0].Scheme),
		})
		sets[1].Tracks = append(sets[1].Tracks, projector.TrackLines{
			Track: i,
			Lines: projector.SignSubdivided(res.Waveform, sets[1].Scheme),
		})
		sets[2].Tracks = append(sets[2].Tracks, projector.TrackLines{
			Track: i,
			Lines: projector.Comparison(t.Original, res.Waveform,
				s.cfg.OriginalOpacity, s.cfg.ModifiedOpacity, sets[2].Scheme),
		})
	}
	return sets, nil
}

// WriteProjections writes each projection set as JSON into dir.
func (s *Session) WriteProjections(dir string) ([]string, error) {
	sets, err := s.Projections()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, set := range sets {
		data, err := json.MarshalIndent(set, "", "  ")
		if err != nil {
			return paths, fmt.Errorf("%s: %w", set.Name, err)
		}
		path := filepath.Join(dir, projectionFiles[set.Name])
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
