// Package codec persists envelopes as row-oriented CSV text, one row per
// original peak. The rows are the durable form of a track: the synthesizer
// regenerates the full modified waveform from them.
package codec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/errs"
	"github.com/cwbudde/algo-envelope/synth"
	"github.com/cwbudde/algo-envelope/waveform"
)

// Column names, in the order Encode writes them.
const (
	ColIndex         = "index"
	ColPositivePeak  = "positive_peak"
	ColNegativePeak  = "negative_peak"
	ColDrawnPositive = "drawn_positive"
	ColDrawnNegative = "drawn_negative"
	ColScaleFactor   = "scale_factor"
)

// Header is the header row written by Encode.
var Header = []string{ColIndex, ColPositivePeak, ColNegativePeak, ColDrawnPositive, ColDrawnNegative, ColScaleFactor}

var required = []string{ColIndex, ColDrawnPositive, ColDrawnNegative}

// aliases maps the dense per-sample layout written by earlier versions of the
// tool (Index,Positive,Negative) onto the current columns.
var aliases = map[string]string{
	"positive": ColDrawnPositive,
	"negative": ColDrawnNegative,
}

// Row is one persisted anchor.
type Row struct {
	Index         int
	PositivePeak  float64
	NegativePeak  float64
	DrawnPositive float64
	DrawnNegative float64
	ScaleFactor   float64
}

// Rows builds one row per anchor of a synthesis result, in ascending index order.
func Rows(env *envelope.Envelope, res *synth.Result) []Row {
	out := make([]Row, 0, len(res.Anchors))
	for _, a := range res.Anchors {
		r := Row{
			Index:         a.Peak.Index,
			DrawnPositive: env.Positive(a.Peak.Index),
			DrawnNegative: env.Negative(a.Peak.Index),
			ScaleFactor:   a.Factor,
		}
		if a.Peak.Sign == waveform.Negative {
			r.NegativePeak = a.Peak.Amplitude
		} else {
			r.PositivePeak = a.Peak.Amplitude
		}
		out = append(out, r)
	}
	return out
}

// Encode writes the header and rows as CSV.
func Encode(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	rec := make([]string, len(Header))
	for _, r := range rows {
		rec[0] = strconv.Itoa(r.Index)
		rec[1] = formatFloat(r.PositivePeak)
		rec[2] = formatFloat(r.NegativePeak)
		rec[3] = formatFloat(r.DrawnPositive)
		rec[4] = formatFloat(r.DrawnNegative)
		rec[5] = formatFloat(r.ScaleFactor)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat uses the shortest representation that parses back to the same bits.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Decode parses CSV written by Encode, or the legacy dense layout. Columns are
// matched by name in any order; unknown columns are ignored.
func Decode(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &errs.SchemaError{Missing: append([]string(nil), required...)}
	}
	if err != nil {
		return nil, &errs.FormatError{Row: 0, Reason: err.Error()}
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &errs.SchemaError{Missing: missing}
	}

	var rows []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &errs.FormatError{Row: line, Reason: err.Error()}
		}
		row, err := parseRow(line, rec, cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string, cols map[string]int) (Row, error) {
	var row Row
	idxText := strings.TrimSpace(rec[cols[ColIndex]])
	idx, err := strconv.Atoi(idxText)
	if err != nil {
		// Accept integral floats such as "12.0".
		f, ferr := strconv.ParseFloat(idxText, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return row, &errs.FormatError{Row: line, Column: ColIndex, Value: idxText, Reason: "not an integer"}
		}
		idx = int(f)
	}
	row.Index = idx

	fields := []struct {
		name     string
		dst      *float64
		nonNeg   bool
		optional bool
	}{
		{ColPositivePeak, &row.PositivePeak, false, true},
		{ColNegativePeak, &row.NegativePeak, false, true},
		{ColDrawnPositive, &row.DrawnPositive, true, false},
		{ColDrawnNegative, &row.DrawnNegative, true, false},
		{ColScaleFactor, &row.ScaleFactor, false, true},
	}
	for _, f := range fields {
		c, ok := cols[f.name]
		if !ok {
			continue
		}
		text := strings.TrimSpace(rec[c])
		if text == "" && f.optional {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return row, &errs.FormatError{Row: line, Column: f.name, Index: idx, Value: text, Reason: "not a finite number"}
		}
		if f.nonNeg && v < 0 {
			return row, &errs.FormatError{Row: line, Column: f.name, Index: idx, Value: text, Reason: "drawn magnitude must be >= 0"}
		}
		*f.dst = v
	}
	return row, nil
}

// Restore rebuilds an envelope of sampleCount samples from rows. Indices not
// present in rows stay at zero.
func Restore(rows []Row, sampleCount int) (*envelope.Envelope, error) {
	env := envelope.New(sampleCount)
	for k, r := range rows {
		if r.Index < 0 || r.Index >= sampleCount {
			return nil, &errs.FormatError{
				Row:    k + 1,
				Index:  r.Index,
				Reason: fmt.Sprintf("index out of range [0,%d)", sampleCount),
			}
		}
		if err := env.Set(waveform.Positive, r.Index, r.DrawnPositive); err != nil {
			return nil, &errs.FormatError{Row: k + 1, Index: r.Index, Reason: err.Error()}
		}
		if err := env.Set(waveform.Negative, r.Index, r.DrawnNegative); err != nil {
			return nil, &errs.FormatError{Row: k + 1, Index: r.Index, Reason: err.Error()}
		}
	}
	return env, nil
}

// WriteFile encodes rows to path. The file only appears once fully written.
func WriteFile(path string, rows []Row) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := Encode(f, rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ReadFile decodes rows from path and restores an envelope of sampleCount samples.
func ReadFile(path string, sampleCount int) ([]Row, *envelope.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	rows, err := Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	env, err := Restore(rows, sampleCount)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, env, nil
}
