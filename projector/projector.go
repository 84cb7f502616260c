// Package projector turns envelope and waveform state into polylines for an
// external renderer. It draws nothing itself.
package projector

import (
	"math"

	"github.com/cwbudde/algo-envelope/envelope"
	"github.com/cwbudde/algo-envelope/waveform"
)

// Set names used for the three projections.
const (
	FinalDrawing   = "finalDrawing"
	NaturalLang    = "naturalLanguage"
	WaveComparison = "waveComparison"
)

// Default overlay opacities for the comparison projection.
const (
	DefaultOriginalOpacity = 0.6
	DefaultModifiedOpacity = 0.4
)

// Point is one polyline vertex in (sample index, amplitude) space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polyline is one renderable line.
type Polyline struct {
	Label   string  `json:"label"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	// Start and End are the first and last sample index the line covers.
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Points []Point `json:"points"`
}

// TrackLines groups the polylines of one track.
type TrackLines struct {
	Track int        `json:"track"`
	Lines []Polyline `json:"lines"`
}

// Set is one named projection over all tracks with its color scheme.
type Set struct {
	Name   string       `json:"name"`
	Scheme ColorScheme  `json:"scheme"`
	Tracks []TrackLines `json:"tracks"`
}

// RawEnvelope returns the drawn envelope as two polylines, positive first,
// with vertices at baseline+positive[i] and baseline-negative[i] for drawn
// indices only.
func RawEnvelope(env *envelope.Envelope, baseline float64, scheme ColorScheme) []Polyline {
	pos := Polyline{Label: "positive", Color: scheme.Positive, Opacity: 1, Start: -1, End: -1}
	neg := Polyline{Label: "negative", Color: scheme.Negative, Opacity: 1, Start: -1, End: -1}
	for _, i := range env.DrawnIndices(waveform.Positive) {
		pos.Points = append(pos.Points, Point{X: float64(i), Y: baseline + env.Positive(i)})
	}
	for _, i := range env.DrawnIndices(waveform.Negative) {
		neg.Points = append(neg.Points, Point{X: float64(i), Y: baseline - env.Negative(i)})
	}
	for _, l := range []*Polyline{&pos, &neg} {
		if len(l.Points) > 0 {
			l.Start = int(l.Points[0].X)
			l.End = int(l.Points[len(l.Points)-1].X)
		}
	}
	return []Polyline{pos, neg}
}

// SignSubdivided splits w into maximal runs of constant sign (zero counts as
// positive). A run ends where the sign of sample i differs from sample i-1;
// both neighbouring runs share a synthesized zero-crossing vertex, so the
// concatenated runs form one unbroken line.
func SignSubdivided(w *waveform.Waveform, scheme ColorScheme) []Polyline {
	n := w.Len()
	if n == 0 {
		return nil
	}
	var out []Polyline
	start := func(i int, lead *Point) Polyline {
		sign := waveform.SignOf(w.At(i))
		l := Polyline{Label: sign.String(), Color: scheme.Positive, Opacity: 1, Start: i}
		if sign == waveform.Negative {
			l.Color = scheme.Negative
		}
		if lead != nil {
			l.Points = append(l.Points, *lead)
		}
		return l
	}

	cur := start(0, nil)
	cur.Points = append(cur.Points, Point{X: 0, Y: w.At(0)})
	for i := 1; i < n; i++ {
		prev, v := w.At(i-1), w.At(i)
		if waveform.SignOf(prev) != waveform.SignOf(v) {
			cross := zeroCrossing(float64(i-1), prev, float64(i), v)
			cur.Points = append(cur.Points, cross)
			cur.End = i - 1
			out = append(out, cur)
			cur = start(i, &cross)
		}
		cur.Points = append(cur.Points, Point{X: float64(i), Y: v})
	}
	cur.End = n - 1
	return append(out, cur)
}

func zeroCrossing(x0, y0, x1, y1 float64) Point {
	dy := y1 - y0
	t := 0.5
	if math.Abs(dy) > 1e-12 {
		t = -y0 / dy
	}
	return Point{X: x0 + t*(x1-x0), Y: 0}
}

// Comparison returns the original and modified waveforms as full-range
// polylines. Opacities are passed through unchanged.
func Comparison(orig, mod *waveform.Waveform, origOpacity, modOpacity float64, scheme ColorScheme) []Polyline {
	return []Polyline{
		fullLine("original", orig, scheme.Negative, origOpacity),
		fullLine("modified", mod, scheme.Positive, modOpacity),
	}
}

func fullLine(label string, w *waveform.Waveform, color string, opacity float64) Polyline {
	l := Polyline{Label: label, Color: color, Opacity: opacity, Start: 0, End: w.Len() - 1}
	l.Points = make([]Point, w.Len())
	for i := range l.Points {
		l.Points[i] = Point{X: float64(i), Y: w.At(i)}
	}
	return l
}
