package projector

import (
	"fmt"
	"strings"
)

// ColorScheme is the palette a renderer applies to one polyline set.
type ColorScheme struct {
	Background string `json:"background"`
	Positive   string `json:"positive"`
	Negative   string `json:"negative"`
}

// DefaultScheme is black with green lines.
var DefaultScheme = ColorScheme{Background: "#000000", Positive: "#00FF00", Negative: "#00FF00"}

// Validate checks that every color is a #RRGGBB hex string.
func (c ColorScheme) Validate() error {
	for _, f := range []struct{ name, v string }{
		{"background", c.Background},
		{"positive", c.Positive},
		{"negative", c.Negative},
	} {
		if !isHexColor(f.v) {
			return fmt.Errorf("%s color %q is not #RRGGBB", f.name, f.v)
		}
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NamedColor is one palette entry.
type NamedColor struct {
	Name string
	Hex  string
}

// Palettes offered for each role of a scheme.
var (
	BackgroundPalette = []NamedColor{
		{"Black", "#000000"}, {"Electric Blue", "#0000FF"}, {"Neon Purple", "#BF00FF"},
		{"Bright Cyan", "#00FFFF"}, {"Vibrant Magenta", "#FF00FF"}, {"Neon Green", "#39FF14"},
		{"Hot Pink", "#FF69B4"}, {"Neon Orange", "#FF4500"}, {"Bright Yellow", "#FFFF00"},
		{"Electric Lime", "#CCFF00"}, {"Vivid Red", "#FF0000"}, {"Deep Sky Blue", "#00BFFF"},
		{"Vivid Violet", "#9F00FF"}, {"Fluorescent Pink", "#FF1493"}, {"Laser Lemon", "#FFFF66"},
		{"Screamin' Green", "#66FF66"}, {"Ultra Red", "#FF2400"}, {"Radical Red", "#FF355E"},
		{"Vivid Orange", "#FFA500"}, {"Electric Indigo", "#6F00FF"},
	}
	PositivePalette = []NamedColor{
		{"Vibrant Green", "#00FF00"}, {"Neon Green", "#39FF14"}, {"Electric Lime", "#CCFF00"},
		{"Bright Yellow", "#FFFF00"}, {"Vivid Cyan", "#00FFFF"}, {"Electric Blue", "#0000FF"},
		{"Neon Purple", "#BF00FF"}, {"Hot Pink", "#FF69B4"}, {"Neon Orange", "#FF4500"},
		{"Vivid Red", "#FF0000"}, {"Screamin' Green", "#66FF66"}, {"Laser Lemon", "#FFFF66"},
		{"Fluorescent Magenta", "#FF00FF"}, {"Hyper Blue", "#1F51FF"}, {"Electric Teal", "#00FFEF"},
		{"Vivid Turquoise", "#00CED1"}, {"Radical Red", "#FF355E"}, {"Ultra Violet", "#7F00FF"},
		{"Neon Coral", "#FF6EC7"}, {"Luminous Lime", "#BFFF00"},
	}
	NegativePalette = []NamedColor{
		{"Vibrant Green", "#00FF00"}, {"Neon Orange", "#FF4500"}, {"Hot Pink", "#FF69B4"},
		{"Vivid Cyan", "#00FFFF"}, {"Electric Blue", "#0000FF"}, {"Neon Purple", "#BF00FF"},
		{"Bright Yellow", "#FFFF00"}, {"Electric Lime", "#CCFF00"}, {"Vivid Red", "#FF0000"},
		{"Deep Pink", "#FF1493"}, {"Screamin' Green", "#66FF66"}, {"Laser Lemon", "#FFFF66"},
		{"Fluorescent Magenta", "#FF00FF"}, {"Hyper Blue", "#1F51FF"}, {"Electric Teal", "#00FFEF"},
		{"Vivid Turquoise", "#00CED1"}, {"Radical Red", "#FF355E"}, {"Ultra Violet", "#7F00FF"},
		{"Neon Coral", "#FF6EC7"}, {"Luminous Lime", "#BFFF00"},
	}
)

// ResolveColor accepts a #RRGGBB value, a palette name (case-insensitive) or
// a 1-based palette number.
func ResolveColor(palette []NamedColor, v string) (string, error) {
	v = strings.TrimSpace(v)
	if isHexColor(v) {
		return strings.ToUpper(v), nil
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err == nil && fmt.Sprint(n) == v {
		if n < 1 || n > len(palette) {
			return "", fmt.Errorf("color number %d out of range 1..%d", n, len(palette))
		}
		return palette[n-1].Hex, nil
	}
	for _, c := range palette {
		if strings.EqualFold(c.Name, v) {
			return c.Hex, nil
		}
	}
	return "", fmt.Errorf("unknown color %q", v)
}
