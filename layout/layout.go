// Package layout partitions the vertical display range [0,1] into one band
// per track. Band 0 is at the top; coordinates grow downwards.
package layout

import (
	"fmt"

	"github.com/cwbudde/algo-envelope/errs"
)

// DefaultMinHeight is the smallest band height Adjust will produce.
const DefaultMinHeight = 0.02

// Band is the [Top, Bottom) display region of one track.
type Band struct {
	Top    float64
	Bottom float64
}

// Height returns Bottom-Top.
func (b Band) Height() float64 { return b.Bottom - b.Top }

// Contains reports whether y lies inside the band. The last band also owns y == 1.
func (b Band) Contains(y float64) bool {
	return y >= b.Top && (y < b.Bottom || (b.Bottom == 1 && y == 1))
}

// Manager owns the bands of a session.
type Manager struct {
	bands     []Band
	minHeight float64
	frozen    bool
}

// NewManager splits [0,1] into n equal bands.
func NewManager(n int, minHeight float64) (*Manager, error) {
	if n < 1 {
		return nil, fmt.Errorf("track count must be >= 1, got %d", n)
	}
	if minHeight < 0 || minHeight*float64(n) > 1 {
		return nil, fmt.Errorf("min band height %g infeasible for %d tracks", minHeight, n)
	}
	m := &Manager{bands: make([]Band, n), minHeight: minHeight}
	for i := range m.bands {
		m.bands[i] = Band{Top: float64(i) / float64(n), Bottom: float64(i+1) / float64(n)}
	}
	m.bands[0].Top = 0
	m.bands[n-1].Bottom = 1
	return m, nil
}

// Len returns the number of bands.
func (m *Manager) Len() int { return len(m.bands) }

// Band returns band i.
func (m *Manager) Band(i int) Band { return m.bands[i] }

// Bands returns a copy of all bands, top to bottom.
func (m *Manager) Bands() []Band { return append([]Band(nil), m.bands...) }

// Frozen reports whether Finalize has been called.
func (m *Manager) Frozen() bool { return m.frozen }

// Locate returns the band containing y, or -1.
func (m *Manager) Locate(y float64) int {
	for i, b := range m.bands {
		if b.Contains(y) {
			return i
		}
	}
	return -1
}

// Adjust moves the bottom boundary of band i to newBottom and redistributes
// the space below it among the following bands, weighted by their previous
// heights. Bands above i and the top of band i are not moved. The boundary is
// clamped so every band keeps at least the minimum height. The last band's
// bottom is fixed at 1, so adjusting it is a no-op.
func (m *Manager) Adjust(i int, newBottom float64) error {
	if m.frozen {
		return errs.ErrLayoutFrozen
	}
	if i < 0 || i >= len(m.bands) {
		return fmt.Errorf("%w: %d", errs.ErrTrackIndex, i)
	}
	n := len(m.bands)
	if i == n-1 {
		return nil
	}
	rest := n - 1 - i
	lo := m.bands[i].Top + m.minHeight
	hi := 1 - float64(rest)*m.minHeight
	if newBottom < lo {
		newBottom = lo
	}
	if newBottom > hi {
		newBottom = hi
	}

	weights := make([]float64, rest)
	var total float64
	for k := range weights {
		weights[k] = m.bands[i+1+k].Height()
		total += weights[k]
	}
	if total <= 0 {
		for k := range weights {
			weights[k] = 1
		}
		total = float64(rest)
	}

	span := 1 - newBottom
	heights := make([]float64, rest)
	feasible := true
	for k, w := range weights {
		heights[k] = span * w / total
		if heights[k] < m.minHeight {
			feasible = false
		}
	}
	if !feasible {
		// Give every band its minimum, then share what is left by weight.
		spare := span - float64(rest)*m.minHeight
		for k, w := range weights {
			heights[k] = m.minHeight + spare*w/total
		}
	}

	m.bands[i].Bottom = newBottom
	y := newBottom
	for k := range heights {
		b := &m.bands[i+1+k]
		b.Top = y
		y += heights[k]
		b.Bottom = y
	}
	m.bands[n-1].Bottom = 1
	return nil
}

// Finalize freezes the current bands; later Adjust calls fail with ErrLayoutFrozen.
func (m *Manager) Finalize() {
	m.frozen = true
}

// ToLocal maps a global y inside band i to [0,1] within the band.
func (m *Manager) ToLocal(i int, y float64) float64 {
	b := m.bands[i]
	h := b.Height()
	if h <= 0 {
		return 0
	}
	return (y - b.Top) / h
}
