package playback

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestEncodeFloat32LE(t *testing.T) {
	in := []float64{0, 0.5, -0.25, 1.5, -3}
	want := []float32{0, 0.5, -0.25, 1, -1}
	buf := encodeFloat32LE(in)
	if len(buf) != 4*len(in) {
		t.Fatalf("len=%d", len(buf))
	}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		if got != w {
			t.Fatalf("sample %d = %g, want %g", i, got, w)
		}
	}
}
