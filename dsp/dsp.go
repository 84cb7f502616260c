package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// Lerp linearly interpolates between a and b at frac (0 -> a, 1 -> b).
func Lerp(a, b, frac float64) float64 {
	return a + frac*(b-a)
}

// LerpIndex interpolates the value at integer position i on the line through
// (i0, v0) and (i1, v1). i0 == i1 returns v1.
func LerpIndex(i0 int, v0 float64, i1 int, v1 float64, i int) float64 {
	if i1 == i0 {
		return v1
	}
	frac := float64(i-i0) / float64(i1-i0)
	return Lerp(v0, v1, frac)
}

// Ramp returns n evenly spaced values from start to end, both inclusive.
func Ramp(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = end
		return out
	}
	for i := range out {
		out[i] = LerpIndex(0, start, n-1, end, i)
	}
	// Pin the endpoint so it is exact regardless of rounding.
	out[n-1] = end
	return out
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FlushDenormals converts denormal numbers to zero.
func FlushDenormals(x float64) float64 {
	return dspcore.FlushDenormals(x)
}
