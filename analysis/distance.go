package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Level summarizes one signal.
type Level struct {
	RMS  float64 `json:"rms"`
	Peak float64 `json:"peak"`
	DC   float64 `json:"dc"`
}

// Metrics compares an original waveform with its envelope-shaped version.
// Both signals share a timeline, so no alignment is done.
type Metrics struct {
	SampleRate int `json:"sample_rate"`
	Frames     int `json:"frames"`

	Original Level `json:"original"`
	Modified Level `json:"modified"`

	GainDB         float64 `json:"gain_db"`
	TimeRMSE       float64 `json:"time_rmse"`
	Correlation    float64 `json:"correlation"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`

	OrigDecayDBPerS float64 `json:"orig_decay_db_per_s"`
	ModDecayDBPerS  float64 `json:"mod_decay_db_per_s"`
}

// Compare measures how far modified departs from original. Signals of
// different length are compared over the shorter one.
func Compare(original []float64, modified []float64, sampleRate int) Metrics {
	n := len(original)
	if len(modified) < n {
		n = len(modified)
	}
	m := Metrics{SampleRate: sampleRate, Frames: n}
	if n == 0 {
		return m
	}
	a, b := original[:n], modified[:n]

	m.Original = level(a)
	m.Modified = level(b)
	m.GainDB = linToDB(m.Modified.RMS) - linToDB(m.Original.RMS)
	m.TimeRMSE = rmse(a, b)
	if stat.Variance(a, nil) > 0 && stat.Variance(b, nil) > 0 {
		m.Correlation = stat.Correlation(a, b, nil)
	}

	frame := 256
	if n < frame {
		frame = n
	}
	hop := frame / 2
	if hop < 1 {
		hop = 1
	}
	origEnv := rmsEnvelope(a, frame, hop)
	modEnv := rmsEnvelope(b, frame, hop)
	if len(origEnv) > 0 {
		diff := make([]float64, len(origEnv))
		for i := range diff {
			diff[i] = linToDB(origEnv[i]) - linToDB(modEnv[i])
		}
		m.EnvelopeRMSEDB = rms1(diff)
	}

	m.OrigDecayDBPerS = math.NaN()
	m.ModDecayDBPerS = math.NaN()
	if sampleRate > 0 {
		hopSec := float64(hop) / float64(sampleRate)
		m.OrigDecayDBPerS = decaySlopeDBPerS(origEnv, hopSec)
		m.ModDecayDBPerS = decaySlopeDBPerS(modEnv, hopSec)
	}
	return m
}

func level(x []float64) Level {
	return Level{
		RMS:  rms1(x),
		Peak: floats.Norm(x, math.Inf(1)),
		DC:   stat.Mean(x, nil),
	}
}

func rmse(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	return floats.Distance(a[:n], b[:n], 2) / math.Sqrt(float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return floats.Norm(x, 2) / math.Sqrt(float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// decaySlopeDBPerS fits a line to the envelope in dB from its peak until it
// has dropped 60 dB. NaN when there is too little decay to fit.
func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	db := make([]float64, len(env))
	for i, v := range env {
		db[i] = linToDB(v)
	}
	peakIdx := floats.MaxIdx(db)
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	threshold := db[peakIdx] - 60.0
	end := len(env)
	for i := start; i < len(env); i++ {
		if db[i] < threshold {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	xs := make([]float64, end-start)
	for i := range xs {
		xs[i] = float64(i) * hopSec
	}
	ys := db[start:end]
	if stat.Variance(ys, nil) == 0 {
		return 0
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
