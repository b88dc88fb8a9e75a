package signal

import "math"

func sanitizeSeries(src []float64) []float64 {
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}

// rollingVWAP computes the volume-weighted reference price over the trailing
// window using typical price. Zero total volume yields 0.
func rollingVWAP(highs, lows, closes, volumes []float64, window int) float64 {
	n := len(closes)
	if n == 0 || window <= 0 {
		return 0
	}
	start := n - window
	if start < 0 {
		start = 0
	}
	var pv, vol float64
	for i := start; i < n; i++ {
		typical := (highs[i] + lows[i] + closes[i]) / 3
		pv += typical * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return 0
	}
	return pv / vol
}
