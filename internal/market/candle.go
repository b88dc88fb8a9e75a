package market

import (
	"math"
	"time"
)

type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Valid reports whether the candle carries usable OHLC fields. Feeds
// occasionally deliver bars with a missing close or NaN placeholders; such
// bars are dropped rather than propagated into indicator math.
func (c Candle) Valid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	return c.CloseTime > 0 && c.High >= c.Low
}

func (c Candle) ClosedAt() time.Time {
	return time.UnixMilli(c.CloseTime)
}

// Filter returns only the valid candles, preserving order.
func Filter(candles []Candle) []Candle {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Stale reports whether the most recent candle closed more than maxAge before now.
// An empty series is always stale.
func Stale(candles []Candle, now time.Time, maxAge time.Duration) bool {
	if len(candles) == 0 {
		return true
	}
	last := candles[len(candles)-1]
	return now.Sub(last.ClosedAt()) > maxAge
}

// Closes extracts the close series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// Highs extracts the high series.
func Highs(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.High
	}
	return out
}

// Lows extracts the low series.
func Lows(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Low
	}
	return out
}

// Volumes extracts the volume series.
func Volumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
