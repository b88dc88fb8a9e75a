package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func momentumEngine() *MomentumEngine {
	return &MomentumEngine{Staleness: 10 * time.Minute}
}

func TestMomentumInsufficientData(t *testing.T) {
	sig := momentumEngine().Evaluate(candlesFromCloses(monotonic(10, 100, 1)), testNow)
	assert.True(t, sig.InsufficientData)
	assert.Equal(t, Hold, sig.Action)
	assert.Zero(t, sig.Confidence)
}

func TestMomentumMalformedBarsFiltered(t *testing.T) {
	// Malformed bars never panic; with enough clean bars left the composite
	// still evaluates.
	bars := withBadBars(candlesFromCloses(zigzagUp(60, 100)))
	sig := momentumEngine().Evaluate(bars, testNow)
	assert.False(t, sig.InsufficientData)
	assert.Equal(t, Buy, sig.Action)

	// Filtering down below the lookback falls into the insufficient path.
	short := withBadBars(candlesFromCloses(monotonic(5, 100, 1)))
	sig = momentumEngine().Evaluate(short, testNow)
	assert.True(t, sig.InsufficientData)
	assert.Equal(t, Hold, sig.Action)
}

func TestMomentumFullComposite(t *testing.T) {
	// Net uptrend with pullbacks keeps RSI inside the continuation band, so
	// all three conditions line up.
	sig := momentumEngine().Evaluate(candlesFromCloses(zigzagUp(60, 100)), testNow)
	require.Equal(t, Buy, sig.Action)
	assert.InDelta(t, momentumFullConfidence, sig.Confidence, 1e-9)
	assert.False(t, sig.Stale)
	require.Contains(t, sig.Snapshot, "rsi")
	rsi := sig.Snapshot["rsi"].Latest
	assert.Greater(t, rsi, momentumRSIFloor)
	assert.Less(t, rsi, momentumRSICeiling)
}

func TestMomentumTwoOfThree(t *testing.T) {
	// A relentless climb pins RSI above the band: crossover and VWAP hold but
	// the oscillator condition fails, leaving the reduced-confidence entry.
	sig := momentumEngine().Evaluate(candlesFromCloses(monotonic(60, 100, 1)), testNow)
	require.Equal(t, Buy, sig.Action)
	assert.InDelta(t, momentumReducedConfidence, sig.Confidence, 1e-9)
}

func TestMomentumHoldOnDowntrend(t *testing.T) {
	sig := momentumEngine().Evaluate(candlesFromCloses(monotonic(60, 200, -1)), testNow)
	assert.Equal(t, Hold, sig.Action)
	assert.Zero(t, sig.Confidence)
}

func TestMomentumStaleHalvesConfidence(t *testing.T) {
	bars := agedCandles(zigzagUp(60, 100), time.Hour)
	sig := momentumEngine().Evaluate(bars, testNow)
	require.Equal(t, Buy, sig.Action)
	assert.True(t, sig.Stale)
	assert.InDelta(t, momentumFullConfidence/2, sig.Confidence, 1e-9)
}

func TestMomentumEmptyInput(t *testing.T) {
	sig := momentumEngine().Evaluate(nil, testNow)
	assert.True(t, sig.InsufficientData)
	assert.Equal(t, Hold, sig.Action)
}
