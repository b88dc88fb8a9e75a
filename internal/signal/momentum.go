package signal

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"helmsman/internal/market"
)

// Momentum composite parameters.
const (
	momentumFastEMA   = 9
	momentumSlowEMA   = 21
	momentumRSIPeriod = 14
	momentumVWAPBars  = 20

	// RSI must sit inside the continuation band: above neutral, below
	// overbought.
	momentumRSIFloor   = 50.0
	momentumRSICeiling = 70.0

	// Condition weights. The crossover carries the most weight so that the two
	// secondary conditions alone never clear the minimum bar.
	weightCrossover = 0.5
	weightRSIBand   = 0.3
	weightVWAP      = 0.2
	momentumMinBar  = 0.6

	momentumFullConfidence    = 0.9
	momentumReducedConfidence = 0.55
)

// momentumLookback is the longest indicator lookback plus one bar of margin.
const momentumLookback = momentumSlowEMA + 1

// MomentumEngine implements the trend-continuation composite: fast/slow EMA
// crossover, RSI inside the continuation band, and price above the rolling
// VWAP.
type MomentumEngine struct {
	Staleness time.Duration
}

func (e *MomentumEngine) Evaluate(candles []market.Candle, now time.Time) Signal {
	bars := market.Filter(candles)
	if len(bars) < momentumLookback {
		return insufficient()
	}
	stale := market.Stale(bars, now, e.Staleness)

	closes := market.Closes(bars)
	highs := market.Highs(bars)
	lows := market.Lows(bars)
	volumes := market.Volumes(bars)

	emaFast := lastValid(sanitizeSeries(talib.Ema(closes, momentumFastEMA)))
	emaSlow := lastValid(sanitizeSeries(talib.Ema(closes, momentumSlowEMA)))
	rsi := lastValid(sanitizeSeries(talib.Rsi(closes, momentumRSIPeriod)))
	vwap := rollingVWAP(highs, lows, closes, volumes, momentumVWAPBars)
	lastClose := closes[len(closes)-1]

	crossBullish := emaFast > emaSlow && emaSlow > 0
	rsiInBand := rsi > momentumRSIFloor && rsi < momentumRSICeiling
	aboveVWAP := vwap > 0 && lastClose > vwap

	score := 0.0
	met := 0
	if crossBullish {
		score += weightCrossover
		met++
	}
	if rsiInBand {
		score += weightRSIBand
		met++
	}
	if aboveVWAP {
		score += weightVWAP
		met++
	}

	sig := Signal{Action: Hold, Stale: stale, Snapshot: Snapshot{
		"ema_fast": {Latest: emaFast, State: boolState(crossBullish, "bullish", "bearish"), Note: fmt.Sprintf("EMA%d", momentumFastEMA)},
		"ema_slow": {Latest: emaSlow, Note: fmt.Sprintf("EMA%d", momentumSlowEMA)},
		"rsi":      {Latest: rsi, State: boolState(rsiInBand, "continuation", "outside_band"), Note: fmt.Sprintf("period=%d band=%.0f..%.0f", momentumRSIPeriod, momentumRSIFloor, momentumRSICeiling)},
		"vwap":     {Latest: vwap, State: boolState(aboveVWAP, "above", "below"), Note: fmt.Sprintf("window=%d", momentumVWAPBars)},
	}}

	switch {
	case met == 3:
		sig.Action = Buy
		sig.Confidence = momentumFullConfidence
	case met == 2 && score >= momentumMinBar:
		sig.Action = Buy
		sig.Confidence = momentumReducedConfidence
	default:
		return sig
	}
	if stale {
		sig.Confidence /= 2
	}
	return sig
}

func boolState(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
