package signal

import (
	"fmt"
	"time"

	"github.com/markcheno/go-talib"

	"helmsman/internal/market"
)

// Mean-reversion composite parameters.
const (
	mrRSIPeriod    = 14
	mrRSIOversold  = 30.0
	mrRSIOverought = 70.0

	mrBandPeriod = 20
	mrBandDev    = 2.0

	// Price within this fraction of a band counts as touching it. The exact
	// tolerance is a tunable, covered by boundary tests.
	bandTouchTolerance = 0.002

	mrFullConfidence = 0.85
	mrWeakConfidence = 0.4
)

const meanReversionLookback = mrBandPeriod + 1

// MeanReversionEngine implements the contrarian composite: RSI at an extreme
// plus price touching or breaching the same-side volatility band. Because
// entries are contrarian, stale data suppresses the signal entirely instead
// of reducing confidence.
type MeanReversionEngine struct {
	Staleness time.Duration
}

func (e *MeanReversionEngine) Evaluate(candles []market.Candle, now time.Time) Signal {
	bars := market.Filter(candles)
	if len(bars) < meanReversionLookback {
		return insufficient()
	}
	stale := market.Stale(bars, now, e.Staleness)

	closes := market.Closes(bars)
	upperRaw, _, lowerRaw := talib.BBands(closes, mrBandPeriod, mrBandDev, mrBandDev, talib.SMA)
	upper := lastValid(sanitizeSeries(upperRaw))
	lower := lastValid(sanitizeSeries(lowerRaw))
	rsi := lastValid(sanitizeSeries(talib.Rsi(closes, mrRSIPeriod)))
	lastClose := closes[len(closes)-1]

	oversold := rsi <= mrRSIOversold
	overbought := rsi >= mrRSIOverought
	touchLower := lower > 0 && lastClose <= lower*(1+bandTouchTolerance)
	touchUpper := upper > 0 && lastClose >= upper*(1-bandTouchTolerance)

	sig := Signal{Action: Hold, Stale: stale, Snapshot: Snapshot{
		"rsi":        {Latest: rsi, State: rsiState(oversold, overbought), Note: fmt.Sprintf("period=%d thresholds=%.0f/%.0f", mrRSIPeriod, mrRSIOversold, mrRSIOverought)},
		"band_upper": {Latest: upper, State: boolState(touchUpper, "touched", "clear"), Note: fmt.Sprintf("period=%d dev=%.1f", mrBandPeriod, mrBandDev)},
		"band_lower": {Latest: lower, State: boolState(touchLower, "touched", "clear")},
		"close":      {Latest: lastClose},
	}}

	switch {
	case oversold && touchLower:
		sig.Action = Buy
		sig.Confidence = mrFullConfidence
	case overbought && touchUpper:
		sig.Action = Sell
		sig.Confidence = mrFullConfidence
	case oversold:
		sig.Action = Buy
		sig.Confidence = mrWeakConfidence
	case overbought:
		sig.Action = Sell
		sig.Confidence = mrWeakConfidence
	default:
		return sig
	}
	if stale {
		return Signal{Action: Hold, Stale: true, Snapshot: sig.Snapshot}
	}
	return sig
}

func rsiState(oversold, overbought bool) string {
	switch {
	case oversold:
		return "oversold"
	case overbought:
		return "overbought"
	default:
		return "neutral"
	}
}
