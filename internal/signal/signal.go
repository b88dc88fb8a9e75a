package signal

import (
	"time"

	"helmsman/internal/market"
	"helmsman/internal/strategy"
)

type Action int

const (
	Hold Action = iota
	Buy
	Sell
)

func (a Action) String() string {
	switch a {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// IndicatorValue holds one indicator's latest value and qualitative state for
// the diagnostic snapshot.
type IndicatorValue struct {
	Latest float64 `json:"latest"`
	State  string  `json:"state,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// Snapshot is the opaque diagnostic payload attached to every signal.
type Snapshot map[string]IndicatorValue

// Signal is recomputed every evaluation cycle and never persisted.
type Signal struct {
	Action           Action   `json:"action"`
	Confidence       float64  `json:"confidence"`
	Snapshot         Snapshot `json:"indicator_snapshot,omitempty"`
	Stale            bool     `json:"stale"`
	InsufficientData bool     `json:"insufficient_data"`
}

// Evaluator is the per-strategy evaluation contract: a pure function of the
// bar sequence, total over malformed input.
type Evaluator interface {
	Evaluate(candles []market.Candle, now time.Time) Signal
}

// EngineFor returns the evaluator for the selected strategy. CashPreservation
// always holds.
func EngineFor(kind strategy.Kind, staleness time.Duration) Evaluator {
	switch kind {
	case strategy.Momentum:
		return &MomentumEngine{Staleness: staleness}
	case strategy.MeanReversion:
		return &MeanReversionEngine{Staleness: staleness}
	default:
		return holdEngine{}
	}
}

type holdEngine struct{}

func (holdEngine) Evaluate([]market.Candle, time.Time) Signal {
	return Signal{Action: Hold}
}

func insufficient() Signal {
	return Signal{Action: Hold, Confidence: 0, InsufficientData: true}
}
