package strategy

import "time"

// Kind is the closed set of strategies. The three variants are exhaustively
// known; selection never falls through to an undefined fourth case.
type Kind int

const (
	CashPreservation Kind = iota
	Momentum
	MeanReversion
)

func (k Kind) String() string {
	switch k {
	case Momentum:
		return "momentum"
	case MeanReversion:
		return "mean_reversion"
	case CashPreservation:
		return "cash_preservation"
	default:
		return "unknown"
	}
}

// Declared maps a gameplan strategy letter to a Kind. Anything unrecognized
// resolves to CashPreservation.
func Declared(letter string) Kind {
	switch letter {
	case "A":
		return Momentum
	case "B":
		return MeanReversion
	default:
		return CashPreservation
	}
}

// Params is the fixed per-strategy parameter bundle. Bundles are returned by
// value so one strategy's cycle can never read another's numbers.
type Params struct {
	MaxRiskPct      float64
	MaxPositionPct  float64
	TakeProfitPct   float64
	StopLossPct     float64
	TimeStop        time.Duration
	MinDaysToExpiry int
	StrikeRule      string
}

var bundles = map[Kind]Params{
	Momentum: {
		MaxRiskPct:      0.02,
		MaxPositionPct:  0.10,
		TakeProfitPct:   0.50,
		StopLossPct:     0.25,
		TimeStop:        4 * time.Hour,
		MinDaysToExpiry: 7,
		StrikeRule:      "first_otm",
	},
	MeanReversion: {
		MaxRiskPct:      0.01,
		MaxPositionPct:  0.05,
		TakeProfitPct:   0.30,
		StopLossPct:     0.15,
		TimeStop:        2 * time.Hour,
		MinDaysToExpiry: 14,
		StrikeRule:      "atm",
	},
	// CashPreservation takes no positions; its bundle is all-zero.
	CashPreservation: {},
}

// ParamsFor returns the bundle for k by value.
func ParamsFor(k Kind) Params {
	return bundles[k]
}
