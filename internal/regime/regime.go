package regime

import "math"

// Regime is a discrete classification of market volatility used to select a
// trading posture.
type Regime int

const (
	Complacency Regime = iota
	Normal
	Elevated
	Crisis
	Error
)

func (r Regime) String() string {
	switch r {
	case Complacency:
		return "complacency"
	case Normal:
		return "normal"
	case Elevated:
		return "elevated"
	case Crisis:
		return "crisis"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// TradingAllowed reports whether the regime permits any non-cash strategy.
func (r Regime) TradingAllowed() bool {
	switch r {
	case Complacency, Normal, Elevated:
		return true
	default:
		return false
	}
}

// VIX band boundaries, inclusive lower and exclusive upper.
const (
	complacencyUpper = 15.0
	normalUpper      = 18.0
	elevatedUpper    = 25.0
)

// Detect maps a volatility index reading to a regime. The mapping is total:
// NaN and infinities resolve to Crisis (missing data is treated as the worst
// case, not a structural bug), while a negative reading is a structural
// impossibility and maps to Error.
func Detect(vix float64) Regime {
	if math.IsNaN(vix) || math.IsInf(vix, 0) {
		return Crisis
	}
	switch {
	case vix < 0:
		return Error
	case vix < complacencyUpper:
		return Complacency
	case vix < normalUpper:
		return Normal
	case vix < elevatedUpper:
		return Elevated
	default:
		return Crisis
	}
}

// DetectValue handles an optional reading; absence maps to Crisis.
func DetectValue(vix *float64) Regime {
	if vix == nil {
		return Crisis
	}
	return Detect(*vix)
}
