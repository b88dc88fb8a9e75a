package gameplan

// DeclaredStrategy values accepted in a gameplan document. They are mapped to
// concrete strategies by the selector; "C" is the cash-preservation posture.
const (
	DeclaredMomentum      = "A"
	DeclaredMeanReversion = "B"
	DeclaredCash          = "C"
)

type Catalyst struct {
	Type   string `json:"type"`
	Impact string `json:"impact"`
}

const (
	CatalystEarnings = "earnings"
	ImpactHigh       = "high"
)

type DataQuality struct {
	QuarantineActive bool     `json:"quarantine_active"`
	StaleFields      []string `json:"stale_fields,omitempty"`
}

type HardLimits struct {
	MaxDailyLossPct              float64 `json:"max_daily_loss_pct"`
	MaxSinglePosition            float64 `json:"max_single_position"`
	DayTradesRemaining           int     `json:"day_trades_remaining"`
	ForceCloseAtDaysToExpiry     int     `json:"force_close_at_days_to_expiry"`
	WeeklyDrawdownGovernorActive bool    `json:"weekly_drawdown_governor_active"`
	MaxIntradayPivots            int     `json:"max_intraday_pivots"`
}

// Gameplan is the day's external configuration document. It is either applied
// in full after validation or replaced wholesale by SafeDefault; there is no
// partially-applied state.
type Gameplan struct {
	Date                     string      `json:"date"`
	Regime                   string      `json:"regime"`
	Strategy                 string      `json:"strategy"`
	Symbols                  []string    `json:"symbols"`
	PositionSizeMultiplier   float64     `json:"position_size_multiplier"`
	VolatilityIndexValue     *float64    `json:"volatility_index_value"`
	VolatilitySourceVerified bool        `json:"volatility_source_verified"`
	Catalysts                []Catalyst  `json:"catalysts,omitempty"`
	EarningsBlackout         []string    `json:"earnings_blackout,omitempty"`
	DataQuality              DataQuality `json:"data_quality"`
	HardLimits               HardLimits  `json:"hard_limits"`
}

// SafeDefault returns the canonical zero-risk gameplan used whenever the real
// document is absent, unparsable, or rejected. It is produced deterministically
// and never loaded from external input.
func SafeDefault() Gameplan {
	return Gameplan{
		Strategy:               DeclaredCash,
		Symbols:                nil,
		PositionSizeMultiplier: 0,
		DataQuality:            DataQuality{QuarantineActive: true},
		HardLimits:             HardLimits{},
	}
}

// HasEarnings reports whether any catalyst is of the earnings type.
func HasEarnings(catalysts []Catalyst) bool {
	for _, c := range catalysts {
		if c.Type == CatalystEarnings {
			return true
		}
	}
	return false
}

// CountHighImpact counts catalysts tagged as high impact.
func CountHighImpact(catalysts []Catalyst) int {
	n := 0
	for _, c := range catalysts {
		if c.Impact == ImpactHigh {
			n++
		}
	}
	return n
}
