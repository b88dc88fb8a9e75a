package strategy

import (
	"strings"

	"helmsman/internal/gameplan"
	"helmsman/internal/regime"
)

// Selection reason codes, in cascade order.
const (
	ReasonQuarantine        = "quarantine_active"
	ReasonWeeklyGovernor    = "weekly_governor_locked"
	ReasonPivotLimit        = "pivot_limit_reached"
	ReasonEarningsBlackout  = "earnings_blackout"
	ReasonMultiHighImpact   = "multiple_high_impact_catalysts"
	ReasonRegimeCrisis      = "regime_crisis"
	ReasonRegimeError       = "regime_error"
	ReasonRegimeMomentum    = "regime_momentum"
	ReasonRegimeElevated    = "regime_elevated"
	ReasonSingleHighImpact  = "single_high_impact_catalyst"
)

// MeanReversion trades a restricted universe: the first symbols of the
// configured list, in gameplan order.
const meanReversionUniverseCap = 3

// Input carries everything the cascade consumes.
type Input struct {
	Regime       regime.Regime
	Catalysts    []gameplan.Catalyst
	Symbols      []string
	Blackout     []string
	Quarantine   bool
	WeeklyLocked bool
	Pivots       int
	PivotLimit   int
}

// Selection is the cascade outcome: strategy, tradeable universe, sizing and
// the reasons that produced it.
type Selection struct {
	Strategy       Kind
	Symbols        []string
	SizeMultiplier float64
	Params         Params
	Reasons        []string
}

// Select applies the priority cascade; the first matching rule wins. All rules
// except the regime mapping are absolute.
func Select(in Input) Selection {
	if in.PivotLimit <= 0 {
		in.PivotLimit = 2
	}
	if reasons := absoluteOverrides(in); len(reasons) > 0 {
		return cash(reasons)
	}
	highImpact := gameplan.CountHighImpact(in.Catalysts)
	if gameplan.HasEarnings(in.Catalysts) {
		// Earnings blackout is absolute; there is no size-reduction fallback.
		return cash([]string{ReasonEarningsBlackout})
	}
	if highImpact >= 2 {
		return cash([]string{ReasonMultiHighImpact})
	}
	switch in.Regime {
	case regime.Crisis:
		return cash([]string{ReasonRegimeCrisis})
	case regime.Error:
		return cash([]string{ReasonRegimeError})
	case regime.Complacency, regime.Normal:
		sel := Selection{
			Strategy:       Momentum,
			Symbols:        excludeBlackout(in.Symbols, in.Blackout),
			SizeMultiplier: 1.0,
			Params:         ParamsFor(Momentum),
			Reasons:        []string{ReasonRegimeMomentum},
		}
		if highImpact == 1 {
			sel.SizeMultiplier = 0.5
			sel.Reasons = append(sel.Reasons, ReasonSingleHighImpact)
		}
		return sel
	case regime.Elevated:
		sel := Selection{
			Strategy:       MeanReversion,
			Symbols:        restrictUniverse(excludeBlackout(in.Symbols, in.Blackout)),
			SizeMultiplier: 0.5,
			Params:         ParamsFor(MeanReversion),
			Reasons:        []string{ReasonRegimeElevated},
		}
		if highImpact == 1 {
			sel.SizeMultiplier = 0.25
			sel.Reasons = append(sel.Reasons, ReasonSingleHighImpact)
		}
		return sel
	default:
		return cash([]string{ReasonRegimeError})
	}
}

func absoluteOverrides(in Input) []string {
	var reasons []string
	if in.Quarantine {
		reasons = append(reasons, ReasonQuarantine)
	}
	if in.WeeklyLocked {
		reasons = append(reasons, ReasonWeeklyGovernor)
	}
	if in.Pivots >= in.PivotLimit {
		reasons = append(reasons, ReasonPivotLimit)
	}
	return reasons
}

func cash(reasons []string) Selection {
	return Selection{
		Strategy:       CashPreservation,
		Symbols:        nil,
		SizeMultiplier: 0,
		Params:         ParamsFor(CashPreservation),
		Reasons:        reasons,
	}
}

// excludeBlackout removes symbols under an earnings blackout. Matching is
// case-insensitive, same as the duplicate-symbol check at validation.
func excludeBlackout(symbols, blackout []string) []string {
	if len(blackout) == 0 {
		return append([]string(nil), symbols...)
	}
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		blocked := false
		for _, b := range blackout {
			if strings.EqualFold(s, b) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, s)
		}
	}
	return out
}

func restrictUniverse(symbols []string) []string {
	if len(symbols) <= meanReversionUniverseCap {
		return append([]string(nil), symbols...)
	}
	return append([]string(nil), symbols[:meanReversionUniverseCap]...)
}
