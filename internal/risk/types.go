package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// State tracks the session-scoped safety counters. It is owned exclusively by
// the Guard; counters never decrement within a day except at the rollover
// boundaries.
type State struct {
	DayOpen    time.Time `json:"day_open"`
	WeekAnchor time.Time `json:"week_anchor"`

	DayTradesUsed       int             `json:"day_trades_used"`
	DayTradeLimit       int             `json:"day_trade_limit"`
	CumulativeDailyLoss decimal.Decimal `json:"cumulative_daily_loss"`
	MaxDailyLoss        decimal.Decimal `json:"max_daily_loss"`

	CumulativeWeeklyLossPct float64 `json:"cumulative_weekly_loss_pct"`
	MaxWeeklyLossPct        float64 `json:"max_weekly_loss_pct"`

	IntradayPivotCount   int  `json:"intraday_pivot_count"`
	PivotLimit           int  `json:"pivot_limit"`
	WeeklyGovernorLocked bool `json:"weekly_governor_locked"`
	CircuitBreakerOpen   bool `json:"circuit_breaker_open"`

	MaxSinglePosition        decimal.Decimal `json:"max_single_position"`
	ForceCloseAtDaysToExpiry int             `json:"force_close_at_days_to_expiry"`
}

// ActionType distinguishes entries, which consume budget, from closing
// actions, which are never blocked.
type ActionType int

const (
	Entry ActionType = iota
	Close
)

func (a ActionType) String() string {
	if a == Close {
		return "close"
	}
	return "entry"
}

// Proposed is a trade action submitted for the pre-trade check.
type Proposed struct {
	Symbol      string
	Type        ActionType
	NotionalUSD decimal.Decimal
}

// TradeContext carries the strategy-cycle sizing inputs the check needs.
type TradeContext struct {
	SizeMultiplier float64
	MaxPositionPct float64
}

// Verdict is the outcome of a pre-trade check. A denial is not an error; it
// blocks one action without affecting any other state.
type Verdict struct {
	Allowed bool
	Reason  string
}

// Denial reason codes, in check order.
const (
	DenyDayTradeBudget = "day_trade_budget_exhausted"
	DenyPositionSize   = "position_size_exceeded"
	DenyCircuitBreaker = "circuit_breaker_open"
	DenyWeeklyGovernor = "weekly_governor_locked"
)

func allow() Verdict {
	return Verdict{Allowed: true}
}

func deny(reason string) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}

// OutcomeKind classifies confirmed trade results fed back into the state.
type OutcomeKind int

const (
	OutcomeEntryFill OutcomeKind = iota
	OutcomeClosure
)

// Outcome is a confirmed fill or closure. PnL is realized only on closures;
// a negative value is a loss.
type Outcome struct {
	Symbol string
	Kind   OutcomeKind
	PnLUSD decimal.Decimal
}

// Position is the minimal open-position view needed for expiry enforcement.
type Position struct {
	Symbol       string
	DaysToExpiry int
	NotionalUSD  decimal.Decimal
}
