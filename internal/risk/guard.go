package risk

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"helmsman/internal/gameplan"
	"helmsman/internal/logger"
)

// SnapshotSink persists the risk state after each mutation so it survives
// process restarts. Persistence failures are logged, never fatal.
type SnapshotSink interface {
	SaveRiskSnapshot(st State) error
}

// BreakerHandler receives the forced-closure directive when the daily circuit
// breaker opens. It is invoked at most once per session.
type BreakerHandler func(reason string)

// Guard owns the mutable risk state. All mutation is serialized through its
// mutex; reads observe a consistent snapshot.
type Guard struct {
	mu         sync.Mutex
	st         State
	balanceUSD decimal.Decimal
	sink       SnapshotSink
	onBreaker  BreakerHandler
}

// NewGuard seeds the state from gameplan hard limits at session start.
func NewGuard(limits gameplan.HardLimits, balanceUSD, maxWeeklyLossPct float64, now time.Time) *Guard {
	balance := decimal.NewFromFloat(balanceUSD)
	st := State{
		DayOpen:                  dayOpen(now),
		WeekAnchor:               weekAnchor(now),
		DayTradeLimit:            limits.DayTradesRemaining,
		CumulativeDailyLoss:      decimal.Zero,
		MaxDailyLoss:             balance.Mul(decimal.NewFromFloat(limits.MaxDailyLossPct)),
		MaxWeeklyLossPct:         maxWeeklyLossPct,
		PivotLimit:               limits.MaxIntradayPivots,
		WeeklyGovernorLocked:     limits.WeeklyDrawdownGovernorActive,
		MaxSinglePosition:        decimal.NewFromFloat(limits.MaxSinglePosition),
		ForceCloseAtDaysToExpiry: limits.ForceCloseAtDaysToExpiry,
	}
	if st.PivotLimit <= 0 || st.PivotLimit > 2 {
		st.PivotLimit = 2
	}
	return &Guard{st: st, balanceUSD: balance}
}

func (g *Guard) SetSnapshotSink(sink SnapshotSink) {
	g.mu.Lock()
	g.sink = sink
	g.mu.Unlock()
}

func (g *Guard) SetBreakerHandler(fn BreakerHandler) {
	g.mu.Lock()
	g.onBreaker = fn
	g.mu.Unlock()
}

// Restore replaces the live counters with a persisted snapshot from the same
// trading day. Limits from the current gameplan are kept; only the mutable
// counters carry over.
func (g *Guard) Restore(prev State, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !sameDay(prev.DayOpen, now) {
		logger.Infof("risk snapshot from previous day ignored")
		if sameWeek(prev.WeekAnchor, now) {
			g.st.WeeklyGovernorLocked = g.st.WeeklyGovernorLocked || prev.WeeklyGovernorLocked
			g.st.CumulativeWeeklyLossPct = prev.CumulativeWeeklyLossPct
		}
		return
	}
	g.st.DayTradesUsed = prev.DayTradesUsed
	g.st.CumulativeDailyLoss = prev.CumulativeDailyLoss
	g.st.IntradayPivotCount = prev.IntradayPivotCount
	g.st.CircuitBreakerOpen = prev.CircuitBreakerOpen
	g.st.CumulativeWeeklyLossPct = prev.CumulativeWeeklyLossPct
	g.st.WeeklyGovernorLocked = g.st.WeeklyGovernorLocked || prev.WeeklyGovernorLocked
	logger.Infof("risk state restored: day_trades=%d daily_loss=%s breaker=%v",
		g.st.DayTradesUsed, g.st.CumulativeDailyLoss, g.st.CircuitBreakerOpen)
}

// Snapshot returns a copy of the current state.
func (g *Guard) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st
}

// PreTradeCheck arbitrates a proposed action. Checks run in strict order and
// the first failure is terminal for the cycle. Closing actions are always
// allowed: blocking an exit is strictly more dangerous than allowing it.
func (g *Guard) PreTradeCheck(p Proposed, ctx TradeContext) Verdict {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p.Type == Close {
		return allow()
	}
	if g.st.DayTradesUsed >= g.st.DayTradeLimit {
		return deny(DenyDayTradeBudget)
	}
	if p.NotionalUSD.GreaterThan(g.st.MaxSinglePosition) {
		return deny(DenyPositionSize)
	}
	cap := g.balanceUSD.
		Mul(decimal.NewFromFloat(ctx.MaxPositionPct)).
		Mul(decimal.NewFromFloat(ctx.SizeMultiplier))
	if p.NotionalUSD.GreaterThan(cap) {
		return deny(DenyPositionSize)
	}
	if g.st.CircuitBreakerOpen {
		return deny(DenyCircuitBreaker)
	}
	if g.st.WeeklyGovernorLocked {
		return deny(DenyWeeklyGovernor)
	}
	return allow()
}

// RecordOutcome mutates the state in response to a confirmed trade result and
// re-evaluates the loss breakers.
func (g *Guard) RecordOutcome(o Outcome) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch o.Kind {
	case OutcomeEntryFill:
		g.st.DayTradesUsed++
	case OutcomeClosure:
		if o.PnLUSD.IsNegative() {
			loss := o.PnLUSD.Neg()
			g.st.CumulativeDailyLoss = g.st.CumulativeDailyLoss.Add(loss)
			if g.balanceUSD.IsPositive() {
				pct, _ := loss.Div(g.balanceUSD).Float64()
				g.st.CumulativeWeeklyLossPct += pct
			}
		}
	}
	g.evaluateBreakersLocked()
	g.persistLocked()
	return g.st
}

// RecordPivot counts a mid-session strategy change; the counter caps at the
// pivot limit.
func (g *Guard) RecordPivot() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st.IntradayPivotCount < g.st.PivotLimit {
		g.st.IntradayPivotCount++
		g.persistLocked()
	}
	return g.st.IntradayPivotCount
}

// PivotLimitReached reports whether further pivots must force cash.
func (g *Guard) PivotLimitReached() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.IntradayPivotCount >= g.st.PivotLimit
}

// ExpiryForcedClosures returns the open positions whose days-to-expiry has
// reached the configured threshold. These are closed unconditionally,
// independent of P&L.
func (g *Guard) ExpiryForcedClosures(open []Position) []Position {
	g.mu.Lock()
	threshold := g.st.ForceCloseAtDaysToExpiry
	g.mu.Unlock()
	if threshold <= 0 {
		return nil
	}
	var out []Position
	for _, p := range open {
		if p.DaysToExpiry <= threshold {
			out = append(out, p)
		}
	}
	return out
}

// Comparisons are exclusive at the boundary: the limit itself does not trip a
// breaker, one cent (or one basis point) over does. A zero limit therefore
// trips on the first cent of realized loss; the safe-default plan carries
// zero limits and must stay that strict.
func (g *Guard) evaluateBreakersLocked() {
	if !g.st.CircuitBreakerOpen &&
		g.st.CumulativeDailyLoss.GreaterThan(g.st.MaxDailyLoss) {
		g.st.CircuitBreakerOpen = true
		logger.Warnf("daily loss circuit breaker open: loss=%s limit=%s",
			g.st.CumulativeDailyLoss, g.st.MaxDailyLoss)
		if g.onBreaker != nil {
			// One-shot by construction: guarded by the flag above.
			go g.onBreaker("daily_loss_limit_exceeded")
		}
	}
	if !g.st.WeeklyGovernorLocked &&
		g.st.CumulativeWeeklyLossPct > g.st.MaxWeeklyLossPct {
		g.st.WeeklyGovernorLocked = true
		logger.Warnf("weekly drawdown governor locked: loss=%.4f limit=%.4f",
			g.st.CumulativeWeeklyLossPct, g.st.MaxWeeklyLossPct)
	}
}

func (g *Guard) persistLocked() {
	if g.sink == nil {
		return
	}
	if err := g.sink.SaveRiskSnapshot(g.st); err != nil {
		logger.Errorf("risk snapshot persist failed: %v", err)
	}
}
