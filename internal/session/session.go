package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"helmsman/internal/gameplan"
	"helmsman/internal/logger"
	"helmsman/internal/market"
	"helmsman/internal/notify"
	"helmsman/internal/regime"
	"helmsman/internal/risk"
	"helmsman/internal/signal"
	"helmsman/internal/store"
	"helmsman/internal/strategy"
)

// Config carries the evaluation-cycle settings.
type Config struct {
	Interval     time.Duration
	Staleness    time.Duration
	LookbackBars int
	BalanceUSD   float64
}

// DecisionSink persists per-cycle decisions. Kept as an interface so tests do
// not need a database.
type DecisionSink interface {
	RecordDecision(entry store.DecisionEntry) error
}

// PositionSource reports open positions from the execution side. Expiry
// enforcement is skipped when no source is wired.
type PositionSource interface {
	OpenPositions(ctx context.Context) ([]market.Position, error)
}

// Session runs the per-cycle decision pipeline: bars in, signal out, risk
// gate, decision log. It performs no order placement; execution is a
// downstream consumer of the decisions recorded here.
type Session struct {
	cfg       Config
	guard     *risk.Guard
	source    market.Source
	sink      DecisionSink
	notifier  notify.TextNotifier
	positions PositionSource

	mu        sync.RWMutex
	plan      gameplan.Result
	selection strategy.Selection
}

func New(cfg Config, plan gameplan.Result, guard *risk.Guard, source market.Source, sink DecisionSink, notifier notify.TextNotifier) *Session {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = 120
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	s := &Session{
		cfg:      cfg,
		guard:    guard,
		source:   source,
		sink:     sink,
		notifier: notifier,
		plan:     plan,
	}
	s.selection = s.reselect(plan)
	return s
}

// SetPositionSource wires the feed of open positions used for expiry
// enforcement.
func (s *Session) SetPositionSource(src PositionSource) {
	s.positions = src
}

// Selection returns the currently active strategy selection.
func (s *Session) Selection() strategy.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// OnPlanChange swaps in a freshly validated gameplan mid-session. A change of
// strategy kind counts as a pivot; once the pivot limit is reached all later
// selections collapse to cash preservation.
func (s *Session) OnPlanChange(res gameplan.Result) {
	s.mu.Lock()
	prevKind := s.selection.Strategy
	s.plan = res
	next := s.reselect(res)
	if next.Strategy != prevKind && prevKind != strategy.CashPreservation {
		pivots := s.guard.RecordPivot()
		logger.Infof("strategy pivot %s -> %s (count=%d)", prevKind, next.Strategy, pivots)
		next = s.reselect(res)
	}
	s.selection = next
	s.mu.Unlock()
	s.alert(fmt.Sprintf("strategy now %s (%v)", next.Strategy, next.Reasons))
}

func (s *Session) reselect(res gameplan.Result) strategy.Selection {
	plan := res.Plan
	vix := plan.VolatilityIndexValue
	if !plan.VolatilitySourceVerified {
		// Unverified volatility data is treated as absent, which maps to the
		// worst-case regime.
		vix = nil
	}
	return strategy.Select(strategy.Input{
		Regime:       regime.DetectValue(vix),
		Catalysts:    plan.Catalysts,
		Symbols:      plan.Symbols,
		Blackout:     plan.EarningsBlackout,
		Quarantine:   plan.DataQuality.QuarantineActive || res.Rejected,
		WeeklyLocked: plan.HardLimits.WeeklyDrawdownGovernorActive || s.guard.Snapshot().WeeklyGovernorLocked,
		Pivots:       s.guard.Snapshot().IntradayPivotCount,
		PivotLimit:   plan.HardLimits.MaxIntradayPivots,
	})
}

// Run drives the evaluation loop until the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Cycle(ctx, now)
		}
	}
}

// Cycle evaluates every symbol in the active universe once.
func (s *Session) Cycle(ctx context.Context, now time.Time) {
	s.guard.RolloverIfNeeded(now)
	// Closes are always allowed, so expiry enforcement runs even when the
	// session is in cash preservation.
	s.enforceExpiry(ctx)

	sel := s.Selection()
	if sel.Strategy == strategy.CashPreservation {
		logger.Debugf("cash preservation active, no evaluation (%v)", sel.Reasons)
		return
	}
	eng := signal.EngineFor(sel.Strategy, s.cfg.Staleness)
	for _, symbol := range sel.Symbols {
		s.evaluateSymbol(ctx, now, symbol, sel, eng)
	}
}

// enforceExpiry force-closes positions at or inside the days-to-expiry
// threshold, independent of P&L.
func (s *Session) enforceExpiry(ctx context.Context) {
	if s.positions == nil {
		return
	}
	open, err := s.positions.OpenPositions(ctx)
	if err != nil {
		logger.Warnf("open positions unavailable: %v", err)
		return
	}
	held := make([]risk.Position, 0, len(open))
	for _, p := range open {
		held = append(held, risk.Position{
			Symbol:       p.Symbol,
			DaysToExpiry: p.DaysToExpiry,
			NotionalUSD:  decimal.NewFromFloat(p.NotionalUSD),
		})
	}
	sel := s.Selection()
	for _, p := range s.guard.ExpiryForcedClosures(held) {
		verdict := s.guard.PreTradeCheck(
			risk.Proposed{Symbol: p.Symbol, Type: risk.Close, NotionalUSD: p.NotionalUSD},
			risk.TradeContext{},
		)
		s.record(store.DecisionEntry{
			Symbol:     p.Symbol,
			Strategy:   sel.Strategy.String(),
			Action:     "close",
			Allowed:    verdict.Allowed,
			DenyReason: verdict.Reason,
		})
		s.alert(fmt.Sprintf("expiry force-close %s (dte=%d)", p.Symbol, p.DaysToExpiry))
	}
}

func (s *Session) evaluateSymbol(ctx context.Context, now time.Time, symbol string, sel strategy.Selection, eng signal.Evaluator) {
	bars, err := s.source.Bars(ctx, symbol, s.cfg.LookbackBars)
	if err != nil {
		logger.Warnf("bars unavailable for %s: %v", symbol, err)
		return
	}
	sig := eng.Evaluate(bars, now)
	entry := store.DecisionEntry{
		Symbol:     symbol,
		Strategy:   sel.Strategy.String(),
		Action:     sig.Action.String(),
		Confidence: sig.Confidence,
		Snapshot:   sig.Snapshot,
	}
	if sig.Action == signal.Hold {
		s.record(entry)
		return
	}

	notional := decimal.NewFromFloat(s.cfg.BalanceUSD).
		Mul(decimal.NewFromFloat(sel.Params.MaxPositionPct)).
		Mul(decimal.NewFromFloat(sel.SizeMultiplier))
	verdict := s.guard.PreTradeCheck(
		risk.Proposed{Symbol: symbol, Type: risk.Entry, NotionalUSD: notional},
		risk.TradeContext{SizeMultiplier: sel.SizeMultiplier, MaxPositionPct: sel.Params.MaxPositionPct},
	)
	entry.Allowed = verdict.Allowed
	entry.DenyReason = verdict.Reason
	s.record(entry)

	if verdict.Allowed {
		s.alert(fmt.Sprintf("%s %s %s conf=%.2f notional=%s",
			sel.Strategy, sig.Action, symbol, sig.Confidence, notional.StringFixed(2)))
	} else {
		logger.Infof("entry denied %s: %s", symbol, verdict.Reason)
	}
}

func (s *Session) record(entry store.DecisionEntry) {
	if s.sink == nil {
		return
	}
	if err := s.sink.RecordDecision(entry); err != nil {
		logger.Errorf("decision log persist failed: %v", err)
	}
}

func (s *Session) alert(text string) {
	go func() {
		if err := s.notifier.SendText(text); err != nil {
			logger.Warnf("alert delivery failed: %v", err)
		}
	}()
}
