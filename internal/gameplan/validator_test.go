package gameplan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPlan = `{
	"date": "2026-03-02",
	"regime": "normal",
	"strategy": "A",
	"symbols": ["SPY", "QQQ"],
	"position_size_multiplier": 1.0,
	"volatility_index_value": 16.2,
	"volatility_source_verified": true,
	"catalysts": [],
	"data_quality": {"quarantine_active": false},
	"hard_limits": {
		"max_daily_loss_pct": 0.02,
		"max_single_position": 5000,
		"day_trades_remaining": 3,
		"force_close_at_days_to_expiry": 1,
		"weekly_drawdown_governor_active": false,
		"max_intraday_pivots": 2
	}
}`

type captureSink struct {
	records []AuditRecord
}

func (c *captureSink) RecordGameplanAudit(rec AuditRecord) error {
	c.records = append(c.records, rec)
	return nil
}

func TestValidateAccepts(t *testing.T) {
	v := NewValidator(nil)
	res := v.Validate([]byte(validPlan))
	require.False(t, res.Rejected)
	assert.Equal(t, "A", res.Plan.Strategy)
	assert.Equal(t, []string{"SPY", "QQQ"}, res.Plan.Symbols)
	assert.Empty(t, res.Overrides)
	assert.NotEmpty(t, res.AuditID)
	require.NotNil(t, res.Plan.VolatilityIndexValue)
	assert.InDelta(t, 16.2, *res.Plan.VolatilityIndexValue, 1e-9)
}

func TestValidateAcceptsYAML(t *testing.T) {
	doc := `
strategy: B
regime: elevated
symbols: [SPY]
position_size_multiplier: 0.5
data_quality:
  quarantine_active: false
hard_limits:
  max_daily_loss_pct: 0.01
  max_single_position: 2500
  day_trades_remaining: 2
`
	res := NewValidator(nil).Validate([]byte(doc))
	require.False(t, res.Rejected)
	assert.Equal(t, "B", res.Plan.Strategy)
}

func TestValidateRejections(t *testing.T) {
	mutate := func(field, repl string) string {
		return `{
			"regime": "normal", ` + field + `
			"symbols": ` + repl + `,
			"data_quality": {"quarantine_active": false},
			"hard_limits": {"max_daily_loss_pct": 0.02, "max_single_position": 5000, "day_trades_remaining": 3}
		}`
	}
	cases := []struct {
		name   string
		raw    []byte
		reason string
	}{
		{"absent", nil, ReasonAbsent},
		{"empty", []byte("   "), ReasonAbsent},
		{"unparsable", []byte("{not json"), ReasonUnparsable},
		{"scalar document", []byte(`"just a string"`), ReasonUnparsable},
		{"missing strategy", []byte(mutate(``, `["SPY"]`)), ReasonSchemaViolation},
		{"unknown strategy", []byte(mutate(`"strategy": "D",`, `["SPY"]`)), ReasonSchemaViolation},
		{"empty symbols for momentum", []byte(mutate(`"strategy": "A",`, `[]`)), ReasonEmptyMomentumPlan},
		{"duplicate symbols", []byte(mutate(`"strategy": "A",`, `["SPY", "spy"]`)), ReasonDuplicateSymbols},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := NewValidator(nil).Validate(tc.raw)
			require.True(t, res.Rejected)
			assert.Equal(t, tc.reason, res.RejectionReason)
			assertSafeDefault(t, res.Plan)
		})
	}
}

func TestValidateRejectsLimitViolations(t *testing.T) {
	cases := []struct {
		name   string
		limits string
	}{
		{"daily loss above bound", `{"max_daily_loss_pct": 1.5, "max_single_position": 5000, "day_trades_remaining": 3}`},
		{"negative day trades", `{"max_daily_loss_pct": 0.02, "max_single_position": 5000, "day_trades_remaining": -1}`},
		{"negative position", `{"max_daily_loss_pct": 0.02, "max_single_position": -100, "day_trades_remaining": 3}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := fmt.Sprintf(`{
				"strategy": "A", "regime": "normal", "symbols": ["SPY"],
				"data_quality": {"quarantine_active": false},
				"hard_limits": %s
			}`, tc.limits)
			res := NewValidator(nil).Validate([]byte(raw))
			require.True(t, res.Rejected)
			assert.Equal(t, ReasonSchemaViolation, res.RejectionReason)
			assertSafeDefault(t, res.Plan)
		})
	}
}

func TestQuarantineOverridesDeclaredStrategy(t *testing.T) {
	raw := `{
		"strategy": "A", "regime": "normal", "symbols": ["SPY", "QQQ"],
		"position_size_multiplier": 1.0,
		"data_quality": {"quarantine_active": true},
		"hard_limits": {"max_daily_loss_pct": 0.02, "max_single_position": 5000, "day_trades_remaining": 3}
	}`
	res := NewValidator(nil).Validate([]byte(raw))
	require.False(t, res.Rejected)
	assert.Equal(t, DeclaredCash, res.Plan.Strategy)
	assert.Zero(t, res.Plan.PositionSizeMultiplier)
	assert.Contains(t, res.Overrides, OverrideQuarantine)
	// Validated fields survive for audit.
	assert.Equal(t, []string{"SPY", "QQQ"}, res.Plan.Symbols)
	assert.InDelta(t, 0.02, res.Plan.HardLimits.MaxDailyLossPct, 1e-9)
	assert.True(t, res.ForcedCash())
}

func TestWeeklyGovernorOverride(t *testing.T) {
	raw := `{
		"strategy": "B", "regime": "elevated", "symbols": ["SPY"],
		"position_size_multiplier": 0.5,
		"data_quality": {"quarantine_active": false},
		"hard_limits": {"max_daily_loss_pct": 0.02, "max_single_position": 5000, "day_trades_remaining": 3, "weekly_drawdown_governor_active": true}
	}`
	res := NewValidator(nil).Validate([]byte(raw))
	require.False(t, res.Rejected)
	assert.Equal(t, DeclaredCash, res.Plan.Strategy)
	assert.Contains(t, res.Overrides, OverrideWeeklyGovernor)
}

func TestAuditRecordPerCall(t *testing.T) {
	sink := &captureSink{}
	v := NewValidator(sink)
	v.Validate([]byte(validPlan))
	v.Validate(nil)
	require.Len(t, sink.records, 2)
	assert.Equal(t, "applied", sink.records[0].Outcome)
	assert.Equal(t, "rejected", sink.records[1].Outcome)
	assert.Equal(t, ReasonAbsent, sink.records[1].Reason)
	assert.NotEqual(t, sink.records[0].ID, sink.records[1].ID)
}

func assertSafeDefault(t *testing.T, plan Gameplan) {
	t.Helper()
	assert.Equal(t, DeclaredCash, plan.Strategy)
	assert.Empty(t, plan.Symbols)
	assert.Zero(t, plan.PositionSizeMultiplier)
	assert.True(t, plan.DataQuality.QuarantineActive)
	assert.Zero(t, plan.HardLimits.MaxDailyLossPct)
	assert.Zero(t, plan.HardLimits.MaxSinglePosition)
	assert.Zero(t, plan.HardLimits.DayTradesRemaining)
}

func TestCatalystHelpers(t *testing.T) {
	catalysts := []Catalyst{
		{Type: CatalystEarnings, Impact: "low"},
		{Type: "fomc", Impact: ImpactHigh},
		{Type: "cpi", Impact: ImpactHigh},
	}
	assert.True(t, HasEarnings(catalysts))
	assert.Equal(t, 2, CountHighImpact(catalysts))
	assert.False(t, HasEarnings(nil))
	assert.Zero(t, CountHighImpact(nil))
}
