package gameplan

import (
	"encoding/json"
	"strings"
	"time"

	"helmsman/internal/logger"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Rejection reason codes. These are the only durable trace of why a given day
// traded or didn't, so they stay machine-readable and stable.
const (
	ReasonAbsent             = "absent"
	ReasonUnparsable         = "unparsable"
	ReasonSchemaViolation    = "schema_violation"
	ReasonDuplicateSymbols   = "duplicate_symbols"
	ReasonEmptyMomentumPlan  = "empty_symbols_for_momentum"
	OverrideQuarantine       = "quarantine_active"
	OverrideWeeklyGovernor   = "weekly_governor_locked"
)

const planSchema = `{
	"type": "object",
	"required": ["strategy", "regime", "symbols", "hard_limits", "data_quality"],
	"properties": {
		"date": {"type": "string"},
		"regime": {"type": "string"},
		"strategy": {"type": "string", "enum": ["A", "B", "C"]},
		"symbols": {"type": "array", "items": {"type": "string", "minLength": 1}},
		"position_size_multiplier": {"type": "number", "minimum": 0, "maximum": 1},
		"volatility_index_value": {"type": ["number", "null"]},
		"volatility_source_verified": {"type": "boolean"},
		"catalysts": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "impact"],
				"properties": {
					"type": {"type": "string"},
					"impact": {"type": "string"}
				}
			}
		},
		"earnings_blackout": {"type": "array", "items": {"type": "string"}},
		"data_quality": {
			"type": "object",
			"required": ["quarantine_active"],
			"properties": {
				"quarantine_active": {"type": "boolean"},
				"stale_fields": {"type": "array", "items": {"type": "string"}}
			}
		},
		"hard_limits": {
			"type": "object",
			"required": ["max_daily_loss_pct", "max_single_position", "day_trades_remaining"],
			"properties": {
				"max_daily_loss_pct": {"type": "number", "minimum": 0, "maximum": 1.0},
				"max_single_position": {"type": "number", "minimum": 0},
				"day_trades_remaining": {"type": "integer", "minimum": 0},
				"force_close_at_days_to_expiry": {"type": "integer", "minimum": 0},
				"weekly_drawdown_governor_active": {"type": "boolean"},
				"max_intraday_pivots": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

// Result is the outcome of a validation pass. Exactly one of two shapes comes
// back: the validated plan, or the safe default with a rejection reason.
type Result struct {
	Plan            Gameplan
	Rejected        bool
	RejectionReason string
	Overrides       []string
	AuditID         string
}

// ForcedCash reports whether the effective strategy was forced to cash either
// by rejection or by an absolute override.
func (r Result) ForcedCash() bool {
	return r.Rejected || len(r.Overrides) > 0
}

// AuditRecord is the structured trace emitted once per validation call.
type AuditRecord struct {
	ID        string
	At        time.Time
	Outcome   string
	Reason    string
	Overrides []string
	Strategy  string
	Symbols   int
}

// AuditSink receives one record per validation call. Failures to persist must
// never affect the validation outcome.
type AuditSink interface {
	RecordGameplanAudit(rec AuditRecord) error
}

type Validator struct {
	schema *jsonschema.Schema
	sink   AuditSink
}

// NewValidator compiles the gameplan schema once. The sink may be nil.
func NewValidator(sink AuditSink) *Validator {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("gameplan.json", strings.NewReader(planSchema)); err != nil {
		panic(err)
	}
	return &Validator{schema: compiler.MustCompile("gameplan.json"), sink: sink}
}

// Validate never returns an error: any rejection yields the safe default
// tagged with a machine-readable reason.
func (v *Validator) Validate(raw []byte) Result {
	res := v.validate(raw)
	res.AuditID = uuid.NewString()
	v.audit(res)
	return res
}

func (v *Validator) validate(raw []byte) Result {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return rejected(ReasonAbsent)
	}
	doc, ok := decodeDocument(raw)
	if !ok {
		return rejected(ReasonUnparsable)
	}
	if err := v.schema.Validate(doc); err != nil {
		logger.Debugf("gameplan schema violation: %v", err)
		return rejected(ReasonSchemaViolation)
	}
	var plan Gameplan
	normalized, err := json.Marshal(doc)
	if err != nil {
		return rejected(ReasonUnparsable)
	}
	if err := json.Unmarshal(normalized, &plan); err != nil {
		return rejected(ReasonUnparsable)
	}
	if hasDuplicates(plan.Symbols) {
		return rejected(ReasonDuplicateSymbols)
	}
	if plan.Strategy == DeclaredMomentum && len(plan.Symbols) == 0 {
		return rejected(ReasonEmptyMomentumPlan)
	}

	// Absolute overrides, applied after structural validation. The validated
	// fields survive for audit; only sizing is zeroed.
	var overrides []string
	if plan.DataQuality.QuarantineActive {
		overrides = append(overrides, OverrideQuarantine)
	}
	if plan.HardLimits.WeeklyDrawdownGovernorActive {
		overrides = append(overrides, OverrideWeeklyGovernor)
	}
	if len(overrides) > 0 {
		plan.Strategy = DeclaredCash
		plan.PositionSizeMultiplier = 0
	}
	return Result{Plan: plan, Overrides: overrides}
}

func (v *Validator) audit(res Result) {
	outcome := "applied"
	if res.Rejected {
		outcome = "rejected"
	} else if len(res.Overrides) > 0 {
		outcome = "overridden"
	}
	logger.Infof("gameplan %s reason=%s overrides=%v strategy=%s symbols=%d",
		outcome, res.RejectionReason, res.Overrides, res.Plan.Strategy, len(res.Plan.Symbols))
	if v.sink == nil {
		return
	}
	rec := AuditRecord{
		ID:        res.AuditID,
		At:        time.Now(),
		Outcome:   outcome,
		Reason:    res.RejectionReason,
		Overrides: res.Overrides,
		Strategy:  res.Plan.Strategy,
		Symbols:   len(res.Plan.Symbols),
	}
	if err := v.sink.RecordGameplanAudit(rec); err != nil {
		logger.Errorf("gameplan audit persist failed: %v", err)
	}
}

func rejected(reason string) Result {
	return Result{Plan: SafeDefault(), Rejected: true, RejectionReason: reason}
}

// decodeDocument accepts JSON or YAML and normalizes to the shape the schema
// validator expects (the same representation encoding/json produces).
func decodeDocument(raw []byte) (any, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if gjson.Valid(trimmed) && strings.HasPrefix(trimmed, "{") {
		var doc any
		if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
			return nil, false
		}
		return doc, true
	}
	var node any
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, false
	}
	if _, ok := node.(map[string]any); !ok {
		return nil, false
	}
	normalized, err := json.Marshal(node)
	if err != nil {
		return nil, false
	}
	var doc any
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return nil, false
	}
	return doc, true
}

func hasDuplicates(symbols []string) bool {
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		key := strings.ToUpper(strings.TrimSpace(s))
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}
