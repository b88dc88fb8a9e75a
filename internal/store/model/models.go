package model

import (
	"time"

	"gorm.io/datatypes"
)

// RiskSnapshotModel persists the risk guard state after each mutation so a
// restarted session can resume mid-day counters.
type RiskSnapshotModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	TradeDay  string         `gorm:"size:16;index"`
	State     datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (RiskSnapshotModel) TableName() string { return "risk_snapshots" }

// GameplanAuditModel records one row per validation call. It is the only
// durable trace of why a given day traded or didn't.
type GameplanAuditModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	AuditID   string         `gorm:"size:64;uniqueIndex"`
	Outcome   string         `gorm:"size:16;index"`
	Reason    string         `gorm:"size:64"`
	Overrides datatypes.JSON `gorm:"type:json"`
	Strategy  string         `gorm:"size:8"`
	Symbols   int
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

func (GameplanAuditModel) TableName() string { return "gameplan_audits" }

// DecisionLogModel captures each evaluation-cycle decision for operators.
type DecisionLogModel struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	Symbol     string         `gorm:"size:32;index"`
	Strategy   string         `gorm:"size:32"`
	Action     string         `gorm:"size:8"`
	Confidence float64
	Allowed    bool
	DenyReason string         `gorm:"size:64"`
	Snapshot   datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (DecisionLogModel) TableName() string { return "decision_logs" }
