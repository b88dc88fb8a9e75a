package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"helmsman/internal/gameplan"
	"helmsman/internal/risk"
	"helmsman/internal/store/model"
)

// Store persists risk snapshots, gameplan audit records and decision logs in
// a single sqlite database.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	models := []interface{}{
		&model.RiskSnapshotModel{},
		&model.GameplanAuditModel{},
		&model.DecisionLogModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRiskSnapshot implements risk.SnapshotSink.
func (s *Store) SaveRiskSnapshot(st risk.State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	rec := model.RiskSnapshotModel{
		TradeDay: st.DayOpen.Format("2006-01-02"),
		State:    datatypes.JSON(payload),
	}
	return s.db.Create(&rec).Error
}

// LatestRiskSnapshot returns the most recent snapshot regardless of trading
// day, or ok=false when none exists. Which fields carry over into a new day
// or week is decided by risk.Guard.Restore, not by the query: a weekly
// governor locked on Monday must still be recoverable on Tuesday.
func (s *Store) LatestRiskSnapshot() (risk.State, bool, error) {
	var rec model.RiskSnapshotModel
	err := s.db.
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return risk.State{}, false, nil
	}
	if err != nil {
		return risk.State{}, false, err
	}
	var st risk.State
	if err := json.Unmarshal(rec.State, &st); err != nil {
		return risk.State{}, false, err
	}
	return st, true, nil
}

// RecordGameplanAudit implements gameplan.AuditSink.
func (s *Store) RecordGameplanAudit(rec gameplan.AuditRecord) error {
	overrides, err := json.Marshal(rec.Overrides)
	if err != nil {
		return err
	}
	row := model.GameplanAuditModel{
		AuditID:   rec.ID,
		Outcome:   rec.Outcome,
		Reason:    rec.Reason,
		Overrides: datatypes.JSON(overrides),
		Strategy:  rec.Strategy,
		Symbols:   rec.Symbols,
	}
	return s.db.Create(&row).Error
}

// DecisionEntry is one evaluation-cycle decision.
type DecisionEntry struct {
	Symbol     string
	Strategy   string
	Action     string
	Confidence float64
	Allowed    bool
	DenyReason string
	Snapshot   any
}

func (s *Store) RecordDecision(entry DecisionEntry) error {
	snapshot, err := json.Marshal(entry.Snapshot)
	if err != nil {
		snapshot = []byte("null")
	}
	row := model.DecisionLogModel{
		Symbol:     entry.Symbol,
		Strategy:   entry.Strategy,
		Action:     entry.Action,
		Confidence: entry.Confidence,
		Allowed:    entry.Allowed,
		DenyReason: entry.DenyReason,
		Snapshot:   datatypes.JSON(snapshot),
	}
	return s.db.Create(&row).Error
}

// RecentDecisions returns the latest n decision rows, newest first.
func (s *Store) RecentDecisions(n int) ([]model.DecisionLogModel, error) {
	if n <= 0 {
		n = 50
	}
	var rows []model.DecisionLogModel
	err := s.db.Order("id DESC").Limit(n).Find(&rows).Error
	return rows, err
}
