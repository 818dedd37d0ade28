package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// Cycle states. Terminal states are never retried within the same cycle.
const (
	CycleStatusScheduled        = "SCHEDULED"
	CycleStatusRunning          = "RUNNING"
	CycleStatusCompleted        = "COMPLETED"
	CycleStatusCompletedPartial = "COMPLETED_PARTIAL"
	CycleStatusFailed           = "FAILED"
)

// Per-stock outcomes inside a cycle.
const (
	StockOutcomeSuccess = "SUCCESS"
	StockOutcomeFailed  = "FAILED"
)

// CycleReport is the single operational record of one orchestrator run.
type CycleReport struct {
	ID            uint           `gorm:"primarykey"`
	CycleID       string         `gorm:"not null;uniqueIndex"`
	Status        string         `gorm:"not null"`
	StartedAt     time.Time      `gorm:"not null"`
	CompletedAt   sql.NullTime   `gorm:"null"`
	TotalStocks   int            `gorm:"not null"`
	SuccessCount  int            `gorm:"not null"`
	FailedCount   int            `gorm:"not null"`
	SuccessRate   float64        `gorm:"not null"`
	StockOutcomes datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CycleReport) TableName() string {
	return "cycle_reports"
}

// StockOutcome is one entry of CycleReport.StockOutcomes.
type StockOutcome struct {
	Symbol string `json:"symbol"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
