package model

import "time"

type RiskAssessment struct {
	ID          uint      `gorm:"primarykey"`
	StockSymbol string    `gorm:"not null;index"`
	CycleID     string    `gorm:"not null;index"`
	Tier        string    `gorm:"not null"`
	Volatility  float64   `gorm:"not null"`
	Confidence  float64   `gorm:"not null"`
	// Escalated records that a low-confidence prediction bumped the tier
	// above what volatility alone would give.
	Escalated bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RiskAssessment) TableName() string {
	return "risk_assessments"
}
