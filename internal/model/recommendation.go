package model

import (
	"time"

	"gorm.io/datatypes"
)

// Recommendation is immutable once created: a historical record, never deleted.
type Recommendation struct {
	ID                   uint           `gorm:"primarykey"`
	StockSymbol          string         `gorm:"not null;index"`
	CycleID              string         `gorm:"not null;index"`
	Signal               string         `gorm:"not null"`
	Confidence           float64        `gorm:"not null"`
	Rank                 int            `gorm:"not null"`
	SentimentID          *uint          `gorm:"null"`
	SentimentUnavailable bool           `gorm:"not null"`
	RiskTier             string         `gorm:"not null"`
	HoldingPeriods       datatypes.JSON `gorm:"type:jsonb"`
	Explanation          string         `gorm:"not null"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"created_at"`

	Sentiment *AggregatedSentiment `gorm:"foreignKey:SentimentID"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}

type GetRecommendationsParam struct {
	StockSymbol   string
	CycleID       string
	HoldingPeriod string
}
