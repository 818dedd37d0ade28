package model

import (
	"time"

	"gorm.io/datatypes"
)

// SentimentObservation is append-only: one row per source per cycle attempt,
// including failed attempts.
type SentimentObservation struct {
	ID          uint      `gorm:"primarykey"`
	StockSymbol string    `gorm:"not null;index"`
	CycleID     string    `gorm:"not null;index"`
	Source      string    `gorm:"not null"`
	Score       float64   `gorm:"not null"`
	Timestamp   time.Time `gorm:"not null"`
	Status      string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SentimentObservation) TableName() string {
	return "sentiment_observations"
}

// AggregatedSentiment is derived per cycle and never mutated after creation;
// a newer cycle supersedes it. When Unavailable is set the Score carries no
// meaning and must not be read as neutral.
type AggregatedSentiment struct {
	ID               uint           `gorm:"primarykey"`
	StockSymbol      string         `gorm:"not null;index"`
	CycleID          string         `gorm:"not null;index"`
	Score            float64        `gorm:"not null"`
	Unavailable      bool           `gorm:"not null"`
	Stale            bool           `gorm:"not null"`
	SourceWeights    datatypes.JSON `gorm:"type:jsonb"`
	SourceTimestamps datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AggregatedSentiment) TableName() string {
	return "aggregated_sentiments"
}
