package model

import "time"

// MarketSnapshot is append-only: one row per stock per successful cycle.
type MarketSnapshot struct {
	ID          uint      `gorm:"primarykey"`
	StockSymbol string    `gorm:"not null;index"`
	CycleID     string    `gorm:"not null;index"`
	Price       float64   `gorm:"not null"`
	Volume      int64     `gorm:"not null"`
	Timestamp   time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MarketSnapshot) TableName() string {
	return "market_snapshots"
}
