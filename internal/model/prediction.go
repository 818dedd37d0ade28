package model

import "time"

type PredictionResult struct {
	ID           uint      `gorm:"primarykey"`
	StockSymbol  string    `gorm:"not null;index"`
	CycleID      string    `gorm:"not null;index"`
	Signal       string    `gorm:"not null"`
	Confidence   float64   `gorm:"not null"`
	ModelVersion string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PredictionResult) TableName() string {
	return "prediction_results"
}
