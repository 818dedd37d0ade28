package model

import "time"

// Stock is immutable reference data owned by the external catalog collaborator.
type Stock struct {
	ID           uint      `gorm:"primarykey"`
	Symbol       string    `gorm:"not null;uniqueIndex"`
	Name         string    `gorm:"not null"`
	Sector       string    `gorm:"not null"`
	UniverseRank int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Stock) TableName() string {
	return "stocks"
}
