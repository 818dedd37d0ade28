package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserTracking is owned by the external tracking collaborator and consumed
// read-only by the tier filter.
type UserTracking struct {
	ID             uint           `gorm:"primarykey"`
	UserID         string         `gorm:"not null;uniqueIndex"`
	Tier           string         `gorm:"not null"`
	TrackedSymbols datatypes.JSON `gorm:"type:jsonb"`
	MaxTracked     int            `gorm:"not null"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserTracking) TableName() string {
	return "user_trackings"
}
