package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyncLog represents a persisted log entry from the catalog services
type SyncLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Component  string         `gorm:"index;size:50;not null;default:'sync'" json:"component"` // "sync", "api", "favorites", etc.
	Level      string         `gorm:"index;size:10;not null" json:"level"`                    // INFO, ERROR, WARN, DEBUG
	Message    string         `gorm:"type:text;not null" json:"message"`
	Error      string         `gorm:"type:text" json:"error"`
	Fields     datatypes.JSON `json:"fields"`
	Kind       string         `gorm:"index;size:30" json:"kind"`
	Identifier string         `gorm:"index;size:100" json:"identifier"`
	UserID     string         `gorm:"index;size:50" json:"user_id"`
	Timestamp  time.Time      `gorm:"index;not null" json:"timestamp"`
}

// TableName returns the table name for SyncLog
func (SyncLog) TableName() string {
	return "sync_logs"
}
