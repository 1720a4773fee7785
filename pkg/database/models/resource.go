package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resource holds the columns shared by every entity mirrored from PokeAPI
type Resource struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ExternalID int            `gorm:"uniqueIndex;not null" json:"external_id"` // PokeAPI id
	Name       string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	LastSynced time.Time      `gorm:"index;not null" json:"last_synced"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// Entity is implemented by every synchronized kind
type Entity interface {
	GetResource() *Resource
}

// GetResource returns the shared columns
func (r *Resource) GetResource() *Resource {
	return r
}

// NextSyncTime returns the timestamp to store on a write. It never goes
// backwards relative to the previously stored value.
func (r *Resource) NextSyncTime(now time.Time) time.Time {
	if !now.After(r.LastSynced) {
		return r.LastSynced.Add(time.Microsecond)
	}
	return now
}
