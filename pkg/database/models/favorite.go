package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a Pokemon as favorited by a User
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_favorites_user_pokemon,priority:1" json:"user_id"`
	PokemonID uint      `gorm:"not null;uniqueIndex:ux_favorites_user_pokemon,priority:2;index" json:"pokemon_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Pokemon *Pokemon `gorm:"foreignKey:PokemonID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
