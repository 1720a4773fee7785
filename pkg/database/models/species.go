package models

// Species is a mirrored /pokemon-species resource owned by exactly one Pokemon
type Species struct {
	Resource
	PokemonID uint `gorm:"uniqueIndex;not null" json:"pokemon_id"`

	// Relationships
	Pokemon         *Pokemon         `gorm:"foreignKey:PokemonID;constraint:OnDelete:CASCADE" json:"-"`
	EvolutionChains []EvolutionChain `gorm:"many2many:evolution_chain_species;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Species
func (Species) TableName() string {
	return "species"
}
