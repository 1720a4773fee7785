package models

// Pokemon is a mirrored /pokemon resource
type Pokemon struct {
	Resource

	// Relationships
	Species         *Species         `gorm:"foreignKey:PokemonID" json:"-"`
	EvolutionChains []EvolutionChain `gorm:"many2many:evolution_chain_pokemons;constraint:OnDelete:CASCADE" json:"-"`
	Favorites       []Favorite       `gorm:"foreignKey:PokemonID" json:"-"`
}

// TableName returns the table name for Pokemon
func (Pokemon) TableName() string {
	return "pokemons"
}
