package models

// EvolutionChain is a mirrored /evolution-chain resource. Links to species and
// pokemons accumulate and are never pruned by the sync layer.
type EvolutionChain struct {
	Resource

	// Relationships
	Species  []Species `gorm:"many2many:evolution_chain_species;constraint:OnDelete:CASCADE" json:"-"`
	Pokemons []Pokemon `gorm:"many2many:evolution_chain_pokemons;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for EvolutionChain
func (EvolutionChain) TableName() string {
	return "evolution_chains"
}
