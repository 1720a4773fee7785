package repository

import (
	"context"
	"errors"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

// SpeciesRepository handles database operations for the Species model
type SpeciesRepository struct {
	resourceStore[models.Species, *models.Species]
}

func NewSpeciesRepository(db *gorm.DB) *SpeciesRepository {
	return &SpeciesRepository{resourceStore[models.Species, *models.Species]{db: db}}
}

// FindByPokemonID returns the species owned by a Pokemon, or nil
func (r *SpeciesRepository) FindByPokemonID(ctx context.Context, pokemonID uint) (*models.Species, error) {
	var species models.Species
	if err := r.db.WithContext(ctx).Where("pokemon_id = ?", pokemonID).Take(&species).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &species, nil
}

// SetPokemon re-points the species to another owning Pokemon
func (r *SpeciesRepository) SetPokemon(ctx context.Context, species *models.Species, pokemonID uint) error {
	if err := r.db.WithContext(ctx).Model(species).Update("pokemon_id", pokemonID).Error; err != nil {
		return err
	}
	species.PokemonID = pokemonID
	return nil
}

// EvolutionChains lists the chains a species is linked to
func (r *SpeciesRepository) EvolutionChains(ctx context.Context, species *models.Species) ([]models.EvolutionChain, error) {
	var chains []models.EvolutionChain
	err := r.db.WithContext(ctx).
		Joins("JOIN evolution_chain_species ecs ON ecs.evolution_chain_id = evolution_chains.id").
		Where("ecs.species_id = ?", species.ID).
		Order("evolution_chains.external_id").
		Find(&chains).Error
	return chains, err
}
