package repository

import (
	"context"
	"errors"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

const (
	chainSpeciesTable  = "evolution_chain_species"
	chainPokemonsTable = "evolution_chain_pokemons"
)

// EvolutionChainRepository handles database operations for the EvolutionChain model
type EvolutionChainRepository struct {
	resourceStore[models.EvolutionChain, *models.EvolutionChain]
}

func NewEvolutionChainRepository(db *gorm.DB) *EvolutionChainRepository {
	return &EvolutionChainRepository{resourceStore[models.EvolutionChain, *models.EvolutionChain]{db: db}}
}

// CreateWithLinks inserts a chain and its initial species/pokemon links in one
// transaction. pokemon may be nil.
func (r *EvolutionChainRepository) CreateWithLinks(ctx context.Context, chain *models.EvolutionChain, species *models.Species, pokemon *models.Pokemon) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createResource(tx, chain); err != nil {
			return err
		}
		if err := linkSpecies(tx, chain, species); err != nil {
			return err
		}
		if pokemon != nil {
			if err := linkPokemon(tx, chain, pokemon); err != nil {
				return err
			}
		}
		return nil
	})
}

// LinkSpecies adds species to the chain's species set; a no-op when present
func (r *EvolutionChainRepository) LinkSpecies(ctx context.Context, chain *models.EvolutionChain, species *models.Species) error {
	return linkSpecies(r.db.WithContext(ctx), chain, species)
}

// LinkPokemon adds pokemon to the chain's pokemon set; a no-op when present
func (r *EvolutionChainRepository) LinkPokemon(ctx context.Context, chain *models.EvolutionChain, pokemon *models.Pokemon) error {
	return linkPokemon(r.db.WithContext(ctx), chain, pokemon)
}

// Species lists the species linked to a chain
func (r *EvolutionChainRepository) Species(ctx context.Context, chain *models.EvolutionChain) ([]models.Species, error) {
	var species []models.Species
	err := r.db.WithContext(ctx).
		Joins("JOIN evolution_chain_species ecs ON ecs.species_id = species.id").
		Where("ecs.evolution_chain_id = ?", chain.ID).
		Order("species.external_id").
		Find(&species).Error
	return species, err
}

// Pokemons lists the pokemons linked to a chain
func (r *EvolutionChainRepository) Pokemons(ctx context.Context, chain *models.EvolutionChain) ([]models.Pokemon, error) {
	var pokemons []models.Pokemon
	err := r.db.WithContext(ctx).
		Joins("JOIN evolution_chain_pokemons ecp ON ecp.pokemon_id = pokemons.id").
		Where("ecp.evolution_chain_id = ?", chain.ID).
		Order("pokemons.external_id").
		Find(&pokemons).Error
	return pokemons, err
}

// FindForPokemon returns the chain linked to a Pokemon, or nil. When several
// are linked the lowest external id wins.
func (r *EvolutionChainRepository) FindForPokemon(ctx context.Context, pokemonID uint) (*models.EvolutionChain, error) {
	var chain models.EvolutionChain
	err := r.db.WithContext(ctx).
		Joins("JOIN evolution_chain_pokemons ecp ON ecp.evolution_chain_id = evolution_chains.id").
		Where("ecp.pokemon_id = ?", pokemonID).
		Order("evolution_chains.external_id").
		Take(&chain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chain, nil
}

func linkSpecies(db *gorm.DB, chain *models.EvolutionChain, species *models.Species) error {
	return link(db, chainSpeciesTable, map[string]interface{}{
		"evolution_chain_id": chain.ID,
		"species_id":         species.ID,
	})
}

func linkPokemon(db *gorm.DB, chain *models.EvolutionChain, pokemon *models.Pokemon) error {
	return link(db, chainPokemonsTable, map[string]interface{}{
		"evolution_chain_id": chain.ID,
		"pokemon_id":         pokemon.ID,
	})
}
