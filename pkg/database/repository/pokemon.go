package repository

import (
	"context"
	"strings"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

// PokemonRepository handles database operations for the Pokemon model
type PokemonRepository struct {
	resourceStore[models.Pokemon, *models.Pokemon]
}

func NewPokemonRepository(db *gorm.DB) *PokemonRepository {
	return &PokemonRepository{resourceStore[models.Pokemon, *models.Pokemon]{db: db}}
}

// FindByNames loads every stored Pokemon whose name matches one of names,
// keyed by lower-cased name
func (r *PokemonRepository) FindByNames(ctx context.Context, names []string) (map[string]*models.Pokemon, error) {
	result := make(map[string]*models.Pokemon, len(names))
	if len(names) == 0 {
		return result, nil
	}

	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}

	var pokemons []models.Pokemon
	if err := r.db.WithContext(ctx).Where("LOWER(name) IN ?", lowered).Find(&pokemons).Error; err != nil {
		return nil, err
	}

	for i := range pokemons {
		result[strings.ToLower(pokemons[i].Name)] = &pokemons[i]
	}
	return result, nil
}

// FindBySpeciesNames resolves species names to the Pokemon owning that species,
// keyed by lower-cased species name
func (r *PokemonRepository) FindBySpeciesNames(ctx context.Context, names []string) (map[string]*models.Pokemon, error) {
	result := make(map[string]*models.Pokemon, len(names))
	if len(names) == 0 {
		return result, nil
	}

	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(n))
	}

	var species []models.Species
	if err := r.db.WithContext(ctx).Where("LOWER(name) IN ?", lowered).Find(&species).Error; err != nil {
		return nil, err
	}
	if len(species) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(species))
	for _, s := range species {
		ids = append(ids, s.PokemonID)
	}

	var pokemons []models.Pokemon
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&pokemons).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Pokemon, len(pokemons))
	for i := range pokemons {
		byID[pokemons[i].ID] = &pokemons[i]
	}
	for _, s := range species {
		if p, ok := byID[s.PokemonID]; ok {
			result[strings.ToLower(s.Name)] = p
		}
	}
	return result, nil
}
