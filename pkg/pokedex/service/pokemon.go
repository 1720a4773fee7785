package service

import (
	"context"
	"fmt"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"gorm.io/datatypes"
)

func (ss *SyncService) pokemonPipeline() kindPipeline[models.Pokemon, *models.Pokemon] {
	repo := ss.service.PokemonRepo
	return kindPipeline[models.Pokemon, *models.Pokemon]{
		kind:        pokedex.KindPokemon,
		store:       repo,
		fetch:       ss.service.Upstream.GetPokemon,
		defaultName: unknownName,
		create: func(ctx context.Context, p *models.Pokemon, _ pokedex.ResolveOptions) error {
			return repo.Create(ctx, p)
		},
		update: func(ctx context.Context, p *models.Pokemon, data datatypes.JSON, now time.Time, _ pokedex.ResolveOptions) error {
			return repo.UpdatePayload(ctx, p, data, now)
		},
	}
}

// ResolvePokemon resolves a Pokemon and always cascades to its Species,
// looked up with the same identifier
func (ss *SyncService) ResolvePokemon(ctx context.Context, identifier string, opts ...pokedex.ResolveOption) (*models.Pokemon, error) {
	o := pokedex.ApplyOptions(opts...)

	pokemon, err := run(ctx, ss, ss.pokemonPipeline(), identifier, o)
	if err != nil {
		return nil, err
	}

	ss.loggers[pokedex.KindPokemon].Debug("Cascading to species", map[string]interface{}{
		"stage":      StageCascade,
		"identifier": identifier,
		"pokemon_id": pokemon.ID,
	})

	species, err := ss.ResolveSpecies(ctx, identifier, pokedex.WithPokemon(pokemon))
	if err != nil {
		return nil, err
	}
	pokemon.Species = species

	return pokemon, nil
}

func unknownName(externalID int) string {
	return fmt.Sprintf("unknown-%d", externalID)
}
