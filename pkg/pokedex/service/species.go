package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
	"gorm.io/datatypes"
)

func (ss *SyncService) speciesPipeline() kindPipeline[models.Species, *models.Species] {
	repo := ss.service.SpeciesRepo
	return kindPipeline[models.Species, *models.Species]{
		kind:        pokedex.KindSpecies,
		store:       repo,
		fetch:       ss.service.Upstream.GetSpecies,
		defaultName: unknownName,
		requireLinkage: func(o pokedex.ResolveOptions) error {
			if o.Pokemon == nil {
				return fmt.Errorf("species needs an owning pokemon: %w", pokedex.ErrMissingLinkage)
			}
			return nil
		},
		create: func(ctx context.Context, s *models.Species, o pokedex.ResolveOptions) error {
			s.PokemonID = o.Pokemon.ID
			return repo.Create(ctx, s)
		},
		update: func(ctx context.Context, s *models.Species, data datatypes.JSON, now time.Time, o pokedex.ResolveOptions) error {
			if err := repo.UpdatePayload(ctx, s, data, now); err != nil {
				return err
			}
			if o.Pokemon != nil && s.PokemonID != o.Pokemon.ID {
				return repo.SetPokemon(ctx, s, o.Pokemon.ID)
			}
			return nil
		},
	}
}

// ResolveSpecies resolves a Species, then the evolution chain its payload
// references, linking the chain to the species and its pokemon
func (ss *SyncService) ResolveSpecies(ctx context.Context, identifier string, opts ...pokedex.ResolveOption) (*models.Species, error) {
	o := pokedex.ApplyOptions(opts...)

	species, err := run(ctx, ss, ss.speciesPipeline(), identifier, o)
	if err != nil {
		return nil, err
	}

	if err := ss.cascadeEvolutionChain(ctx, species, o.Pokemon); err != nil {
		return nil, err
	}

	return species, nil
}

func (ss *SyncService) cascadeEvolutionChain(ctx context.Context, species *models.Species, pokemon *models.Pokemon) error {
	logger := ss.loggers[pokedex.KindSpecies].WithContext(map[string]interface{}{
		"stage":   StageCascade,
		"species": species.Name,
	})

	chainURL := shared.EvolutionChainURL(species.Data)
	if chainURL == "" {
		logger.Debug("Species has no evolution chain", nil)
		return nil
	}

	chainID, err := pokeapi.IDFromURL(chainURL)
	if err != nil {
		logger.Error("Unparseable evolution chain reference", err, map[string]interface{}{"url": chainURL})
		return &pokedex.ResolutionError{
			Kind:       pokedex.KindEvolutionChain,
			Identifier: chainURL,
			Err:        fmt.Errorf("%w: %v", pokedex.ErrMalformedPayload, err),
		}
	}

	linkage := pokedex.ResolveOptions{Species: species, Pokemon: pokemon}
	if pokemon == nil {
		if pokemon, err = ss.linkedPokemon(ctx, linkage); err != nil {
			return fmt.Errorf("load owner of species %q: %w", species.Name, err)
		}
	}

	chain, err := ss.ResolveEvolutionChain(ctx, strconv.Itoa(chainID),
		pokedex.WithSpecies(species), pokedex.WithPokemon(pokemon))
	if err != nil {
		return err
	}

	if err := ss.service.ChainRepo.LinkSpecies(ctx, chain, species); err != nil {
		return fmt.Errorf("link chain %d to species %q: %w", chain.ExternalID, species.Name, err)
	}
	if pokemon != nil {
		if err := ss.service.ChainRepo.LinkPokemon(ctx, chain, pokemon); err != nil {
			return fmt.Errorf("link chain %d to pokemon %q: %w", chain.ExternalID, pokemon.Name, err)
		}
	}

	logger.Debug("Linked evolution chain", map[string]interface{}{"chain_id": chain.ExternalID})
	return nil
}
