package service

import (
	"context"
	"fmt"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"gorm.io/datatypes"
)

func (ss *SyncService) chainPipeline() kindPipeline[models.EvolutionChain, *models.EvolutionChain] {
	repo := ss.service.ChainRepo
	return kindPipeline[models.EvolutionChain, *models.EvolutionChain]{
		kind:        pokedex.KindEvolutionChain,
		store:       repo,
		fetch:       ss.service.Upstream.GetEvolutionChain,
		defaultName: chainName,
		requireLinkage: func(o pokedex.ResolveOptions) error {
			if o.Species == nil {
				return fmt.Errorf("evolution chain needs a species: %w", pokedex.ErrMissingLinkage)
			}
			return nil
		},
		create: func(ctx context.Context, c *models.EvolutionChain, o pokedex.ResolveOptions) error {
			pokemon, err := ss.linkedPokemon(ctx, o)
			if err != nil {
				return err
			}
			return repo.CreateWithLinks(ctx, c, o.Species, pokemon)
		},
		update: func(ctx context.Context, c *models.EvolutionChain, data datatypes.JSON, now time.Time, o pokedex.ResolveOptions) error {
			if err := repo.UpdatePayload(ctx, c, data, now); err != nil {
				return err
			}
			// links only accumulate
			if o.Species != nil {
				if err := repo.LinkSpecies(ctx, c, o.Species); err != nil {
					return err
				}
			}
			pokemon, err := ss.linkedPokemon(ctx, o)
			if err != nil {
				return err
			}
			if pokemon != nil {
				return repo.LinkPokemon(ctx, c, pokemon)
			}
			return nil
		},
	}
}

// ResolveEvolutionChain resolves a chain by external id. Creating a chain
// requires WithSpecies; the chain and its first links are written atomically.
func (ss *SyncService) ResolveEvolutionChain(ctx context.Context, identifier string, opts ...pokedex.ResolveOption) (*models.EvolutionChain, error) {
	return run(ctx, ss, ss.chainPipeline(), identifier, pokedex.ApplyOptions(opts...))
}

func chainName(externalID int) string {
	return fmt.Sprintf("evo-chain-%d", externalID)
}
