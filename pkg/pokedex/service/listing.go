package service

import (
	"context"

	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
)

// Default listing page, as served by the upstream API
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type ListingService struct {
	service *pokedex.Service
	sync    pokedex.SyncServiceInterface
	logger  logging.Logger
}

var _ pokedex.ListingServiceInterface = (*ListingService)(nil)

func NewListingService(s *pokedex.Service, sync pokedex.SyncServiceInterface) pokedex.ListingServiceInterface {
	if sync == nil {
		sync = NewSyncService(s)
	}
	return &ListingService{
		service: s,
		sync:    sync,
		logger:  s.LoggerFactory().CreateLogger("listing"),
	}
}

// clampLimit maps a requested page size onto the range the upstream accepts
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// SyncPage fetches one upstream listing page and resolves every entry
// locally, so each listed Pokemon is stored along with its cascade
func (ls *ListingService) SyncPage(ctx context.Context, limit, offset int) (*shared.PokemonPage, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	list, err := ls.service.Upstream.ListPokemon(ctx, limit, offset)
	if err != nil {
		ls.logger.Error("Failed to fetch pokemon list", err, map[string]interface{}{
			"limit":  limit,
			"offset": offset,
		})
		return nil, &pokedex.ResolutionError{Kind: pokedex.KindPokemon, Identifier: "list", Err: err}
	}

	page := &shared.PokemonPage{
		Count:    list.Count,
		Next:     list.Next,
		Previous: list.Previous,
		Results:  make([]*shared.PokemonView, 0, len(list.Results)),
	}

	for _, item := range list.Results {
		if item.Name == "" {
			continue
		}
		pokemon, err := ls.sync.ResolvePokemon(ctx, item.Name)
		if err != nil {
			ls.logger.Error("Failed to sync listed pokemon", err, map[string]interface{}{
				"name":   item.Name,
				"offset": offset,
			})
			return nil, err
		}
		page.Results = append(page.Results, shared.NewPokemonView(pokemon))
	}

	ls.logger.Info("Synced pokemon page", map[string]interface{}{
		"limit":   limit,
		"offset":  offset,
		"results": len(page.Results),
	})
	return page, nil
}
