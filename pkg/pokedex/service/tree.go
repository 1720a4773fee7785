package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
)

// TreeService renders evolution trees from locally stored data only
type TreeService struct {
	service *pokedex.Service
	logger  logging.Logger
}

var _ pokedex.TreeServiceInterface = (*TreeService)(nil)

func NewTreeService(s *pokedex.Service) pokedex.TreeServiceInterface {
	return &TreeService{
		service: s,
		logger:  s.LoggerFactory().CreateLogger("tree"),
	}
}

// BuildTree renders a stored chain for viewer, who may be nil
func (ts *TreeService) BuildTree(ctx context.Context, chain *models.EvolutionChain, viewer *uuid.UUID) (*shared.TreeNode, error) {
	if chain == nil {
		return nil, fmt.Errorf("evolution chain: %w", pokedex.ErrNotFound)
	}
	return ts.BuildTreeFromPayload(ctx, chain.Data, viewer)
}

// BuildTreeFromPayload renders a raw /evolution-chain payload. Species with no
// stored Pokemon become placeholder nodes. Only decoding errors are returned.
func (ts *TreeService) BuildTreeFromPayload(ctx context.Context, raw []byte, viewer *uuid.UUID) (*shared.TreeNode, error) {
	root, err := shared.ParseChain(raw)
	if err != nil {
		ts.service.Metrics.IncTreeBuild("decode_error")
		return nil, err
	}

	pokemons := ts.loadPokemons(ctx, root.SpeciesNames())
	favorited := ts.loadFavorites(ctx, viewer, pokemons)

	b := treeBuilder{pokemons: pokemons, favorited: favorited}
	node := b.build(root, true)

	ts.service.Metrics.IncTreeBuild("ok")
	ts.logger.Debug("Built evolution tree", map[string]interface{}{
		"root":    root.Species.Name,
		"nodes":   node.Count(),
		"missing": b.missing,
	})
	return node, nil
}

// TreeForPokemon renders the chain linked to a stored Pokemon
func (ts *TreeService) TreeForPokemon(ctx context.Context, pokemon *models.Pokemon, viewer *uuid.UUID) (*shared.TreeNode, error) {
	chain, err := ts.service.ChainRepo.FindForPokemon(ctx, pokemon.ID)
	if err != nil {
		return nil, fmt.Errorf("find chain for pokemon %q: %w", pokemon.Name, err)
	}
	if chain == nil {
		return nil, fmt.Errorf("evolution chain of %q: %w", pokemon.Name, pokedex.ErrNotFound)
	}
	return ts.BuildTree(ctx, chain, viewer)
}

// loadPokemons maps each species name to its stored Pokemon. A name not
// matching a Pokemon falls back to the Species of that name and its owner.
func (ts *TreeService) loadPokemons(ctx context.Context, names []string) map[string]*models.Pokemon {
	byName, err := ts.service.PokemonRepo.FindByNames(ctx, names)
	if err != nil {
		ts.logger.Error("Failed to load pokemons for tree", err, map[string]interface{}{"names": names})
		return map[string]*models.Pokemon{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := byName[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return byName
	}

	bySpecies, err := ts.service.PokemonRepo.FindBySpeciesNames(ctx, missing)
	if err != nil {
		ts.logger.Error("Failed to load pokemons by species", err, map[string]interface{}{"names": missing})
		return byName
	}
	for name, p := range bySpecies {
		byName[name] = p
	}
	return byName
}

func (ts *TreeService) loadFavorites(ctx context.Context, viewer *uuid.UUID, pokemons map[string]*models.Pokemon) map[uint]bool {
	if viewer == nil || len(pokemons) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(pokemons))
	for _, p := range pokemons {
		ids = append(ids, p.ID)
	}

	set, err := ts.service.FavoriteRepo.FavoritedSet(ctx, *viewer, ids)
	if err != nil {
		ts.logger.Error("Failed to load favorites for tree", err, map[string]interface{}{
			"user_id": viewer.String(),
		})
		return nil
	}
	return set
}

type treeBuilder struct {
	pokemons  map[string]*models.Pokemon
	favorited map[uint]bool
	missing   []string
}

func (b *treeBuilder) build(link *shared.ChainLink, root bool) *shared.TreeNode {
	node := &shared.TreeNode{
		EvolvesTo: make([]*shared.TreeNode, 0, len(link.EvolvesTo)),
	}
	if !root {
		node.EvolutionText = link.EvolutionText()
	}

	if p, ok := b.pokemons[strings.ToLower(link.Species.Name)]; ok {
		node.Pokemon = shared.NewPokemonView(p).WithFavorite(b.favorited[p.ID])
	} else {
		b.missing = append(b.missing, link.Species.Name)
	}

	for i := range link.EvolvesTo {
		node.EvolvesTo = append(node.EvolvesTo, b.build(&link.EvolvesTo[i], false))
	}
	return node
}
