package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/service"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
)

var errBadQuery = errors.New("invalid query parameter")

// ListPokemons syncs one listing page and returns it. With ?local=true the
// page is read from the store without contacting the upstream API.
func (h *Handler) ListPokemons(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		abortWithError(c, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var page *shared.PokemonPage
	if local, _ := strconv.ParseBool(c.Query("local")); local {
		page, err = h.localPage(c, limit, offset)
	} else {
		page, err = h.listing.SyncPage(c.Request.Context(), limit, offset)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	if viewer := viewerFrom(c); viewer != nil && len(page.Results) > 0 {
		ids := make([]uint, 0, len(page.Results))
		for _, v := range page.Results {
			ids = append(ids, v.ID)
		}
		set, err := h.favorites.FavoritedSet(c.Request.Context(), *viewer, ids)
		if err != nil {
			abortWithError(c, err)
			return
		}
		for i, v := range page.Results {
			page.Results[i] = v.WithFavorite(set[v.ID])
		}
	}

	c.JSON(http.StatusOK, page)
}

// GetPokemon resolves a Pokemon; ?refresh=true forces an upstream fetch
func (h *Handler) GetPokemon(c *gin.Context) {
	pokemon, ok := h.resolvePokemon(c)
	if !ok {
		return
	}

	view, ok := h.viewFor(c, pokemon)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetSpecies returns the species view of a Pokemon
func (h *Handler) GetSpecies(c *gin.Context) {
	pokemon, ok := h.resolvePokemon(c)
	if !ok {
		return
	}

	species := pokemon.Species
	if species == nil {
		abortWithError(c, fmt.Errorf("species of %q: %w", pokemon.Name, pokedex.ErrNotFound))
		return
	}

	chains, err := h.service.SpeciesRepo.EvolutionChains(c.Request.Context(), species)
	if err != nil {
		abortWithError(c, err)
		return
	}

	view := shared.NewSpeciesView(species, h.service.FlavorLanguage)
	for i := range chains {
		view.EvolutionChains = append(view.EvolutionChains, shared.NewEvolutionChainView(&chains[i]))
	}
	c.JSON(http.StatusOK, view)
}

// GetEvolutionChainMembers lists the locally stored members of a chain. Chains
// are only created through a species cascade, so this never fetches.
func (h *Handler) GetEvolutionChainMembers(c *gin.Context) {
	ident, err := models.ParseIdentifier(c.Param("identifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	chain, err := h.service.ChainRepo.FindByIdentifier(ctx, ident)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if chain == nil {
		abortWithError(c, fmt.Errorf("evolution chain %q: %w", c.Param("identifier"), pokedex.ErrNotFound))
		return
	}

	species, err := h.service.ChainRepo.Species(ctx, chain)
	if err != nil {
		abortWithError(c, err)
		return
	}
	pokemons, err := h.service.ChainRepo.Pokemons(ctx, chain)
	if err != nil {
		abortWithError(c, err)
		return
	}

	members := shared.EvolutionChainMembers{
		Chain:    shared.NewEvolutionChainView(chain),
		Species:  make([]string, 0, len(species)),
		Pokemons: make([]*shared.PokemonView, 0, len(pokemons)),
	}
	for _, s := range species {
		members.Species = append(members.Species, s.Name)
	}
	for i := range pokemons {
		members.Pokemons = append(members.Pokemons, shared.NewPokemonView(&pokemons[i]))
	}
	c.JSON(http.StatusOK, members)
}

// GetEvolutionChain renders the evolution tree the Pokemon belongs to
func (h *Handler) GetEvolutionChain(c *gin.Context) {
	pokemon, ok := h.resolvePokemon(c)
	if !ok {
		return
	}

	tree, err := h.trees.TreeForPokemon(c.Request.Context(), pokemon, viewerFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

// Favorite adds the Pokemon to the viewer's favorites
func (h *Handler) Favorite(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer == nil {
		abortWithError(c, ErrUnauthenticated)
		return
	}

	pokemon, ok := h.resolvePokemon(c)
	if !ok {
		return
	}

	if err := h.favorites.Favorite(c.Request.Context(), *viewer, pokemon.ID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, shared.NewPokemonView(pokemon).WithFavorite(true))
}

// Unfavorite removes the Pokemon from the viewer's favorites. Only local
// records are consulted; an unknown Pokemon has nothing to remove.
func (h *Handler) Unfavorite(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer == nil {
		abortWithError(c, ErrUnauthenticated)
		return
	}

	ident, err := models.ParseIdentifier(c.Param("identifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	pokemon, err := h.service.PokemonRepo.FindByIdentifier(c.Request.Context(), ident)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if pokemon != nil {
		if err := h.favorites.Unfavorite(c.Request.Context(), *viewer, pokemon.ID); err != nil {
			abortWithError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

// ListFavorites returns the viewer's favorites, newest first
func (h *Handler) ListFavorites(c *gin.Context) {
	viewer := viewerFrom(c)
	if viewer == nil {
		abortWithError(c, ErrUnauthenticated)
		return
	}

	favorites, err := h.favorites.ListFavorites(c.Request.Context(), *viewer)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(favorites),
		"results": favorites,
	})
}

func (h *Handler) localPage(c *gin.Context, limit, offset int) (*shared.PokemonPage, error) {
	if limit <= 0 {
		limit = service.DefaultPageLimit
	}
	if limit > service.MaxPageLimit {
		limit = service.MaxPageLimit
	}

	ctx := c.Request.Context()
	total, err := h.service.PokemonRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	pokemons, err := h.service.PokemonRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	page := &shared.PokemonPage{
		Count:   int(total),
		Results: make([]*shared.PokemonView, 0, len(pokemons)),
	}
	for i := range pokemons {
		page.Results = append(page.Results, shared.NewPokemonView(&pokemons[i]))
	}
	return page, nil
}

func (h *Handler) resolvePokemon(c *gin.Context) (*models.Pokemon, bool) {
	var opts []pokedex.ResolveOption
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		opts = append(opts, pokedex.ForceRefresh())
	}

	pokemon, err := h.sync.ResolvePokemon(c.Request.Context(), c.Param("identifier"), opts...)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return pokemon, true
}

// viewFor projects pokemon, adding the favorite flag for a known viewer
func (h *Handler) viewFor(c *gin.Context, pokemon *models.Pokemon) (*shared.PokemonView, bool) {
	view := shared.NewPokemonView(pokemon)

	viewer := viewerFrom(c)
	if viewer == nil {
		return view, true
	}

	favorited, err := h.favorites.IsFavorited(c.Request.Context(), *viewer, pokemon.ID)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return view.WithFavorite(favorited), true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer: %w", key, errBadQuery)
	}
	return n, nil
}
