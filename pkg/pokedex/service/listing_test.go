package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedList(names ...string) *pokeapi.NamedResourceList {
	next := "https://pokeapi.co/api/v2/pokemon?offset=20&limit=20"
	list := &pokeapi.NamedResourceList{Count: 1302, Next: &next}
	for _, n := range names {
		list.Results = append(list.Results, pokeapi.NamedResource{Name: n})
	}
	return list
}

func TestSyncPage_ResolvesEveryEntry(t *testing.T) {
	f := newFixture(t)
	listing := service.NewListingService(f.svc, nil)
	ctx := context.Background()

	f.upstream.list = namedList("bulbasaur", "ivysaur", "pikachu")

	page, err := listing.SyncPage(ctx, 20, 0)
	require.NoError(t, err)

	assert.Equal(t, 1302, page.Count)
	require.NotNil(t, page.Next)
	assert.Nil(t, page.Previous)
	require.Len(t, page.Results, 3)
	assert.Equal(t, "bulbasaur", page.Results[0].Name)
	assert.Equal(t, []string{"grass", "poison"}, page.Results[0].Types)
	assert.Equal(t, "pikachu", page.Results[2].Name)

	count, err := f.svc.PokemonRepo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	species, err := f.svc.SpeciesRepo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, species)

	// a second sync of the same page is served from the store
	_, err = listing.SyncPage(ctx, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, f.upstream.count(pokedex.KindPokemon))
}

func TestSyncPage_ClampsPaging(t *testing.T) {
	f := newFixture(t)
	listing := service.NewListingService(f.svc, service.NewSyncService(f.svc))
	ctx := context.Background()

	f.upstream.list = namedList()

	_, err := listing.SyncPage(ctx, 0, -5)
	require.NoError(t, err)
	_, err = listing.SyncPage(ctx, 500, 40)
	require.NoError(t, err)

	assert.Equal(t, [][2]int{
		{service.DefaultPageLimit, 0},
		{service.MaxPageLimit, 40},
	}, f.upstream.listArgs)
}

func TestSyncPage_ListFailure(t *testing.T) {
	f := newFixture(t)
	listing := service.NewListingService(f.svc, nil)

	f.upstream.listErr = errors.New("connection reset by peer")

	_, err := listing.SyncPage(context.Background(), 20, 0)
	assert.ErrorIs(t, err, pokedex.ErrResolutionFailed)
}

func TestSyncPage_EntryFailureAbortsPage(t *testing.T) {
	f := newFixture(t)
	listing := service.NewListingService(f.svc, nil)

	f.upstream.list = namedList("bulbasaur", "missingno")

	_, err := listing.SyncPage(context.Background(), 20, 0)
	assert.ErrorIs(t, err, pokedex.ErrNotFound)
}
