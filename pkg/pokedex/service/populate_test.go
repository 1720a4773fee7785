package service_test

import (
	"context"
	"testing"

	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulate_WalksPages(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	f.upstream.list = namedList("bulbasaur", "ivysaur")

	result, err := populator.Populate(context.Background(), 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Zero(t, result.FailedPages)
	assert.Equal(t, 6, result.Entries)
	assert.Equal(t, [][2]int{{2, 0}, {2, 2}, {2, 4}}, f.upstream.listArgs)
	// later pages repeat the same entries, all served from the store
	assert.Equal(t, 2, f.upstream.count(pokedex.KindPokemon))
}

func TestPopulate_StopsAtLastPage(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	f.upstream.list = namedList("pikachu")
	f.upstream.list.Next = nil

	result, err := populator.Populate(context.Background(), 20, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 1, result.Entries)
	assert.Len(t, f.upstream.listArgs, 1)
}

func TestPopulate_SkipsFailingPages(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	f.upstream.list = namedList("missingno")

	result, err := populator.Populate(context.Background(), 10, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, pokedex.ErrNotFound)

	assert.Zero(t, result.Pages)
	assert.Equal(t, 2, result.FailedPages)
	assert.Zero(t, result.Entries)
}

func TestPopulate_PartialFailureIsNotAnError(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	// the second page lists an entry upstream does not know
	f.upstream.list = namedList("ditto")
	f.upstream.beforeReturn = func(kind pokedex.Kind, identifier string) {
		if kind == pokedex.KindPokemon && identifier == "ditto" {
			f.upstream.mu.Lock()
			f.upstream.list = namedList("missingno")
			f.upstream.mu.Unlock()
		}
	}

	result, err := populator.Populate(context.Background(), 10, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 1, result.FailedPages)
}

func TestPopulate_ClampsOversizedPages(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	f.upstream.list = namedList("bulbasaur")

	result, err := populator.Populate(context.Background(), 150, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, [][2]int{{100, 0}, {100, 100}, {100, 200}}, f.upstream.listArgs)
}

func TestPopulate_CancelledContext(t *testing.T) {
	f := newFixture(t)
	populator := service.NewPopulateService(f.svc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := populator.Populate(ctx, 10, 2)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Pages)
	assert.Empty(t, f.upstream.listArgs)
}
