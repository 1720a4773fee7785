package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database/dbtest"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	bulbasaurPokemon = `{"id":1,"name":"bulbasaur","height":7,"weight":69,
		"types":[{"slot":2,"type":{"name":"poison"}},{"slot":1,"type":{"name":"grass"}}],
		"abilities":[{"ability":{"name":"overgrow"}},{"ability":{"name":"chlorophyll"}}],
		"sprites":{"other":{"official-artwork":{"front_default":"https://img.example/1.png","front_shiny":null}}},
		"cries":{"latest":"https://cry.example/1.ogg"}}`
	bulbasaurSpecies = `{"id":1,"name":"bulbasaur",
		"evolution_chain":{"url":"https://pokeapi.co/api/v2/evolution-chain/1/"},
		"flavor_text_entries":[{"flavor_text":"A strange seed was\nplanted on its back.","language":{"name":"en"}}],
		"genera":[{"genus":"Seed Pokémon","language":{"name":"en"}}]}`
	ivysaurPokemon = `{"id":2,"name":"ivysaur","height":10,"weight":130,"types":[{"type":{"name":"grass"}}]}`
	ivysaurSpecies = `{"id":2,"name":"ivysaur","evolution_chain":{"url":"https://pokeapi.co/api/v2/evolution-chain/1/"}}`
	bulbasaurChain = `{"id":1,"chain":{
		"species":{"name":"bulbasaur","url":"https://pokeapi.co/api/v2/pokemon-species/1/"},
		"evolution_details":[],
		"evolves_to":[{
			"species":{"name":"ivysaur","url":"https://pokeapi.co/api/v2/pokemon-species/2/"},
			"evolution_details":[{"trigger":{"name":"level-up"},"min_level":16}],
			"evolves_to":[{
				"species":{"name":"venusaur","url":"https://pokeapi.co/api/v2/pokemon-species/3/"},
				"evolution_details":[{"trigger":{"name":"level-up"},"min_level":32}],
				"evolves_to":[]}]}]}}`
	pikachuPokemon = `{"id":25,"name":"pikachu","height":4,"weight":60,"types":[{"type":{"name":"electric"}}]}`
	pikachuSpecies = `{"id":25,"name":"pikachu","evolution_chain":{"url":"https://pokeapi.co/api/v2/evolution-chain/10/"}}`
	pikachuChain   = `{"id":10,"chain":{
		"species":{"name":"pichu","url":"https://pokeapi.co/api/v2/pokemon-species/172/"},
		"evolution_details":[],
		"evolves_to":[{
			"species":{"name":"pikachu","url":"https://pokeapi.co/api/v2/pokemon-species/25/"},
			"evolution_details":[{"trigger":{"name":"level-up"},"min_level":null}],
			"evolves_to":[{
				"species":{"name":"raichu","url":"https://pokeapi.co/api/v2/pokemon-species/26/"},
				"evolution_details":[{"trigger":{"name":"use-item"},"item":{"name":"thunder-stone"}}],
				"evolves_to":[]}]}]}}`
	dittoPokemon = `{"id":132,"name":"ditto","types":[{"type":{"name":"normal"}}]}`
	dittoSpecies = `{"id":132,"name":"ditto","evolution_chain":null}`
)

// fakeUpstream serves canned payloads and counts fetches per kind
type fakeUpstream struct {
	mu       sync.Mutex
	payloads map[pokedex.Kind]map[string]string
	errs     map[pokedex.Kind]error
	calls    map[pokedex.Kind]int
	list     *pokeapi.NamedResourceList
	listErr  error
	listArgs [][2]int

	// runs before a fetch returns, outside the lock
	beforeReturn func(kind pokedex.Kind, identifier string)
}

func newFakeUpstream() *fakeUpstream {
	f := &fakeUpstream{
		payloads: map[pokedex.Kind]map[string]string{},
		errs:     map[pokedex.Kind]error{},
		calls:    map[pokedex.Kind]int{},
	}
	f.add(pokedex.KindPokemon, bulbasaurPokemon)
	f.add(pokedex.KindSpecies, bulbasaurSpecies)
	f.add(pokedex.KindPokemon, ivysaurPokemon)
	f.add(pokedex.KindSpecies, ivysaurSpecies)
	f.add(pokedex.KindEvolutionChain, bulbasaurChain)
	f.add(pokedex.KindPokemon, pikachuPokemon)
	f.add(pokedex.KindSpecies, pikachuSpecies)
	f.add(pokedex.KindEvolutionChain, pikachuChain)
	f.add(pokedex.KindPokemon, dittoPokemon)
	f.add(pokedex.KindSpecies, dittoSpecies)
	return f
}

// add registers payload under both its id and its name
func (f *fakeUpstream) add(kind pokedex.Kind, payload string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var header struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	_ = json.Unmarshal([]byte(payload), &header)

	if f.payloads[kind] == nil {
		f.payloads[kind] = map[string]string{}
	}
	f.payloads[kind][strconv.Itoa(header.ID)] = payload
	if header.Name != "" {
		f.payloads[kind][header.Name] = payload
	}
}

// set registers payload under explicit identifiers
func (f *fakeUpstream) set(kind pokedex.Kind, payload string, identifiers ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payloads[kind] == nil {
		f.payloads[kind] = map[string]string{}
	}
	for _, id := range identifiers {
		f.payloads[kind][id] = payload
	}
}

func (f *fakeUpstream) fail(kind pokedex.Kind, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[kind] = err
}

func (f *fakeUpstream) count(kind pokedex.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

func (f *fakeUpstream) fetch(ctx context.Context, kind pokedex.Kind, identifier string) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls[kind]++
	err := f.errs[kind]
	payload, ok := f.payloads[kind][strings.ToLower(identifier)]
	hook := f.beforeReturn
	f.mu.Unlock()

	if hook != nil {
		hook(kind, identifier)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &pokeapi.APIError{Method: http.MethodGet, URL: string(kind) + "/" + identifier, StatusCode: http.StatusNotFound}
	}
	return json.RawMessage(payload), nil
}

func (f *fakeUpstream) GetPokemon(ctx context.Context, identifier string) (json.RawMessage, error) {
	return f.fetch(ctx, pokedex.KindPokemon, identifier)
}

func (f *fakeUpstream) GetSpecies(ctx context.Context, identifier string) (json.RawMessage, error) {
	return f.fetch(ctx, pokedex.KindSpecies, identifier)
}

func (f *fakeUpstream) GetEvolutionChain(ctx context.Context, identifier string) (json.RawMessage, error) {
	return f.fetch(ctx, pokedex.KindEvolutionChain, identifier)
}

func (f *fakeUpstream) ListPokemon(ctx context.Context, limit, offset int) (*pokeapi.NamedResourceList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listArgs = append(f.listArgs, [2]int{limit, offset})
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingLogger collects calls across every derived logger
type recordingLogger struct {
	mu     sync.Mutex
	warns  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {}
func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) WithPipeline(string) logging.Logger { return l }
func (l *recordingLogger) WithContext(map[string]interface{}) logging.Logger { return l }

func (l *recordingLogger) Warns() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

type recordingFactory struct {
	logger *recordingLogger
}

func (f recordingFactory) CreateLogger(string) logging.Logger { return f.logger }
func (f recordingFactory) CreateSyncLogger(string) logging.Logger { return f.logger }
func (f recordingFactory) CreateRequestLogger(_, _ string) logging.Logger { return f.logger }

// fixture bundles a service over a fresh database
type fixture struct {
	db       *gorm.DB
	svc      *pokedex.Service
	upstream *fakeUpstream
	clock    *fakeClock
	logger   *recordingLogger
	registry *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.NewTestDB(t)
	upstream := newFakeUpstream()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	logger := &recordingLogger{}
	registry := prometheus.NewRegistry()

	svc := pokedex.NewServiceFromDB(db, upstream, pokedex.FreshnessPolicy{TTL: pokedex.DefaultTTL, Now: clock.Now})
	svc.Loggers = recordingFactory{logger: logger}
	svc.Metrics = pokedex.NewMetrics(registry)

	return &fixture{db: db, svc: svc, upstream: upstream, clock: clock, logger: logger, registry: registry}
}

func (f *fixture) newUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, repository.NewUserRepository(f.db).Create(context.Background(), user))
	return user.ID
}
