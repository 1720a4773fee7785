package pokedex

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
	"gorm.io/gorm"
)

// Upstream is the subset of the PokeAPI client the sync layer consumes
type Upstream interface {
	GetPokemon(ctx context.Context, identifier string) (json.RawMessage, error)
	GetSpecies(ctx context.Context, identifier string) (json.RawMessage, error)
	GetEvolutionChain(ctx context.Context, identifier string) (json.RawMessage, error)
	ListPokemon(ctx context.Context, limit, offset int) (*pokeapi.NamedResourceList, error)
}

var _ Upstream = (*pokeapi.Client)(nil)

// Service represents the main service that holds all dependencies
type Service struct {
	PokemonRepo    *repository.PokemonRepository
	SpeciesRepo    *repository.SpeciesRepository
	ChainRepo      *repository.EvolutionChainRepository
	FavoriteRepo   *repository.FavoriteRepository
	UserRepo       *repository.UserRepository
	Upstream       Upstream
	Freshness      FreshnessPolicy
	Metrics        *Metrics
	Loggers        logging.LoggerFactory
	FlavorLanguage string
}

// ResolveOption customizes a single resolution
type ResolveOption func(*ResolveOptions)

// ResolveOptions is the applied form of ResolveOption values
type ResolveOptions struct {
	Force   bool
	TTL     time.Duration
	Pokemon *models.Pokemon
	Species *models.Species
}

// ForceRefresh fetches upstream even when the stored record is fresh. It
// applies to the requested entity only, not to its cascade.
func ForceRefresh() ResolveOption {
	return func(o *ResolveOptions) { o.Force = true }
}

// WithTTL overrides the freshness window for this call
func WithTTL(ttl time.Duration) ResolveOption {
	return func(o *ResolveOptions) { o.TTL = ttl }
}

// WithPokemon supplies the owning Pokemon as linkage
func WithPokemon(p *models.Pokemon) ResolveOption {
	return func(o *ResolveOptions) { o.Pokemon = p }
}

// WithSpecies supplies the Species as linkage
func WithSpecies(s *models.Species) ResolveOption {
	return func(o *ResolveOptions) { o.Species = s }
}

// ApplyOptions folds opts into a ResolveOptions value
func ApplyOptions(opts ...ResolveOption) ResolveOptions {
	var o ResolveOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// SyncServiceInterface defines the cache-or-fetch resolution operations
type SyncServiceInterface interface {
	Resolve(ctx context.Context, kind Kind, identifier string, opts ...ResolveOption) (models.Entity, error)
	ResolvePokemon(ctx context.Context, identifier string, opts ...ResolveOption) (*models.Pokemon, error)
	ResolveSpecies(ctx context.Context, identifier string, opts ...ResolveOption) (*models.Species, error)
	ResolveEvolutionChain(ctx context.Context, identifier string, opts ...ResolveOption) (*models.EvolutionChain, error)
}

// TreeServiceInterface defines evolution tree rendering over local data
type TreeServiceInterface interface {
	BuildTree(ctx context.Context, chain *models.EvolutionChain, viewer *uuid.UUID) (*shared.TreeNode, error)
	BuildTreeFromPayload(ctx context.Context, raw []byte, viewer *uuid.UUID) (*shared.TreeNode, error)
	TreeForPokemon(ctx context.Context, pokemon *models.Pokemon, viewer *uuid.UUID) (*shared.TreeNode, error)
}

// FavoritesServiceInterface defines the favorites ledger
type FavoritesServiceInterface interface {
	Favorite(ctx context.Context, userID uuid.UUID, pokemonID uint) error
	Unfavorite(ctx context.Context, userID uuid.UUID, pokemonID uint) error
	IsFavorited(ctx context.Context, userID uuid.UUID, pokemonID uint) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]shared.FavoriteView, error)
	FavoritedSet(ctx context.Context, userID uuid.UUID, pokemonIDs []uint) (map[uint]bool, error)
}

// ListingServiceInterface defines catalog page synchronization
type ListingServiceInterface interface {
	SyncPage(ctx context.Context, limit, offset int) (*shared.PokemonPage, error)
}

// PopulateResult summarizes one population run
type PopulateResult struct {
	Pages       int           `json:"pages"`
	FailedPages int           `json:"failed_pages"`
	Entries     int           `json:"entries"`
	Duration    time.Duration `json:"duration"`
}

// PopulateServiceInterface defines bulk warm-up of the local catalog
type PopulateServiceInterface interface {
	Populate(ctx context.Context, pageSize, pages int) (*PopulateResult, error)
}

// NewService creates a new Service instance with all dependencies
func NewService(
	pokemonRepo *repository.PokemonRepository,
	speciesRepo *repository.SpeciesRepository,
	chainRepo *repository.EvolutionChainRepository,
	favoriteRepo *repository.FavoriteRepository,
	userRepo *repository.UserRepository,
	upstream Upstream,
	freshness FreshnessPolicy,
) *Service {
	return &Service{
		PokemonRepo:    pokemonRepo,
		SpeciesRepo:    speciesRepo,
		ChainRepo:      chainRepo,
		FavoriteRepo:   favoriteRepo,
		UserRepo:       userRepo,
		Upstream:       upstream,
		Freshness:      freshness,
		FlavorLanguage: shared.DefaultFlavorLanguage,
	}
}

// LoggerFactory returns the configured factory or the global one
func (s *Service) LoggerFactory() logging.LoggerFactory {
	if s.Loggers != nil {
		return s.Loggers
	}
	return logging.GetGlobalLoggerFactory()
}

// NewServiceFromDB wires the repositories over one database handle
func NewServiceFromDB(db *gorm.DB, upstream Upstream, freshness FreshnessPolicy) *Service {
	return NewService(
		repository.NewPokemonRepository(db),
		repository.NewSpeciesRepository(db),
		repository.NewEvolutionChainRepository(db),
		repository.NewFavoriteRepository(db),
		repository.NewUserRepository(db),
		upstream,
		freshness,
	)
}
