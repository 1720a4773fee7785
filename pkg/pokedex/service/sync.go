package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/shared"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Pipeline stage names, used as the "stage" log field
const (
	StageLookup    = "lookup"
	StageFreshness = "freshness"
	StageFetch     = "fetch"
	StagePersist   = "persist"
	StageCascade   = "cascade"
)

type SyncService struct {
	service *pokedex.Service
	loggers map[pokedex.Kind]logging.Logger
}

var _ pokedex.SyncServiceInterface = (*SyncService)(nil)

func NewSyncService(s *pokedex.Service) pokedex.SyncServiceInterface {
	return newSyncService(s)
}

func newSyncService(s *pokedex.Service) *SyncService {
	factory := s.LoggerFactory()
	loggers := make(map[pokedex.Kind]logging.Logger, len(pokedex.Kinds))
	for _, kind := range pokedex.Kinds {
		loggers[kind] = factory.CreateSyncLogger(kind.String())
	}
	return &SyncService{service: s, loggers: loggers}
}

// Resolve returns an up-to-date local record for identifier, fetching from
// upstream and cascading to dependent kinds as needed
func (ss *SyncService) Resolve(ctx context.Context, kind pokedex.Kind, identifier string, opts ...pokedex.ResolveOption) (models.Entity, error) {
	switch kind {
	case pokedex.KindPokemon:
		p, err := ss.ResolvePokemon(ctx, identifier, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case pokedex.KindSpecies:
		s, err := ss.ResolveSpecies(ctx, identifier, opts...)
		if err != nil {
			return nil, err
		}
		return s, nil
	case pokedex.KindEvolutionChain:
		c, err := ss.ResolveEvolutionChain(ctx, identifier, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

type entityPtr[T any] interface {
	*T
	models.Entity
}

// finder is the lookup half of the entity store contract
type finder[T any] interface {
	FindByIdentifier(ctx context.Context, ident models.Identifier) (*T, error)
}

// kindPipeline describes how one kind moves through the stages
type kindPipeline[T any, P entityPtr[T]] struct {
	kind        pokedex.Kind
	store       finder[T]
	fetch       func(ctx context.Context, identifier string) (json.RawMessage, error)
	defaultName func(externalID int) string
	// checked before fetching when nothing is stored yet
	requireLinkage func(o pokedex.ResolveOptions) error
	create         func(ctx context.Context, record P, o pokedex.ResolveOptions) error
	update         func(ctx context.Context, record P, data datatypes.JSON, now time.Time, o pokedex.ResolveOptions) error
}

// resolution carries one identifier through the stages
type resolution[T any, P entityPtr[T]] struct {
	pipeline   kindPipeline[T, P]
	ss         *SyncService
	identifier string
	ident      models.Identifier
	opts       pokedex.ResolveOptions
	logger     logging.Logger

	record  P
	data    json.RawMessage
	header  shared.PayloadHeader
	outcome string
}

func newResolution[T any, P entityPtr[T]](ss *SyncService, kp kindPipeline[T, P], identifier string, o pokedex.ResolveOptions) (*resolution[T, P], error) {
	ident, err := models.ParseIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kp.kind, identifier, err)
	}

	return &resolution[T, P]{
		pipeline:   kp,
		ss:         ss,
		identifier: ident.String(),
		ident:      ident,
		opts:       o,
		logger: ss.loggers[kp.kind].WithContext(map[string]interface{}{
			"identifier": ident.String(),
		}),
	}, nil
}

// run executes lookup, freshness, fetch and persist. Cascades are the
// caller's concern.
func run[T any, P entityPtr[T]](ctx context.Context, ss *SyncService, kp kindPipeline[T, P], identifier string, o pokedex.ResolveOptions) (P, error) {
	start := time.Now()

	r, err := newResolution(ss, kp, identifier, o)
	if err != nil {
		return nil, err
	}

	record, err := r.execute(ctx)
	outcome := r.outcome
	if err != nil {
		outcome = pokedex.OutcomeFailed
		if errors.Is(err, pokedex.ErrNotFound) {
			outcome = pokedex.OutcomeNotFound
		}
	}
	ss.service.Metrics.ObserveResolution(kp.kind, outcome, time.Since(start))

	return record, err
}

func (r *resolution[T, P]) execute(ctx context.Context) (P, error) {
	if err := r.lookup(ctx); err != nil {
		return nil, err
	}

	if r.fresh() {
		r.outcome = pokedex.OutcomeHit
		return r.record, nil
	}

	if r.record == nil && r.pipeline.requireLinkage != nil {
		if err := r.pipeline.requireLinkage(r.opts); err != nil {
			r.logger.Error("Cannot create without linkage", err, map[string]interface{}{
				"stage": StagePersist,
			})
			return nil, err
		}
	}

	if err := r.fetch(ctx); err != nil {
		return nil, err
	}

	if err := r.persist(ctx); err != nil {
		return nil, err
	}

	return r.record, nil
}

// lookup finds the stored record by external id or case-insensitive name
func (r *resolution[T, P]) lookup(ctx context.Context) error {
	found, err := r.pipeline.store.FindByIdentifier(ctx, r.ident)
	if err != nil {
		r.logger.Error("Lookup failed", err, map[string]interface{}{"stage": StageLookup})
		return fmt.Errorf("lookup %s %q: %w", r.pipeline.kind, r.identifier, err)
	}

	if found != nil {
		r.record = P(found)
	}

	r.logger.Debug("Lookup finished", map[string]interface{}{
		"stage": StageLookup,
		"found": r.record != nil,
	})
	return nil
}

// fresh reports whether the stored record can be served as is
func (r *resolution[T, P]) fresh() bool {
	if r.record == nil || r.opts.Force {
		return false
	}

	res := r.record.GetResource()
	fresh := r.ss.service.Freshness.IsFresh(res.LastSynced, r.opts.TTL)
	r.logger.Debug("Freshness checked", map[string]interface{}{
		"stage":       StageFreshness,
		"fresh":       fresh,
		"last_synced": res.LastSynced,
	})
	return fresh
}

// fetch downloads the canonical payload
func (r *resolution[T, P]) fetch(ctx context.Context) error {
	r.ss.service.Metrics.IncUpstreamFetch(r.pipeline.kind)

	data, err := r.pipeline.fetch(ctx, r.identifier)
	if err != nil {
		if pokeapi.IsNotFound(err) {
			r.logger.Info("Identifier not found upstream", map[string]interface{}{"stage": StageFetch})
			return pokedex.NotFoundError(r.pipeline.kind, r.identifier)
		}
		r.logger.Error("Upstream fetch failed", err, map[string]interface{}{"stage": StageFetch})
		return &pokedex.ResolutionError{Kind: r.pipeline.kind, Identifier: r.identifier, Err: err}
	}

	header, ok := shared.ParsePayloadHeader(data)
	if !ok {
		err := &pokedex.ResolutionError{Kind: r.pipeline.kind, Identifier: r.identifier, Err: pokedex.ErrMalformedPayload}
		r.logger.Error("Upstream payload has no id", err, map[string]interface{}{"stage": StageFetch})
		return err
	}

	r.data = data
	r.header = header
	return nil
}

// persist creates the record or overwrites payload and timestamp in place
func (r *resolution[T, P]) persist(ctx context.Context) error {
	now := r.ss.service.Freshness.CurrentTime()
	payload := datatypes.JSON(r.data)

	if r.record != nil {
		if err := r.pipeline.update(ctx, r.record, payload, now, r.opts); err != nil {
			r.logger.Error("Update failed", err, map[string]interface{}{"stage": StagePersist})
			return fmt.Errorf("update %s %q: %w", r.pipeline.kind, r.identifier, err)
		}
		r.outcome = pokedex.OutcomeRefreshed
		r.logger.Info("Refreshed record", map[string]interface{}{
			"stage":       StagePersist,
			"external_id": r.header.ExternalID,
		})
		return nil
	}

	name := r.header.Name
	if name == "" {
		name = r.pipeline.defaultName(r.header.ExternalID)
	}

	record := P(new(T))
	res := record.GetResource()
	res.ExternalID = r.header.ExternalID
	res.Name = name
	res.Data = payload
	res.LastSynced = now

	err := r.pipeline.create(ctx, record, r.opts)
	if err == nil {
		r.record = record
		r.outcome = pokedex.OutcomeCreated
		r.logger.Info("Created record", map[string]interface{}{
			"stage":       StagePersist,
			"external_id": res.ExternalID,
			"name":        res.Name,
		})
		return nil
	}

	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		r.logger.Error("Create failed", err, map[string]interface{}{"stage": StagePersist})
		return fmt.Errorf("create %s %q: %w", r.pipeline.kind, r.identifier, err)
	}

	return r.resolveConflict(ctx, name, payload, now)
}

// resolveConflict handles a concurrent creator winning the unique key: the
// row it wrote is re-read and this payload is applied on top
func (r *resolution[T, P]) resolveConflict(ctx context.Context, name string, payload datatypes.JSON, now time.Time) error {
	r.ss.service.Metrics.IncConflict(r.pipeline.kind)
	r.logger.Warn("Concurrent create detected, applying as update", map[string]interface{}{
		"stage":       StagePersist,
		"external_id": r.header.ExternalID,
		"error":       pokedex.ErrConflict.Error(),
	})

	existing, err := r.pipeline.store.FindByIdentifier(ctx, models.Identifier{ExternalID: r.header.ExternalID})
	if err == nil && existing == nil {
		existing, err = r.pipeline.store.FindByIdentifier(ctx, models.Identifier{Name: strings.ToLower(name)})
	}
	if err != nil {
		return fmt.Errorf("reload %s %q after conflict: %w", r.pipeline.kind, r.identifier, err)
	}
	if existing == nil {
		return fmt.Errorf("create %s %q: %w", r.pipeline.kind, r.identifier, pokedex.ErrConflict)
	}

	r.record = P(existing)
	if err := r.pipeline.update(ctx, r.record, payload, now, r.opts); err != nil {
		return fmt.Errorf("update %s %q after conflict: %w", r.pipeline.kind, r.identifier, err)
	}
	r.outcome = pokedex.OutcomeRefreshed
	return nil
}

// linkedPokemon returns the supplied Pokemon or the species' owner
func (ss *SyncService) linkedPokemon(ctx context.Context, o pokedex.ResolveOptions) (*models.Pokemon, error) {
	if o.Pokemon != nil {
		return o.Pokemon, nil
	}
	if o.Species == nil || o.Species.PokemonID == 0 {
		return nil, nil
	}
	return ss.service.PokemonRepo.FindByID(ctx, o.Species.PokemonID)
}
