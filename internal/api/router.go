package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/latoulicious/pokedex/internal/version"
	"github.com/latoulicious/pokedex/pkg/database"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/latoulicious/pokedex/pkg/pokedex/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports store health and catalog statistics
type StatsProvider interface {
	Ping(ctx context.Context) error
	GetCatalogStats(ctx context.Context, ttl time.Duration) (*database.CatalogStats, error)
}

var _ StatsProvider = (*database.DatabaseManager)(nil)

// LogSource returns recently persisted log entries
type LogSource interface {
	Recent(ctx context.Context, component string, limit int) ([]models.SyncLog, error)
}

var _ LogSource = (*repository.SyncLogRepository)(nil)

const recentLogLimit = 10

// Dependencies wires the router. Service is required; nil services are
// built from it and a nil Auth means HeaderAuthProvider.
type Dependencies struct {
	Service   *pokedex.Service
	Sync      pokedex.SyncServiceInterface
	Trees     pokedex.TreeServiceInterface
	Favorites pokedex.FavoritesServiceInterface
	Listing   pokedex.ListingServiceInterface
	Stats     StatsProvider
	Logs      LogSource
	Auth      AuthProvider
	Gatherer  prometheus.Gatherer
}

// Handler serves the catalog over HTTP
type Handler struct {
	service   *pokedex.Service
	sync      pokedex.SyncServiceInterface
	trees     pokedex.TreeServiceInterface
	favorites pokedex.FavoritesServiceInterface
	listing   pokedex.ListingServiceInterface
	stats     StatsProvider
	logs      LogSource
	logger    logging.Logger
	started   time.Time
}

// NewRouter builds the gin engine with every route registered
func NewRouter(deps Dependencies) *gin.Engine {
	h := newHandler(deps)

	auth := deps.Auth
	if auth == nil {
		auth = HeaderAuthProvider{}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestMiddleware(deps.Service.LoggerFactory(), deps.Service.Metrics))

	r.GET("/health", h.Health)
	r.GET("/status", h.Status)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(auth))
	{
		v1.GET("/pokemons", h.ListPokemons)
		v1.GET("/pokemons/:identifier", h.GetPokemon)
		v1.GET("/pokemons/:identifier/species", h.GetSpecies)
		v1.GET("/pokemons/:identifier/evolution-chain", h.GetEvolutionChain)
		v1.PUT("/pokemons/:identifier/favorite", h.Favorite)
		v1.DELETE("/pokemons/:identifier/favorite", h.Unfavorite)
		v1.GET("/favorites", h.ListFavorites)
		v1.GET("/evolution-chains/:identifier", h.GetEvolutionChainMembers)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return r
}

func newHandler(deps Dependencies) *Handler {
	s := deps.Service

	h := &Handler{
		service:   s,
		sync:      deps.Sync,
		trees:     deps.Trees,
		favorites: deps.Favorites,
		listing:   deps.Listing,
		stats:     deps.Stats,
		logs:      deps.Logs,
		logger:    s.LoggerFactory().CreateLogger("api"),
		started:   time.Now(),
	}

	if h.sync == nil {
		h.sync = service.NewSyncService(s)
	}
	if h.trees == nil {
		h.trees = service.NewTreeService(s)
	}
	if h.favorites == nil {
		h.favorites = service.NewFavoritesService(s)
	}
	if h.listing == nil {
		h.listing = service.NewListingService(s, h.sync)
	}

	return h
}

// Health reports whether the store is reachable
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{
		"status": "healthy",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}

	if h.stats != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.stats.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", map[string]interface{}{"error": err.Error()})
			body["status"] = "unhealthy"
			body["database_connected"] = false
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["database_connected"] = true
	}

	c.JSON(http.StatusOK, body)
}

// Status reports version, uptime and catalog statistics
func (h *Handler) Status(c *gin.Context) {
	body := gin.H{
		"application": "pokedex",
		"version":     version.Get(),
		"start_time":  h.started.UTC().Format(time.RFC3339),
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"cache_ttl":   h.service.Freshness.TTL.String(),
	}

	if h.stats != nil {
		stats, err := h.stats.GetCatalogStats(c.Request.Context(), h.service.Freshness.TTL)
		if err != nil {
			abortWithError(c, err)
			return
		}
		body["catalog"] = stats
	}

	if h.logs != nil {
		logs, err := h.logs.Recent(c.Request.Context(), "", recentLogLimit)
		if err != nil {
			abortWithError(c, err)
			return
		}
		body["recent_logs"] = logs
	}

	c.JSON(http.StatusOK, body)
}
