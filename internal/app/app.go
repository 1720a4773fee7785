// Package app wires configuration, storage, logging and the catalog service
// for the pokedex binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/latoulicious/pokedex/internal/config"
	"github.com/latoulicious/pokedex/pkg/database"
	"github.com/latoulicious/pokedex/pkg/database/migration"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokeapi"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// App holds the long-lived dependencies shared by the binaries
type App struct {
	Config   config.ConfigProvider
	DB       *gorm.DB
	Manager  *database.DatabaseManager
	Service  *pokedex.Service
	Registry *prometheus.Registry
	Loggers  logging.LoggerFactory

	logger logging.Logger
	cron   *cron.Cron
}

// New connects to the database, installs the global logger factory and
// builds the catalog service. SQLite databases are migrated on open.
func New(cfg config.ConfigProvider) (*App, error) {
	dbCfg := cfg.GetDatabaseConfig()
	db, err := database.NewGormDBFromConfig(dbCfg.URL, dbCfg.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if database.IsSQLite(db) {
		if err := migration.RunMigration(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	loggers := newLoggerFactory(db, cfg.GetLoggerConfig())
	logging.SetGlobalLoggerFactory(loggers)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client := pokeapi.NewClient(ClientConfig(cfg), loggers.CreateLogger("pokeapi"))

	syncCfg := cfg.GetSyncConfig()
	svc := pokedex.NewServiceFromDB(db, client, pokedex.NewFreshnessPolicy(syncCfg.TTL))
	svc.FlavorLanguage = syncCfg.FlavorLanguage
	svc.Loggers = loggers
	svc.Metrics = pokedex.NewMetrics(registry)

	a := &App{
		Config:   cfg,
		DB:       db,
		Manager:  database.NewDatabaseManager(db),
		Service:  svc,
		Registry: registry,
		Loggers:  loggers,
		logger:   loggers.CreateLogger("system"),
		cron:     cron.New(),
	}

	a.logger.Info("Application initialized", map[string]interface{}{
		"config_source": cfg.Source(),
		"dialect":       db.Dialector.Name(),
		"cache_ttl":     syncCfg.TTL.String(),
		"base_url":      client.BaseURL(),
	})

	return a, nil
}

func newLoggerFactory(db *gorm.DB, cfg *config.LoggerConfig) logging.LoggerFactory {
	opts := logging.Options{Level: cfg.Level, Format: cfg.Format}
	if !cfg.SaveToDB {
		return logging.NewLoggerFactoryWithOptions(opts)
	}
	repo := pokedex.NewLogRepositoryAdapter(repository.NewSyncLogRepository(db))
	return logging.NewDatabaseLoggerFactory(repo, opts, false)
}

// ClientConfig maps the upstream and retry sections onto the client config
func ClientConfig(cfg config.ConfigProvider) pokeapi.Config {
	api := cfg.GetPokeAPIConfig()
	retry := cfg.GetRetryConfig()
	return pokeapi.Config{
		BaseURL:   api.BaseURL,
		Timeout:   api.Timeout,
		RateLimit: api.RateLimit,
		RateBurst: api.RateBurst,
		UserAgent: api.UserAgent,
		Retry: pokeapi.RetryConfig{
			MaxRetries: retry.MaxRetries,
			BaseDelay:  retry.BaseDelay,
			MaxDelay:   retry.MaxDelay,
			Multiplier: retry.Multiplier,
		},
	}
}

// Logger returns the logger for component
func (a *App) Logger(component string) logging.Logger {
	return a.Loggers.CreateLogger(component)
}

// Schedule registers job on the shared cron. Jobs start with Start.
func (a *App) Schedule(spec, name string, job func(ctx context.Context)) error {
	_, err := a.cron.AddFunc(spec, func() {
		start := time.Now()
		job(context.Background())
		a.logger.Debug("Scheduled job finished", map[string]interface{}{
			"job":      name,
			"duration": time.Since(start).String(),
		})
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	return nil
}

// ScheduleLogPruning deletes persisted log entries past the retention window
// once a day. Nothing is scheduled when logs are not persisted.
func (a *App) ScheduleLogPruning() error {
	cfg := a.Config.GetLoggerConfig()
	if !cfg.SaveToDB || cfg.Retention <= 0 {
		return nil
	}
	return a.Schedule("@daily", "prune_logs", func(ctx context.Context) {
		a.PruneLogs(ctx)
	})
}

// PruneLogs runs one retention pass
func (a *App) PruneLogs(ctx context.Context) {
	retention := a.Config.GetLoggerConfig().Retention
	deleted, err := a.Manager.PruneLogs(ctx, retention)
	if err != nil {
		a.logger.Error("Failed to prune logs", err, map[string]interface{}{
			"retention": retention.String(),
		})
		return
	}
	a.logger.Info("Pruned persisted logs", map[string]interface{}{
		"deleted":   deleted,
		"retention": retention.String(),
	})
}

// Start runs scheduled jobs in the background
func (a *App) Start() {
	a.cron.Start()
}

// Close stops scheduled jobs, waits for pending log writes and closes the
// database.
func (a *App) Close() error {
	<-a.cron.Stop().Done()

	a.logger.Info("Application shutdown complete", nil)
	if f, ok := a.Loggers.(interface{ Flush() }); ok {
		f.Flush()
	}

	return a.Manager.Close()
}
