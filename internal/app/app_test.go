package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/internal/config"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const testConfig = `
pokeapi:
  base_url: http://pokeapi.test/api/v2
  timeout: 3s
  rate_limit: 2
  rate_burst: 1
  user_agent: pokedex-test
retry:
  max_retries: 1
  base_delay: 10ms
  max_delay: 20ms
  multiplier: 2
sync:
  ttl: 1h
  flavor_language: fr
logger:
  level: error
  format: json
  save_to_db: true
  retention: 24h
`

func newTestApp(t *testing.T) *App {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pokedex.yaml"), []byte(testConfig), 0o644))
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "pokedex.db"))

	previous := logging.GetGlobalLoggerFactory()
	t.Cleanup(func() { logging.SetGlobalLoggerFactory(previous) })

	cfg, err := config.NewConfigManagerFromDir(dir)
	require.NoError(t, err)

	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestNew_WiresService(t *testing.T) {
	a := newTestApp(t)
	defer func() { require.NoError(t, a.Close()) }()

	assert.Equal(t, "fr", a.Service.FlavorLanguage)
	assert.Equal(t, time.Hour, a.Service.Freshness.TTL)
	assert.NotNil(t, a.Service.Metrics)
	assert.Same(t, a.Loggers, logging.GetGlobalLoggerFactory())
	assert.IsType(t, &logging.DatabaseLoggerFactory{}, a.Loggers)

	// sqlite databases are migrated on open
	assert.True(t, a.DB.Migrator().HasTable(&models.Pokemon{}))
	require.NoError(t, a.Manager.Ping(context.Background()))
}

func TestClientConfig(t *testing.T) {
	a := newTestApp(t)
	defer func() { require.NoError(t, a.Close()) }()

	cfg := ClientConfig(a.Config)
	assert.Equal(t, "http://pokeapi.test/api/v2", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 1, cfg.RateBurst)
	assert.Equal(t, "pokedex-test", cfg.UserAgent)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Retry.MaxDelay)
}

func TestPruneLogs(t *testing.T) {
	a := newTestApp(t)
	defer func() { require.NoError(t, a.Close()) }()

	now := time.Now().UTC()
	require.NoError(t, a.DB.Create(&models.SyncLog{
		ID: uuid.New(), Component: "sync", Level: "WARN", Message: "old", Fields: datatypes.JSON(`{}`),
		Timestamp: now.Add(-48 * time.Hour),
	}).Error)
	require.NoError(t, a.DB.Create(&models.SyncLog{
		ID: uuid.New(), Component: "sync", Level: "WARN", Message: "recent", Fields: datatypes.JSON(`{}`),
		Timestamp: now,
	}).Error)

	a.PruneLogs(context.Background())

	var remaining []models.SyncLog
	require.NoError(t, a.DB.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}

func TestSchedule(t *testing.T) {
	a := newTestApp(t)
	defer func() { require.NoError(t, a.Close()) }()

	require.NoError(t, a.ScheduleLogPruning())
	assert.Error(t, a.Schedule("not a schedule", "broken", func(context.Context) {}))
	assert.Len(t, a.cron.Entries(), 1)
}
