package logging_test

import (
	"errors"
	"testing"

	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFactory_CachesPerComponent(t *testing.T) {
	factory := logging.NewLoggerFactory()

	first := factory.CreateLogger("sync")
	second := factory.CreateLogger("sync")
	other := factory.CreateLogger("api")

	assert.Same(t, first, second)
	assert.NotSame(t, first, other)
}

func TestLoggerFactory_InvalidLevelPanics(t *testing.T) {
	factory := logging.NewLoggerFactoryWithOptions(logging.Options{Level: "loud"})
	assert.Panics(t, func() { factory.CreateLogger("sync") })
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, "info", level.String())

	level, err = logging.ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "debug", level.String())

	_, err = logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestDatabaseLoggerFactory_PersistsWarningsAndErrors(t *testing.T) {
	repo := &memoryLogRepository{}
	factory := logging.NewDatabaseLoggerFactory(repo, logging.Options{Level: "debug"}, false)

	logger := factory.CreateSyncLogger("species")
	logger.Info("not persisted", nil)
	logger.Debug("not persisted", nil)
	logger.Warn("conflict on create", map[string]interface{}{"identifier": "bulbasaur"})
	logger.Error("fetch failed", errors.New("boom"), map[string]interface{}{"identifier": "mew"})
	factory.Flush()

	entries := repo.Entries()
	require.Len(t, entries, 2)

	byLevel := map[string]logging.LogEntry{}
	for _, e := range entries {
		byLevel[e.Level] = e
	}

	warn := byLevel["WARN"]
	assert.Equal(t, "sync", warn.Component)
	assert.Equal(t, "species", warn.Kind)
	assert.Equal(t, "bulbasaur", warn.Identifier)
	assert.Contains(t, warn.Message, "conflict on create")
	assert.False(t, warn.Timestamp.IsZero())

	errEntry := byLevel["ERROR"]
	assert.Equal(t, "boom", errEntry.Error)
	assert.Equal(t, "mew", errEntry.Identifier)
}

func TestDatabaseLoggerFactory_PersistAll(t *testing.T) {
	repo := &memoryLogRepository{}
	factory := logging.NewDatabaseLoggerFactory(repo, logging.DefaultOptions(), true)

	factory.CreateRequestLogger("GET", "/health").Info("ok", nil)
	factory.Flush()

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "api", entries[0].Component)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "/health", entries[0].Fields["path"])
}

func TestDatabaseLoggerFactory_SaveFailureDoesNotPanic(t *testing.T) {
	repo := &memoryLogRepository{err: errors.New("db down")}
	factory := logging.NewDatabaseLoggerFactory(repo, logging.DefaultOptions(), false)

	assert.NotPanics(t, func() {
		factory.CreateLogger("sync").Error("failed", errors.New("x"), nil)
		factory.Flush()
	})
	assert.Empty(t, repo.Entries())
}

func TestGlobalLoggerFactory(t *testing.T) {
	original := logging.GetGlobalLoggerFactory()
	t.Cleanup(func() { logging.SetGlobalLoggerFactory(original) })

	custom := logging.NewLoggerFactory()
	logging.SetGlobalLoggerFactory(custom)
	assert.Same(t, custom, logging.GetGlobalLoggerFactory())
}
