package pokedex_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/dbtest"
	"github.com/latoulicious/pokedex/pkg/database/repository"
	"github.com/latoulicious/pokedex/pkg/logging"
	"github.com/latoulicious/pokedex/pkg/pokedex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRepositoryAdapter_SaveLog(t *testing.T) {
	db := dbtest.NewTestDB(t)
	logRepo := repository.NewSyncLogRepository(db)
	adapter := pokedex.NewLogRepositoryAdapter(logRepo)

	ts := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	err := adapter.SaveLog(logging.LogEntry{
		Component:  "sync",
		Level:      "ERROR",
		Message:    "Upstream fetch failed",
		Error:      errors.New("status 503").Error(),
		Fields:     map[string]interface{}{"stage": "fetch", "attempt": 3},
		Kind:       "pokemon",
		Identifier: "pikachu",
		Timestamp:  ts,
	})
	require.NoError(t, err)

	logs, err := logRepo.Recent(context.Background(), "sync", 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "status 503", entry.Error)
	assert.Equal(t, "pokemon", entry.Kind)
	assert.Equal(t, "pikachu", entry.Identifier)
	assert.True(t, entry.Timestamp.Equal(ts))
	assert.JSONEq(t, `{"stage":"fetch","attempt":3}`, string(entry.Fields))
}

func TestLogRepositoryAdapter_UnencodableFields(t *testing.T) {
	db := dbtest.NewTestDB(t)
	logRepo := repository.NewSyncLogRepository(db)
	adapter := pokedex.NewLogRepositoryAdapter(logRepo)

	err := adapter.SaveLog(logging.LogEntry{
		Component: "api",
		Level:     "WARN",
		Message:   "odd value",
		Fields:    map[string]interface{}{"ratio": math.Inf(1)},
	})
	require.NoError(t, err)

	logs, err := logRepo.Recent(context.Background(), "api", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, string(logs[0].Fields), "marshal_error")
	assert.False(t, logs[0].Timestamp.IsZero())
}
