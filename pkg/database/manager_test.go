package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/latoulicious/pokedex/pkg/database"
	"github.com/latoulicious/pokedex/pkg/database/dbtest"
	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDatabaseManager_GetCatalogStats(t *testing.T) {
	db := dbtest.NewTestDB(t)
	dm := database.NewDatabaseManager(db)
	now := time.Now().UTC()

	fresh := &models.Pokemon{Resource: models.Resource{ExternalID: 1, Name: "bulbasaur", Data: datatypes.JSON(`{}`), LastSynced: now}}
	stale := &models.Pokemon{Resource: models.Resource{ExternalID: 2, Name: "ivysaur", Data: datatypes.JSON(`{}`), LastSynced: now.Add(-48 * time.Hour)}}
	require.NoError(t, db.Create(fresh).Error)
	require.NoError(t, db.Create(stale).Error)

	stats, err := dm.GetCatalogStats(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.Pokemons.Total)
	assert.EqualValues(t, 1, stats.Pokemons.Stale)
	assert.Zero(t, stats.Species.Total)
	assert.Zero(t, stats.EvolutionChains.Total)
	assert.Zero(t, stats.Users)
}

func TestDatabaseManager_PruneLogs(t *testing.T) {
	db := dbtest.NewTestDB(t)
	dm := database.NewDatabaseManager(db)
	now := time.Now().UTC()

	require.NoError(t, db.Create(&models.SyncLog{ID: uuid.New(), Level: "INFO", Message: "old", Timestamp: now.Add(-72 * time.Hour)}).Error)
	require.NoError(t, db.Create(&models.SyncLog{ID: uuid.New(), Level: "INFO", Message: "new", Timestamp: now}).Error)

	removed, err := dm.PruneLogs(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	require.NoError(t, dm.Ping(context.Background()))
}

func TestDatabaseManager_Diagnose(t *testing.T) {
	db := dbtest.NewTestDB(t)
	dm := database.NewDatabaseManager(db)

	type unmigrated struct {
		ID uint
	}

	d, err := dm.Diagnose(context.Background(), &models.Pokemon{}, &models.Favorite{}, &unmigrated{})
	require.NoError(t, err)

	assert.Equal(t, "sqlite", d.Dialect)
	assert.NotEmpty(t, d.ServerVersion)
	assert.True(t, d.Transactions)
	assert.Equal(t, []string{"unmigrateds"}, d.MissingTables)
}
