package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

// DatabaseManager exposes maintenance and reporting queries over the catalog
type DatabaseManager struct {
	db *gorm.DB
}

// NewDatabaseManager creates a new database manager with GORM
func NewDatabaseManager(gormDB *gorm.DB) *DatabaseManager {
	return &DatabaseManager{
		db: gormDB,
	}
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the database is reachable
func (dm *DatabaseManager) Ping(ctx context.Context) error {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// KindStats holds the row counts for one synchronized kind
type KindStats struct {
	Total int64 `json:"total"`
	Stale int64 `json:"stale"`
}

// CatalogStats summarizes the local mirror
type CatalogStats struct {
	Pokemons        KindStats `json:"pokemons"`
	Species         KindStats `json:"species"`
	EvolutionChains KindStats `json:"evolution_chains"`
	Favorites       int64     `json:"favorites"`
	Users           int64     `json:"users"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// GetCatalogStats returns per-kind totals and how many rows are older than ttl
func (dm *DatabaseManager) GetCatalogStats(ctx context.Context, ttl time.Duration) (*CatalogStats, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-ttl)
	db := dm.db.WithContext(ctx)

	stats := &CatalogStats{GeneratedAt: now}

	kinds := []struct {
		model interface{}
		out   *KindStats
	}{
		{&models.Pokemon{}, &stats.Pokemons},
		{&models.Species{}, &stats.Species},
		{&models.EvolutionChain{}, &stats.EvolutionChains},
	}

	for _, k := range kinds {
		if err := db.Model(k.model).Count(&k.out.Total).Error; err != nil {
			return nil, err
		}
		if err := db.Model(k.model).Where("last_synced <= ?", cutoff).Count(&k.out.Stale).Error; err != nil {
			return nil, err
		}
	}

	if err := db.Model(&models.Favorite{}).Count(&stats.Favorites).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

// PruneLogs deletes persisted log entries older than the retention window
func (dm *DatabaseManager) PruneLogs(ctx context.Context, retention time.Duration) (int64, error) {
	result := dm.db.WithContext(ctx).
		Where("timestamp < ?", time.Now().UTC().Add(-retention)).
		Delete(&models.SyncLog{})
	return result.RowsAffected, result.Error
}

// Diagnostics is the result of a connectivity check
type Diagnostics struct {
	Dialect         string        `json:"dialect"`
	ServerVersion   string        `json:"server_version"`
	PingLatency     time.Duration `json:"ping_latency"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	MissingTables   []string      `json:"missing_tables"`
	Transactions    bool          `json:"transactions"`
}

// Diagnose pings the database, reads its version and pool stats, verifies a
// transaction can be rolled back and reports which of tables do not exist yet.
func (dm *DatabaseManager) Diagnose(ctx context.Context, tables ...interface{}) (*Diagnostics, error) {
	sqlDB, err := dm.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database connection: %w", err)
	}

	start := time.Now()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	d := &Diagnostics{
		Dialect:     dm.db.Dialector.Name(),
		PingLatency: time.Since(start),
	}

	db := dm.db.WithContext(ctx)

	versionQuery := "SELECT version()"
	if IsSQLite(dm.db) {
		versionQuery = "SELECT sqlite_version()"
	}
	if err := db.Raw(versionQuery).Scan(&d.ServerVersion).Error; err != nil {
		return nil, fmt.Errorf("failed to read server version: %w", err)
	}

	stats := sqlDB.Stats()
	d.OpenConnections = stats.OpenConnections
	d.InUse = stats.InUse
	d.Idle = stats.Idle

	migrator := db.Migrator()
	for _, table := range tables {
		if migrator.HasTable(table) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(table); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", table, err)
		}
		d.MissingTables = append(d.MissingTables, stmt.Schema.Table)
	}

	if err := checkTransaction(db); err != nil {
		return d, fmt.Errorf("transaction check failed: %w", err)
	}
	d.Transactions = true

	return d, nil
}

// checkTransaction runs a query inside a transaction that is always rolled back
func checkTransaction(db *gorm.DB) error {
	errRollback := errors.New("rollback")

	err := db.Transaction(func(tx *gorm.DB) error {
		var one int
		if err := tx.Raw("SELECT 1").Scan(&one).Error; err != nil {
			return err
		}
		if one != 1 {
			return fmt.Errorf("unexpected result %d", one)
		}
		return errRollback
	})
	if errors.Is(err, errRollback) {
		return nil
	}
	if err == nil {
		return errors.New("transaction committed unexpectedly")
	}
	return err
}
