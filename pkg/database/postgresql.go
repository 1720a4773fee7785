package database

import (
	"errors"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqliteScheme = "sqlite://"

// NewGormDBFromConfig creates a new GORM database connection from config
func NewGormDBFromConfig(databaseURL string, maxOpenConns int) (*gorm.DB, error) {
	db, err := NewGormDB(databaseURL)
	if err != nil {
		return nil, err
	}

	if maxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}

	return db, nil
}

// NewGormDB creates a new GORM database connection using the provided DSN.
// DSNs prefixed with sqlite:// open a local SQLite file instead of PostgreSQL.
func NewGormDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("database DSN is not set")
	}

	config := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqliteScheme) {
		dialector = sqlite.Open(withForeignKeys(strings.TrimPrefix(dsn, sqliteScheme)))
	} else {
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// withForeignKeys turns on SQLite foreign key enforcement so cascades work
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// IsSQLite reports whether the connection uses the SQLite dialect
func IsSQLite(db *gorm.DB) bool {
	return db.Dialector.Name() == "sqlite"
}
