package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/latoulicious/pokedex/internal/config"
	"github.com/latoulicious/pokedex/pkg/database"
	"github.com/latoulicious/pokedex/pkg/database/migration"
	"gorm.io/gorm"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run the migrations")
	resetFlag := flag.Bool("reset", false, "Drop every table before migrating")
	checkFlag := flag.Bool("check", false, "Check database connectivity and report missing tables")
	rollbackFlag := flag.Bool("rollback-indexes", false, "Drop the case-insensitive name indexes")
	flag.Parse()

	cfg, err := config.NewConfigManager()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewGormDB(cfg.GetDatabaseConfig().URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	manager := database.NewDatabaseManager(db)
	defer manager.Close()
	log.Printf("Connected to %s database", db.Dialector.Name())

	if *checkFlag {
		check(manager)
	}

	if *resetFlag {
		log.Println("Resetting database...")
		if err := reset(db); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Database reset successfully")
	}

	if *rollbackFlag {
		if err := migration.RollbackLowerNameIndexes(db); err != nil {
			log.Fatalf("Failed to roll back indexes: %v", err)
		}
		log.Println("Name indexes dropped")
	}

	if *migrateFlag || *resetFlag {
		log.Println("Running migrations...")
		if err := migration.RunMigration(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
	}
}

func check(manager *database.DatabaseManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := manager.Diagnose(ctx, migration.Models()...)
	if err != nil {
		log.Fatalf("Database check failed: %v", err)
	}

	log.Printf("Server version: %s", d.ServerVersion)
	log.Printf("Ping: %v", d.PingLatency)
	log.Printf("Connections: open=%d in_use=%d idle=%d", d.OpenConnections, d.InUse, d.Idle)
	if len(d.MissingTables) > 0 {
		log.Printf("Missing tables (created by -migrate): %v", d.MissingTables)
	} else {
		log.Println("All tables exist")
	}
	if d.PingLatency > 5*time.Second {
		log.Println("Ping took longer than 5 seconds, check network latency")
	}
}

// reset drops every catalog table. PostgreSQL drops the whole schema's
// tables so stale tables from older layouts go too.
func reset(db *gorm.DB) error {
	if database.IsSQLite(db) {
		return db.Connection(func(conn *gorm.DB) error {
			if err := conn.Exec("PRAGMA foreign_keys = OFF").Error; err != nil {
				return err
			}
			defer conn.Exec("PRAGMA foreign_keys = ON")
			return conn.Migrator().DropTable(migration.Models()...)
		})
	}

	db.Exec("SET session_replication_role = 'replica';")
	err := db.Exec(`
		DO $$ DECLARE
		r RECORD;
		BEGIN
			FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = current_schema()) LOOP
				EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
			END LOOP;
		END $$;
	`).Error
	db.Exec("SET session_replication_role = 'origin';")
	return err
}
