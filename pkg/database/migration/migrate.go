package migration

import (
	"log"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog, parents before children
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Pokemon{},
		&models.Species{},
		&models.EvolutionChain{},
		&models.Favorite{},
		&models.SyncLog{},
	}
}

func RunMigration(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Auto-migrate the models
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}

	if err := AddLowerNameIndexes(db); err != nil {
		return err
	}

	log.Println("Migrations completed successfully!")
	return nil
}
