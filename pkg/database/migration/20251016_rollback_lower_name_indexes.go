package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// RollbackLowerNameIndexes drops the indexes created by AddLowerNameIndexes
func RollbackLowerNameIndexes(db *gorm.DB) error {
	log.Println("Running rollback: Remove case-insensitive name indexes...")

	if err := db.Exec("DROP INDEX IF EXISTS idx_favorites_pokemon_user").Error; err != nil {
		log.Printf("Warning: Failed to drop idx_favorites_pokemon_user: %v", err)
	}

	for _, table := range ResourceTables {
		if err := db.Exec(fmt.Sprintf("DROP INDEX IF EXISTS %s", LowerNameIndex(table))).Error; err != nil {
			return err
		}
	}

	log.Println("Case-insensitive name indexes rollback completed successfully!")
	return nil
}
