package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ResourceTables are the tables whose name column is looked up case-insensitively
var ResourceTables = []string{"pokemons", "species", "evolution_chains"}

// LowerNameIndex returns the expression index name for a resource table
func LowerNameIndex(table string) string {
	return fmt.Sprintf("idx_%s_name_lower", table)
}

// AddLowerNameIndexes creates LOWER(name) expression indexes so identifier
// lookups by name do not scan the table
func AddLowerNameIndexes(db *gorm.DB) error {
	log.Println("Running migration: Add case-insensitive name indexes...")

	for _, table := range ResourceTables {
		stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (LOWER(name))", LowerNameIndex(table), table)
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	// Composite index for the tree builder's favorite lookups
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_favorites_pokemon_user ON favorites (pokemon_id, user_id)").Error; err != nil {
		return err
	}

	log.Println("Case-insensitive name indexes migration completed successfully!")
	return nil
}
