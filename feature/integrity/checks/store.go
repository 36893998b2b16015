package checks

import (
	"fmt"

	"content-porter/core/database"
	"content-porter/core/store"

	"gorm.io/gorm"
)

// requiredColumns lists the columns each store table must carry for the
// porter to operate.
var requiredColumns = map[string][]string{
	"porter_documents": {"document_id", "content_type", "locale", "status", "data"},
	"porter_media":     {"document_id", "name", "hash", "url"},
}

// CheckStore verifies the store tables exist and carry the expected
// columns. The result maps table name to its missing columns; an empty map
// means the store is fully migrated.
func CheckStore(db *gorm.DB) (map[string][]string, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	missing := make(map[string][]string)
	for _, table := range store.Tables() {
		wanted, ok := requiredColumns[table]
		if !ok {
			continue
		}
		cols, err := database.HasColumns(db, table, wanted)
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			missing[table] = cols
		}
	}
	return missing, nil
}
