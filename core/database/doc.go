// Package database handles content store database connections and schema
// inspection.
//
// It provides a wrapper around GORM to configure MySQL connections from the
// application configuration, with a sqlite branch used by tests and small
// single-node deployments.
//
// # Schema Inspection
//
// The inspector retrieves table columns so the integrity feature can verify
// the porter's document and media tables are migrated before a run writes
// anything.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "porter_documents")
package database
