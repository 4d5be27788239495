// Package database handles database connections and the database-backed asset
// source.
//
// It wraps GORM to configure MySQL or SQLite connections from the
// application's configuration.
//
// # Blob Source
//
// BlobSource serves assets stored in the asset_blobs table (path primary key,
// data blob). It implements storage.Source, so a catalog can load from the
// database exactly as it does from files or object storage.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns for MySQL and SQLite. BlobSource.Check
// uses it to verify the blob table before serving from it.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	src := database.NewBlobSource(db)
//	if err := src.Check(); err != nil {
//	    log.Fatal("asset_blobs table unusable", err)
//	}
package database
