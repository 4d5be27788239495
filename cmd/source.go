package cmd

import (
	"context"
	"fmt"

	"asset-catalog/core/catalog"
	"asset-catalog/core/config"
	"asset-catalog/core/database"
	"asset-catalog/core/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// openSource builds the asset source selected by catalog.source. The returned
// func releases whatever the source holds open.
func openSource(ctx context.Context, cfg *config.Config, logg *zap.Logger) (storage.Source, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case catalog.SourceFS:
		logg.Info("Serving assets from filesystem", zap.String("root", cfg.Catalog.Root))
		return storage.NewFileSource(afero.NewOsFs(), cfg.Catalog.Root), noop, nil

	case catalog.SourceS3:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create storage client: %w", err)
		}
		exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to check bucket %s: %w", cfg.Storage.Bucket, err)
		}
		if !exists {
			return nil, noop, fmt.Errorf("bucket %s does not exist", cfg.Storage.Bucket)
		}
		logg.Info("Serving assets from object storage",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("prefix", cfg.Storage.Prefix))
		return storage.NewObjectSource(client, cfg.Storage.Bucket, cfg.Storage.Prefix), noop, nil

	case catalog.SourceDatabase:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to database: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		src := database.NewBlobSource(db)
		if err := src.Migrate(); err != nil {
			closeDB()
			return nil, noop, fmt.Errorf("failed to prepare blob table: %w", err)
		}
		logg.Info("Serving assets from database", zap.String("driver", cfg.Database.Driver))
		return src, closeDB, nil
	}

	return nil, noop, fmt.Errorf("unsupported catalog source %q", cfg.Catalog.Source)
}
