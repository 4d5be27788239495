package database

import (
	"context"
	"errors"
	"fmt"

	"asset-catalog/core/allocator"
	"asset-catalog/core/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Blob is one asset stored in the database.
type Blob struct {
	Path string `gorm:"primaryKey;size:512"`
	Data []byte
}

// TableName implements gorm's tabler.
func (Blob) TableName() string { return "asset_blobs" }

// BlobSource reads assets from the asset_blobs table.
type BlobSource struct {
	db *gorm.DB
}

// NewBlobSource wraps db.
func NewBlobSource(db *gorm.DB) *BlobSource {
	return &BlobSource{db: db}
}

// Migrate creates or updates the asset_blobs table.
func (s *BlobSource) Migrate() error {
	if err := s.db.AutoMigrate(&Blob{}); err != nil {
		return fmt.Errorf("failed to migrate asset_blobs: %w", err)
	}
	return nil
}

// Check verifies that the asset_blobs table has the columns ReadFile needs.
func (s *BlobSource) Check() error {
	columns, err := GetTableColumns(s.db, Blob{}.TableName())
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(columns))
	for _, col := range columns {
		have[col.Field] = true
	}
	for _, want := range []string{"path", "data"} {
		if !have[want] {
			return fmt.Errorf("table asset_blobs is missing column %q", want)
		}
	}
	return nil
}

// Put stores or replaces the asset at path.
func (s *BlobSource) Put(ctx context.Context, path string, data []byte) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&Blob{Path: path, Data: data}).Error
	if err != nil {
		return fmt.Errorf("failed to store blob %s: %w", path, err)
	}
	return nil
}

// ReadFile implements storage.Source.
func (s *BlobSource) ReadFile(ctx context.Context, path string, a allocator.Allocator) ([]byte, error) {
	var blob Blob
	err := s.db.WithContext(ctx).Where("path = ?", path).Take(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("blob %s: %w", path, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}

	buf := a.Realloc(nil, len(blob.Data))
	copy(buf, blob.Data)
	return buf, nil
}
