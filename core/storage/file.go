package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"asset-catalog/core/allocator"

	"github.com/spf13/afero"
)

// FileSource reads assets from a filesystem.
type FileSource struct {
	fs afero.Fs
}

// NewFileSource serves paths relative to root on fsys. An empty root serves
// fsys as-is.
func NewFileSource(fsys afero.Fs, root string) *FileSource {
	if root != "" {
		fsys = afero.NewBasePathFs(fsys, root)
	}
	return &FileSource{fs: fsys}
}

// ReadFile implements Source.
func (s *FileSource) ReadFile(ctx context.Context, path string, a allocator.Allocator) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("read %s: is a directory", path)
	}

	data, err := ReadAll(f, info.Size(), a)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
