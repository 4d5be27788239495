package storage

import (
	"context"
	"errors"
	"io"

	"asset-catalog/core/allocator"
)

// ErrNotFound is returned by a Source when the requested path does not exist.
var ErrNotFound = errors.New("storage: not found")

// Source reads whole assets by path.
type Source interface {
	// ReadFile returns the full content of path in a buffer obtained from a.
	// The caller releases it with a.Realloc(buf, 0).
	ReadFile(ctx context.Context, path string, a allocator.Allocator) ([]byte, error)
}

const minReadSize = 512

// ReadAll drains r into a buffer obtained from a. sizeHint, when positive,
// is the expected content length and avoids regrowth.
func ReadAll(r io.Reader, sizeHint int64, a allocator.Allocator) ([]byte, error) {
	size := minReadSize
	if sizeHint > 0 {
		// One spare byte lets the final Read report EOF without a regrow.
		size = int(sizeHint) + 1
	}

	buf := a.Realloc(nil, size)
	n := 0
	for {
		if n == len(buf) {
			buf = a.Realloc(buf, len(buf)*2)
		}
		m, err := r.Read(buf[n:])
		n += m
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			a.Realloc(buf, 0)
			return nil, err
		}
	}

	return a.Realloc(buf, n), nil
}
