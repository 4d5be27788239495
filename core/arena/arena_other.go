//go:build !(linux || darwin)

package arena

import "os"

var pageSize = os.Getpagesize()

// PageSize returns the system page size.
func PageSize() int { return pageSize }

// The heap slice is allocated once at full size and never reallocated.
func reserve(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func commit([]byte) error { return nil }

func release([]byte) error { return nil }
