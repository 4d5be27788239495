//go:build linux || darwin

package arena

import "golang.org/x/sys/unix"

var pageSize = unix.Getpagesize()

// PageSize returns the system page size.
func PageSize() int { return pageSize }

func reserve(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
}

func commit(b []byte) error {
	return unix.Mprotect(b, unix.PROT_READ|unix.PROT_WRITE)
}

func release(b []byte) error {
	return unix.Munmap(b)
}
