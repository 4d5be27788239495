package catalog

import (
	"asset-catalog/core/allocator"
	"asset-catalog/core/storage"

	"go.uber.org/zap"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithSource sets where asset bytes are read from. Defaults to the OS
// filesystem relative to the working directory.
func WithSource(src storage.Source) Option {
	return func(c *Catalog) { c.source = src }
}

// WithAllocator sets the allocator for transient load buffers. Defaults to
// allocator.System.
func WithAllocator(a allocator.Allocator) Option {
	return func(c *Catalog) { c.alloc = a }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithName labels the catalog in log entries.
func WithName(name string) Option {
	return func(c *Catalog) { c.name = name }
}
