package catalog

import (
	"context"
	"errors"
	"fmt"

	"asset-catalog/core/allocator"
	"asset-catalog/core/slots"
	"asset-catalog/core/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Catalog maps names to fixed-size assets.
type Catalog struct {
	name   string
	iface  Interface
	table  *slots.Table
	loader *Loader
	source storage.Source
	alloc  allocator.Allocator
	logger *zap.Logger

	placeholder AssetID
	fallback    AssetID

	// inflight holds slot indices with an outstanding async request.
	inflight  map[uint32]struct{}
	destroyed bool
}

// New creates a catalog able to hold reserveCount assets and starts the
// loader's background goroutine if it is not running yet.
func New(loader *Loader, reserveCount int, iface Interface, opts ...Option) (*Catalog, error) {
	if loader == nil {
		return nil, errors.New("catalog: nil loader")
	}

	table, err := slots.New(iface.AssetSize, reserveCount)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	c := &Catalog{
		iface:       iface,
		table:       table,
		loader:      loader,
		placeholder: InvalidID,
		fallback:    InvalidID,
		inflight:    make(map[uint32]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.source == nil {
		c.source = storage.NewFileSource(afero.NewOsFs(), "")
	}
	if c.alloc == nil {
		c.alloc = allocator.System
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.name != "" {
		c.logger = c.logger.With(zap.String("catalog", c.name))
	}

	loader.start()
	return c, nil
}

// SetPlaceholder sets the asset copied into slots whose async load is still
// in flight. The handle is re-checked each time it is used.
func (c *Catalog) SetPlaceholder(id AssetID) { c.placeholder = id }

// SetFallback sets the asset copied into slots whose load failed.
func (c *Catalog) SetFallback(id AssetID) { c.fallback = id }

// Placeholder returns the placeholder handle, InvalidID if unset.
func (c *Catalog) Placeholder() AssetID { return c.placeholder }

// Fallback returns the fallback handle, InvalidID if unset.
func (c *Catalog) Fallback() AssetID { return c.fallback }

// FindOrLoad returns the asset registered under path, loading it on a miss.
//
// The file is always read on the calling goroutine. With async set, parsing
// is deferred to the loader and the slot shows the placeholder until Poll
// completes it. A non-empty tag replaces the asset's tag, on hits as well.
//
// InvalidID is returned on a miss when the Interface cannot load.
func (c *Catalog) FindOrLoad(ctx context.Context, path, tag string, async bool) AssetID {
	if id, hit := c.lookup(path, tag); hit {
		return id
	}
	if !c.iface.canLoad() {
		c.logger.Error("Catalog interface is missing load callbacks", zap.String("path", path))
		return InvalidID
	}

	id := c.allocate(path, tag)
	asset, _ := c.table.Resolve(id)

	raw, err := c.source.ReadFile(ctx, path, c.alloc)
	if async {
		c.enqueue(id, path, raw, err, asset)
		return id
	}

	c.loadInline(path, raw, err, asset)
	return id
}

// FindOrMake returns the asset registered under name, allocating an empty
// slot on a miss. The caller fills the payload through AssetData.
func (c *Catalog) FindOrMake(name, tag string) AssetID {
	id, _ := c.find(name, tag)
	return id
}

// find looks name up and allocates a zeroed slot on a miss.
func (c *Catalog) find(name, tag string) (AssetID, bool) {
	if id, ok := c.lookup(name, tag); ok {
		return id, true
	}
	return c.allocate(name, tag), false
}

// lookup returns the live handle for name, replacing its tag when tag is set.
func (c *Catalog) lookup(name, tag string) (AssetID, bool) {
	id, ok := c.table.Lookup(hashKey(name))
	if !ok {
		return InvalidID, false
	}
	if tagHash := hashKey(tag); tagHash != 0 {
		c.table.SetTag(id.Index(), tagHash)
	}
	return id, true
}

func (c *Catalog) allocate(name, tag string) AssetID {
	id := c.table.Allocate(hashKey(name), hashKey(tag))
	asset, _ := c.table.Resolve(id)
	clear(asset)
	return id
}

func (c *Catalog) loadInline(path string, raw []byte, readErr error, asset []byte) {
	defer c.alloc.Realloc(raw, 0)

	if readErr != nil {
		c.logger.Error("Failed to read asset", zap.String("path", path), zap.Error(readErr))
		c.copyFrom(c.fallback, asset)
		return
	}

	desc := c.alloc.Realloc(nil, c.iface.descriptorSize())
	defer c.alloc.Realloc(desc, 0)

	if err := c.iface.Load(raw, desc); err != nil {
		c.logger.Error("Failed to load asset", zap.String("path", path), zap.Error(err))
		c.copyFrom(c.fallback, asset)
		return
	}
	c.merge(desc, asset)
}

func (c *Catalog) enqueue(id AssetID, path string, raw []byte, readErr error, asset []byte) {
	c.copyFrom(c.placeholder, asset)
	c.inflight[id.Index()] = struct{}{}

	c.loader.enqueue(request{
		catalog:    c,
		id:         id,
		path:       path,
		alloc:      c.alloc,
		raw:        raw,
		descriptor: c.alloc.Realloc(nil, c.iface.descriptorSize()),
		state:      statePending,
		err:        readErr,
	})
}

// complete finishes a drained request on the owning goroutine.
func (c *Catalog) complete(r *request) {
	defer r.release()

	if c.destroyed {
		return
	}
	delete(c.inflight, r.id.Index())

	asset, ok := c.table.Resolve(r.id)
	if !ok {
		panic(fmt.Sprintf("catalog: invariant violated: asset %s freed while its load was in flight", r.id))
	}

	switch r.state {
	case stateValid:
		c.merge(r.descriptor, asset)
	case stateFailed:
		c.logger.Error("Failed to load asset", zap.String("path", r.path), zap.Error(r.err))
		c.copyFrom(c.fallback, asset)
	default:
		panic(fmt.Sprintf("catalog: invariant violated: completing request in state %s", r.state))
	}
}

func (c *Catalog) merge(desc, asset []byte) {
	if c.iface.NoDescriptor {
		copy(asset, desc)
		return
	}
	c.iface.LoadComplete(desc, asset)
}

// copyFrom copies the payload of src into dst if src still resolves.
func (c *Catalog) copyFrom(src AssetID, dst []byte) {
	if data, ok := c.table.Resolve(src); ok {
		copy(dst, data)
	}
}

// AssetData returns the payload of id, or false if the handle is stale.
// The slice stays valid, at the same address, until the asset is freed.
func (c *Catalog) AssetData(id AssetID) ([]byte, bool) {
	return c.table.Resolve(id)
}

// FreeAsset releases the asset behind id and reports whether it did.
// Stale handles are ignored. The placeholder, the fallback and assets with an
// async load in flight are never freed.
func (c *Catalog) FreeAsset(id AssetID) bool {
	if _, ok := c.table.Resolve(id); !ok {
		return false
	}
	if id == c.placeholder || id == c.fallback {
		c.logger.Error("Refusing to free protected asset", zap.Stringer("id", id))
		return false
	}
	if _, busy := c.inflight[id.Index()]; busy {
		c.logger.Warn("Refusing to free asset with a load in flight", zap.Stringer("id", id))
		return false
	}

	c.table.Free(id.Index(), c.iface.Free)
	return true
}

// FreeAssetsByTag frees every asset tagged tag and returns how many were
// freed.
func (c *Catalog) FreeAssetsByTag(tag string) int {
	freed := 0
	for _, id := range c.table.Tagged(hashKey(tag)) {
		if c.FreeAsset(id) {
			freed++
		}
	}
	return freed
}

// Destroy calls Interface.Free on every live asset and releases the arena.
// Requests still in flight are discarded by the next Poll.
func (c *Catalog) Destroy() error {
	if c.destroyed {
		return nil
	}
	if c.iface.Free != nil {
		c.table.Live(func(_ AssetID, asset []byte) {
			c.iface.Free(asset)
		})
	}
	c.destroyed = true
	c.inflight = nil
	return c.table.Release()
}

// Stats describes catalog occupancy.
type Stats struct {
	Capacity       int `json:"capacity"`
	Count          int `json:"count"`
	Free           int `json:"free"`
	InFlight       int `json:"in_flight"`
	ReservedBytes  int `json:"reserved_bytes"`
	CommittedBytes int `json:"committed_bytes"`
}

// Stats returns current occupancy figures.
func (c *Catalog) Stats() Stats {
	st := c.table.Stats()
	return Stats{
		Capacity:       st.Capacity,
		Count:          st.Count,
		Free:           st.Free,
		InFlight:       len(c.inflight),
		ReservedBytes:  st.ReservedBytes,
		CommittedBytes: st.CommittedBytes,
	}
}
