package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"asset-catalog/core/allocator"
	assetcatalog "asset-catalog/core/catalog"
	"asset-catalog/core/storage"

	"github.com/axiomhq/hyperloglog"
	"go.uber.org/zap"
)

var (
	ErrUnknownKind = errors.New("catalog: unknown kind")
	ErrStopped     = errors.New("catalog: service stopped")
	ErrNotFound    = errors.New("catalog: asset not found")
	ErrNotLoadable = errors.New("catalog: kind cannot load assets")
)

const (
	placeholderName = "__placeholder__"
	fallbackName    = "__fallback__"
)

type entry struct {
	kind    kind
	catalog *assetcatalog.Catalog
	paths   *hyperloglog.Sketch
}

// Service owns the loader and one catalog per asset kind. Catalogs are not
// safe for concurrent use, so every call is executed on the goroutine running
// Run, which also drains finished loads every poll interval.
type Service struct {
	logger   *zap.Logger
	interval time.Duration
	loader   *assetcatalog.Loader
	entries  map[string]*entry

	ops      chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewService creates the catalogs for every built-in kind, each with a
// placeholder and a fallback asset. Nothing runs until Run is called.
func NewService(cfg assetcatalog.Config, source storage.Source, alloc allocator.Allocator, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		logger:   logger,
		interval: cfg.PollInterval(),
		loader:   assetcatalog.NewLoader(logger),
		entries:  make(map[string]*entry),
		ops:      make(chan func()),
		stopped:  make(chan struct{}),
	}

	for _, k := range builtinKinds() {
		opts := []assetcatalog.Option{
			assetcatalog.WithName(k.name),
			assetcatalog.WithLogger(logger),
		}
		if source != nil {
			opts = append(opts, assetcatalog.WithSource(source))
		}
		if alloc != nil {
			opts = append(opts, assetcatalog.WithAllocator(alloc))
		}

		c, err := assetcatalog.New(s.loader, cfg.ReserveCount, k.iface, opts...)
		if err != nil {
			s.shutdown()
			return nil, fmt.Errorf("failed to create %s catalog: %w", k.name, err)
		}
		s.entries[k.name] = &entry{kind: k, catalog: c, paths: hyperloglog.New16()}

		c.SetPlaceholder(s.makeMarker(k, c, placeholderName, StatePlaceholder))
		c.SetFallback(s.makeMarker(k, c, fallbackName, StateFallback))
	}

	return s, nil
}

func (s *Service) makeMarker(k kind, c *assetcatalog.Catalog, name string, state uint32) assetcatalog.AssetID {
	id := c.FindOrMake(name, "")
	data, _ := c.AssetData(id)
	k.mark(data, state)
	return id
}

// Kinds returns the registered kind names, sorted.
func (s *Service) Kinds() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run serves calls and polls the loader until ctx is done, then stops the
// loader and destroys every catalog. It returns nil on cancellation.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("Catalog service started",
		zap.Strings("kinds", s.Kinds()),
		zap.Duration("poll_interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			s.logger.Info("Catalog service stopped")
			return nil
		case op := <-s.ops:
			op()
		case <-ticker.C:
			s.loader.Poll()
		}
	}
}

// Close stops the loader and destroys every catalog. Run does the same on
// cancellation, so Close is only needed when Run never ran. Later calls
// return ErrStopped.
func (s *Service) Close() {
	s.shutdown()
}

func (s *Service) shutdown() {
	s.stopOnce.Do(func() {
		close(s.stopped)
		s.loader.Close()
		s.destroy()
	})
}

func (s *Service) destroy() {
	for name, e := range s.entries {
		if err := e.catalog.Destroy(); err != nil {
			s.logger.Error("Failed to destroy catalog", zap.String("kind", name), zap.Error(err))
		}
	}
}

// do runs fn on the owner goroutine and waits for it.
func (s *Service) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	op := func() {
		defer close(done)
		fn()
	}

	select {
	case s.ops <- op:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// withEntry runs fn on the owner goroutine with the entry for kind.
func (s *Service) withEntry(ctx context.Context, kindName string, fn func(e *entry)) error {
	e, ok := s.entries[kindName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kindName)
	}
	return s.do(ctx, func() { fn(e) })
}

// Load returns the id of the asset at path, loading it on first use.
// With async set the asset shows the placeholder until the next poll.
func (s *Service) Load(ctx context.Context, kindName string, req LoadRequest) (uint64, error) {
	var id assetcatalog.AssetID
	err := s.withEntry(ctx, kindName, func(e *entry) {
		e.paths.Insert([]byte(req.Path))
		id = e.catalog.FindOrLoad(ctx, req.Path, req.Tag, req.Async)
	})
	if err != nil {
		return 0, err
	}
	if !id.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrNotLoadable, kindName)
	}
	return uint64(id), nil
}

// Get returns a decoded copy of the asset, or ErrNotFound for stale ids.
func (s *Service) Get(ctx context.Context, kindName string, id uint64) (Asset, error) {
	var (
		asset Asset
		found bool
	)
	err := s.withEntry(ctx, kindName, func(e *entry) {
		handle := assetcatalog.AssetID(id)
		data, ok := e.catalog.AssetData(handle)
		if !ok {
			return
		}
		found = true
		asset = Asset{ID: id, Handle: handle.String(), Kind: kindName}
		e.kind.view(data, &asset)
	})
	if err != nil {
		return Asset{}, err
	}
	if !found {
		return Asset{}, ErrNotFound
	}
	return asset, nil
}

// Free releases an asset and reports whether it was freed. Stale ids,
// protected assets and assets with a load in flight are left alone.
func (s *Service) Free(ctx context.Context, kindName string, id uint64) (bool, error) {
	var freed bool
	err := s.withEntry(ctx, kindName, func(e *entry) {
		freed = e.catalog.FreeAsset(assetcatalog.AssetID(id))
	})
	return freed, err
}

// FreeTag releases every asset carrying tag and returns how many were freed.
func (s *Service) FreeTag(ctx context.Context, kindName, tag string) (int, error) {
	var n int
	err := s.withEntry(ctx, kindName, func(e *entry) {
		n = e.catalog.FreeAssetsByTag(tag)
	})
	return n, err
}

// Stats reports the occupancy of a kind's catalog.
func (s *Service) Stats(ctx context.Context, kindName string) (KindStats, error) {
	var out KindStats
	err := s.withEntry(ctx, kindName, func(e *entry) {
		st := e.catalog.Stats()
		out = KindStats{
			Kind:          kindName,
			Capacity:      st.Capacity,
			Count:         st.Count,
			Free:          st.Free,
			InFlight:      st.InFlight,
			ReservedBytes: st.ReservedBytes,
			Committed:     st.CommittedBytes,
			DistinctPaths: e.paths.Estimate(),
		}
	})
	return out, err
}

// WaitIdle blocks until every async load has been completed by a poll.
func (s *Service) WaitIdle(ctx context.Context) error {
	for {
		var idle bool
		if err := s.do(ctx, func() { idle = s.loader.Queued() == 0 }); err != nil {
			return err
		}
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopped:
			return ErrStopped
		case <-time.After(s.interval):
		}
	}
}
