package catalog_test

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"asset-catalog/core/allocator"
	"asset-catalog/core/catalog"
	"asset-catalog/core/storage"

	"github.com/stretchr/testify/require"
)

// memSource is an in-memory Source that counts reads per path.
type memSource struct {
	mu    sync.Mutex
	files map[string][]byte
	reads map[string]int
}

func newMemSource(files map[string]string) *memSource {
	s := &memSource{files: make(map[string][]byte), reads: make(map[string]int)}
	for k, v := range files {
		s.files[k] = []byte(v)
	}
	return s
}

func (s *memSource) ReadFile(_ context.Context, path string, a allocator.Allocator) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[path]++
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	buf := a.Realloc(nil, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *memSource) Reads(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[path]
}

var errBadAsset = errors.New("bad asset")

// u32Interface parses files of the form "value:<n>" and stores n as a
// little-endian uint32.
func u32Interface() catalog.Interface {
	return catalog.Interface{
		AssetSize:      4,
		DescriptorSize: 4,
		Load: func(raw, desc []byte) error {
			v, ok := parseValue(raw)
			if !ok {
				return errBadAsset
			}
			binary.LittleEndian.PutUint32(desc, v)
			return nil
		},
		LoadComplete: func(desc, asset []byte) {
			copy(asset, desc)
		},
	}
}

func parseValue(raw []byte) (uint32, bool) {
	const prefix = "value:"
	if len(raw) <= len(prefix) || string(raw[:len(prefix)]) != prefix {
		return 0, false
	}
	var v uint32
	for _, c := range raw[len(prefix):] {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint32(c-'0')
	}
	return v, true
}

func newLoader(t *testing.T) *catalog.Loader {
	t.Helper()
	l := catalog.NewLoader(nil)
	t.Cleanup(l.Close)
	return l
}

func newCatalog(t *testing.T, l *catalog.Loader, iface catalog.Interface, opts ...catalog.Option) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(l, 256, iface, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Destroy() })
	return c
}

// makeValue creates an anonymous-style named asset holding v.
func makeValue(t *testing.T, c *catalog.Catalog, name string, v uint32) catalog.AssetID {
	t.Helper()
	id := c.FindOrMake(name, "")
	data, ok := c.AssetData(id)
	require.True(t, ok)
	binary.LittleEndian.PutUint32(data, v)
	return id
}

func value(t *testing.T, c *catalog.Catalog, id catalog.AssetID) uint32 {
	t.Helper()
	data, ok := c.AssetData(id)
	require.True(t, ok, "handle %s does not resolve", id)
	return binary.LittleEndian.Uint32(data)
}

// pollUntil ticks the loader from the test goroutine, which owns the
// catalogs, until cond holds.
func pollUntil(t *testing.T, l *catalog.Loader, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		l.Poll()
		time.Sleep(time.Millisecond)
	}
}
