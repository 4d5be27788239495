package catalog_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"asset-catalog/core/allocator"
	assetcatalog "asset-catalog/core/catalog"
	"asset-catalog/core/storage"
	"asset-catalog/feature/catalog"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newFS(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}
	return fs
}

type harness struct {
	svc    *catalog.Service
	alloc  *allocator.Tracking
	cancel context.CancelFunc
	done   chan error
	once   sync.Once
}

// stop cancels Run and waits for it to tear the catalogs down.
func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.once.Do(func() {
		h.cancel()
		select {
		case err := <-h.done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("service did not stop")
		}
	})
}

func startService(t *testing.T, fs afero.Fs, pollInterval time.Duration) *harness {
	t.Helper()

	cfg := assetcatalog.Config{
		ReserveCount:   64,
		PollIntervalMs: int(pollInterval / time.Millisecond),
	}
	alloc := allocator.NewTracking(allocator.System)
	svc, err := catalog.NewService(cfg, storage.NewFileSource(fs, ""), alloc, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{svc: svc, alloc: alloc, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- svc.Run(ctx) }()

	t.Cleanup(func() { h.stop(t) })
	return h
}

func ctxTimeout(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
