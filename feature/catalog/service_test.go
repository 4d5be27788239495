package catalog_test

import (
	"context"
	"hash/crc32"
	"testing"
	"time"

	"asset-catalog/core/allocator"
	assetcatalog "asset-catalog/core/catalog"
	"asset-catalog/core/storage"
	"asset-catalog/feature/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SyncLoad(t *testing.T) {
	h := startService(t, newFS(t, map[string][]byte{
		"ui/button.png":  pngBytes(t, 32, 16),
		"data/level.bin": []byte("level data"),
	}), 5*time.Millisecond)
	ctx := ctxTimeout(t)

	t.Run("Texture", func(t *testing.T) {
		id, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "ui/button.png"})
		require.NoError(t, err)

		asset, err := h.svc.Get(ctx, catalog.KindTexture, id)
		require.NoError(t, err)
		assert.Equal(t, &catalog.Texture{Width: 32, Height: 16, Format: "png", State: "loaded"}, asset.Texture)
		assert.Nil(t, asset.Blob)
		assert.Equal(t, assetcatalog.AssetID(id).String(), asset.Handle)
	})

	t.Run("Blob", func(t *testing.T) {
		id, err := h.svc.Load(ctx, catalog.KindBlob, catalog.LoadRequest{Path: "data/level.bin"})
		require.NoError(t, err)

		asset, err := h.svc.Get(ctx, catalog.KindBlob, id)
		require.NoError(t, err)
		assert.Equal(t, &catalog.Blob{
			Size:  10,
			CRC32: crc32.ChecksumIEEE([]byte("level data")),
			State: "loaded",
		}, asset.Blob)
	})

	t.Run("MissingFallsBack", func(t *testing.T) {
		id, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "nope.png"})
		require.NoError(t, err)

		asset, err := h.svc.Get(ctx, catalog.KindTexture, id)
		require.NoError(t, err)
		assert.Equal(t, "fallback", asset.Texture.State)
	})

	t.Run("SameIDOnHit", func(t *testing.T) {
		a, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "ui/button.png"})
		require.NoError(t, err)
		b, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "ui/button.png", Async: true})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestService_AsyncLoad(t *testing.T) {
	fs := newFS(t, map[string][]byte{"big.png": pngBytes(t, 64, 48)})

	t.Run("PlaceholderUntilPolled", func(t *testing.T) {
		h := startService(t, fs, time.Hour)
		ctx := ctxTimeout(t)

		id, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "big.png", Async: true})
		require.NoError(t, err)

		asset, err := h.svc.Get(ctx, catalog.KindTexture, id)
		require.NoError(t, err)
		assert.Equal(t, "placeholder", asset.Texture.State)

		st, err := h.svc.Stats(ctx, catalog.KindTexture)
		require.NoError(t, err)
		assert.Equal(t, 1, st.InFlight)

		freed, err := h.svc.Free(ctx, catalog.KindTexture, id)
		require.NoError(t, err)
		assert.False(t, freed, "in-flight asset must not be freed")
	})

	t.Run("CompletedByPoll", func(t *testing.T) {
		h := startService(t, fs, time.Millisecond)
		ctx := ctxTimeout(t)

		id, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: "big.png", Async: true})
		require.NoError(t, err)
		require.NoError(t, h.svc.WaitIdle(ctx))

		asset, err := h.svc.Get(ctx, catalog.KindTexture, id)
		require.NoError(t, err)
		assert.Equal(t, &catalog.Texture{Width: 64, Height: 48, Format: "png", State: "loaded"}, asset.Texture)
	})
}

func TestService_Free(t *testing.T) {
	h := startService(t, newFS(t, map[string][]byte{
		"a.bin": []byte("a"),
		"b.bin": []byte("b"),
		"c.bin": []byte("c"),
	}), 5*time.Millisecond)
	ctx := ctxTimeout(t)

	load := func(path, tag string) uint64 {
		id, err := h.svc.Load(ctx, catalog.KindBlob, catalog.LoadRequest{Path: path, Tag: tag})
		require.NoError(t, err)
		return id
	}
	a := load("a.bin", "level1")
	b := load("b.bin", "level1")
	c := load("c.bin", "shared")

	freed, err := h.svc.Free(ctx, catalog.KindBlob, c)
	require.NoError(t, err)
	assert.True(t, freed)

	_, err = h.svc.Get(ctx, catalog.KindBlob, c)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	freed, err = h.svc.Free(ctx, catalog.KindBlob, c)
	require.NoError(t, err)
	assert.False(t, freed, "stale id")

	n, err := h.svc.FreeTag(ctx, catalog.KindBlob, "level1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []uint64{a, b} {
		_, err := h.svc.Get(ctx, catalog.KindBlob, id)
		assert.ErrorIs(t, err, catalog.ErrNotFound)
	}

	// Placeholder and fallback survive.
	st, err := h.svc.Stats(ctx, catalog.KindBlob)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Count)
}

func TestService_Stats(t *testing.T) {
	h := startService(t, newFS(t, nil), 5*time.Millisecond)
	ctx := ctxTimeout(t)

	for _, p := range []string{"x", "y", "x", "z", "y"} {
		_, err := h.svc.Load(ctx, catalog.KindBlob, catalog.LoadRequest{Path: p})
		require.NoError(t, err)
	}

	st, err := h.svc.Stats(ctx, catalog.KindBlob)
	require.NoError(t, err)
	assert.Equal(t, catalog.KindBlob, st.Kind)
	assert.Equal(t, 64, st.Capacity)
	assert.Equal(t, 5, st.Count)
	assert.Equal(t, uint64(3), st.DistinctPaths)
	assert.Positive(t, st.Committed)
}

func TestService_Errors(t *testing.T) {
	h := startService(t, newFS(t, nil), 5*time.Millisecond)
	ctx := ctxTimeout(t)

	_, err := h.svc.Load(ctx, "mesh", catalog.LoadRequest{Path: "a"})
	assert.ErrorIs(t, err, catalog.ErrUnknownKind)

	_, err = h.svc.Get(ctx, catalog.KindTexture, uint64(assetcatalog.InvalidID))
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	assert.Equal(t, []string{catalog.KindBlob, catalog.KindTexture}, h.svc.Kinds())

	h.stop(t)
	_, err = h.svc.Stats(ctx, catalog.KindBlob)
	assert.ErrorIs(t, err, catalog.ErrStopped)
	assert.ErrorIs(t, h.svc.WaitIdle(ctx), catalog.ErrStopped)
}

func TestService_CanceledCall(t *testing.T) {
	h := startService(t, newFS(t, nil), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.svc.Stats(ctx, catalog.KindBlob)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestService_NoLeaks(t *testing.T) {
	h := startService(t, newFS(t, map[string][]byte{
		"a.png": pngBytes(t, 2, 2),
		"b.png": []byte("broken"),
	}), time.Millisecond)
	ctx := ctxTimeout(t)

	for _, p := range []string{"a.png", "b.png", "missing.png"} {
		_, err := h.svc.Load(ctx, catalog.KindTexture, catalog.LoadRequest{Path: p, Async: true})
		require.NoError(t, err)
	}
	require.NoError(t, h.svc.WaitIdle(ctx))
	h.stop(t)

	assert.Zero(t, h.alloc.Outstanding())
	assert.Zero(t, h.alloc.Live())
}

func TestNewService_InvalidConfig(t *testing.T) {
	_, err := catalog.NewService(assetcatalog.Config{ReserveCount: 0}, nil, nil, nil)
	assert.Error(t, err)
}

func TestService_CloseWithoutRun(t *testing.T) {
	fs := newFS(t, map[string][]byte{"a.bin": []byte("a")})
	alloc := allocator.NewTracking(allocator.System)
	svc, err := catalog.NewService(assetcatalog.Config{ReserveCount: 8, PollIntervalMs: 1},
		storage.NewFileSource(fs, ""), alloc, nil)
	require.NoError(t, err)

	svc.Close()
	svc.Close()

	ctx := ctxTimeout(t)
	_, err = svc.Load(ctx, catalog.KindBlob, catalog.LoadRequest{Path: "a.bin"})
	assert.ErrorIs(t, err, catalog.ErrStopped)

	// Run after Close exits immediately once its context ends.
	runCtx, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, svc.Run(runCtx))
}
