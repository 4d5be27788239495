// Package catalog implements the asset catalog: a table of named, fixed-size
// payloads addressed by generational handles and loaded from a Source either
// inline or on a shared background goroutine.
//
// # Threading
//
// A Catalog belongs to one owning goroutine. Every method, and Loader.Poll,
// must be called from it. The only code that runs elsewhere is the
// Interface.Load callback, which the Loader invokes on its background
// goroutine with nothing but the raw bytes and a descriptor buffer.
//
// # Handles
//
// FindOrLoad, FindOrMake and friends return an AssetID. Handles are plain
// values; AssetData re-checks the slot generation on every call and reports a
// miss for handles whose slot has been freed. Payload slices returned by
// AssetData live in a fixed arena and keep their address until the slot is
// freed, even as the catalog grows.
//
// # Async loads
//
//	loader := catalog.NewLoader(log)
//	textures, _ := catalog.New(loader, 4096, iface, catalog.WithSource(src))
//	id := textures.FindOrLoad(ctx, "hero.png", "level-1", true)
//	// every tick, on the owning goroutine:
//	loader.Poll()
//
// An async request shows the placeholder asset until Poll merges the loaded
// descriptor, or the fallback asset if reading or parsing failed. A failed
// load stays cached under its name; FindOrLoad on the same path returns the
// fallback-filled slot rather than retrying.
package catalog
