// Package catalog serves texture and blob catalogs over HTTP.
//
// A Service owns one core catalog per asset kind plus the shared loader.
// All catalog calls are funnelled onto the goroutine running Service.Run,
// which also polls the loader so async loads complete there.
//
// # Kinds
//
//   - texture: 16-byte payload of width, height, format and state. Loading
//     decodes only the image header (png, jpeg, gif).
//   - blob: 16-byte payload of size, CRC-32 and state, parsed straight into
//     the slot.
//
// Every kind has a placeholder (shown while an async load is in flight) and
// a fallback (copied in when a load fails).
//
// # Routes
//
//	POST   /catalog/:kind/assets        {path, tag, async} -> {id}
//	GET    /catalog/:kind/assets/:id
//	DELETE /catalog/:kind/assets/:id
//	DELETE /catalog/:kind/tags/:tag
//	GET    /catalog/:kind/stats
package catalog
