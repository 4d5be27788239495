// Package slots implements a generational slot table over a fixed arena.
//
// A Table maps three addressing schemes onto the same rows: a stable ID
// (index plus generation), a 64-bit name hash and a 64-bit tag hash. Payloads
// live in a flat arena buffer, assetSize bytes per slot, so the address of a
// slot's payload never changes while the slot is alive.
//
// Freeing a slot bumps its generation, which invalidates every ID issued for
// the previous occupant. Freed indices are recycled through a free list.
//
// A Table is not safe for concurrent use.
package slots
