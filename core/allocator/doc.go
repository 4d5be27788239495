// Package allocator defines the byte allocation capability used for transient
// load buffers.
//
// Every allocation goes through a single realloc-style operation:
//
//	buf := a.Realloc(nil, n)      // allocate n bytes
//	buf = a.Realloc(buf, 2*n)     // resize, preserving the prefix
//	a.Realloc(buf, 0)             // free
//
// A buffer must always be handed back to the allocator that produced it.
//
// # Implementations
//
//   - System: plain Go heap allocations.
//   - Tracking: wraps another allocator and counts outstanding bytes, used to
//     verify that a catalog returns to its baseline after destruction.
package allocator
