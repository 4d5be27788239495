// Package arena provides a fixed virtual-memory arena whose base address never
// moves.
//
// An Arena reserves a range of address space up front without backing it with
// physical memory. Grow commits pages inside that range as the user needs
// more room; the slice handed back always starts at the same address, so raw
// pointers into committed memory stay valid for the arena's lifetime.
//
// The reservation size is the hard ceiling. Growing past it is a configuration
// error and panics rather than returning an error.
//
// On Linux and macOS the reservation is an anonymous PROT_NONE mapping and
// commit flips pages to read/write. Other platforms fall back to a single heap
// allocation of the full reservation, which also never moves.
package arena
