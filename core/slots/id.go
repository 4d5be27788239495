package slots

import "fmt"

// ID packs a 32-bit slot index in the lower bits and a 32-bit generation in
// the upper bits.
type ID uint64

// InvalidID is the sentinel handle. It never resolves.
const InvalidID ID = ^ID(0)

// NewID builds an ID from its parts.
func NewID(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (id ID) Index() uint32 { return uint32(id) }

// Generation returns the generation the slot had when the handle was issued.
func (id ID) Generation() uint32 { return uint32(id >> 32) }

// Valid reports whether id is not InvalidID. A valid handle may still be stale.
func (id ID) Valid() bool { return id != InvalidID }

// String formats the handle as index:generation.
func (id ID) String() string {
	if id == InvalidID {
		return "invalid"
	}
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}
