package slots

import (
	"fmt"

	"asset-catalog/core/arena"

	"github.com/kamstrup/intmap"
)

const minCapacity = 16

// Table is a generational slot table.
type Table struct {
	assetSize int
	maxSlots  int

	arena *arena.Arena
	data  []byte

	count    int
	capacity int

	generations []uint32
	live        []bool
	tags        []uint64
	names       []uint64
	free        []uint32

	byName *intmap.Map[uint64, uint32]
}

// New reserves room for at least reserveCount payloads of assetSize bytes.
// The reservation is rounded up to the page size and is never exceeded.
func New(assetSize, reserveCount int) (*Table, error) {
	if assetSize <= 0 {
		return nil, fmt.Errorf("slots: asset size must be positive, got %d", assetSize)
	}
	if reserveCount <= 0 {
		return nil, fmt.Errorf("slots: reserve count must be positive, got %d", reserveCount)
	}

	a, err := arena.Reserve(reserveCount * assetSize)
	if err != nil {
		return nil, err
	}

	return &Table{
		assetSize: assetSize,
		maxSlots:  a.Reserved() / assetSize,
		arena:     a,
		byName:    intmap.New[uint64, uint32](minCapacity),
	}, nil
}

// Allocate returns a handle to an unused slot, reusing a freed index when one
// is available. Non-zero name and tag hashes are recorded on the slot. The
// payload is left as-is; freed and fresh slots are already zeroed.
func (t *Table) Allocate(nameHash, tagHash uint64) ID {
	var index uint32
	if n := len(t.free); n > 0 {
		index = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		index = t.push()
	}

	t.live[index] = true
	if nameHash != 0 {
		t.names[index] = nameHash
		t.byName.Put(nameHash, index)
	}
	if tagHash != 0 {
		t.tags[index] = tagHash
	}

	return NewID(index, t.generations[index])
}

func (t *Table) push() uint32 {
	if t.count == t.capacity {
		t.grow()
	}
	index := uint32(t.count)
	t.count++
	t.generations = append(t.generations, 0)
	t.live = append(t.live, false)
	t.tags = append(t.tags, 0)
	t.names = append(t.names, 0)
	return index
}

func (t *Table) grow() {
	if t.capacity == t.maxSlots {
		panic(fmt.Sprintf("slots: invariant violated: table full at %d slots of %d bytes", t.maxSlots, t.assetSize))
	}
	newCap := min(max(t.capacity*2, minCapacity), t.maxSlots)

	t.data = t.arena.Grow(t.capacity*t.assetSize, newCap*t.assetSize)
	t.generations = growTo(t.generations, newCap)
	t.live = growTo(t.live, newCap)
	t.tags = growTo(t.tags, newCap)
	t.names = growTo(t.names, newCap)
	t.capacity = newCap
}

func growTo[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s
	}
	grown := make([]T, len(s), n)
	copy(grown, s)
	return grown
}

// Resolve returns the payload of the slot id refers to, or false when the
// handle is stale, out of range or names a slot on the free list.
func (t *Table) Resolve(id ID) ([]byte, bool) {
	index := int(id.Index())
	if id == InvalidID || index >= t.count || !t.live[index] || t.generations[index] != id.Generation() {
		return nil, false
	}
	off := index * t.assetSize
	return t.data[off : off+t.assetSize : off+t.assetSize], true
}

// Free releases the slot at index. teardown, when non-nil, sees the payload
// before it is zeroed. Freeing a slot that is not live panics.
func (t *Table) Free(index uint32, teardown func(payload []byte)) {
	if int(index) >= t.count || !t.live[index] {
		panic(fmt.Sprintf("slots: invariant violated: freeing slot %d which is not live", index))
	}
	off := int(index) * t.assetSize
	payload := t.data[off : off+t.assetSize]
	if teardown != nil {
		teardown(payload)
	}
	clear(payload)

	if name := t.names[index]; name != 0 {
		if stored, ok := t.byName.Get(name); ok && stored == index {
			t.byName.Del(name)
		}
	}

	t.generations[index]++
	t.live[index] = false
	t.tags[index] = 0
	t.names[index] = 0
	t.free = append(t.free, index)
}

// Lookup returns the live handle registered under nameHash.
func (t *Table) Lookup(nameHash uint64) (ID, bool) {
	if nameHash == 0 {
		return InvalidID, false
	}
	index, ok := t.byName.Get(nameHash)
	if !ok || t.names[index] != nameHash {
		return InvalidID, false
	}
	return NewID(index, t.generations[index]), true
}

// SetTag replaces the tag of the slot at index.
func (t *Table) SetTag(index uint32, tagHash uint64) {
	t.tags[index] = tagHash
}

// Tagged returns the live handles whose tag equals tagHash.
func (t *Table) Tagged(tagHash uint64) []ID {
	if tagHash == 0 {
		return nil
	}
	var ids []ID
	for i, tag := range t.tags {
		if tag == tagHash {
			ids = append(ids, NewID(uint32(i), t.generations[i]))
		}
	}
	return ids
}

// Live calls fn for every slot that is not on the free list.
func (t *Table) Live(fn func(id ID, payload []byte)) {
	for i := range t.count {
		if !t.live[i] {
			continue
		}
		off := i * t.assetSize
		fn(NewID(uint32(i), t.generations[i]), t.data[off:off+t.assetSize])
	}
}

// Release frees the arena and all bookkeeping. The table must not be used
// afterwards.
func (t *Table) Release() error {
	err := t.arena.Release()
	t.data = nil
	t.generations, t.live, t.tags, t.names, t.free = nil, nil, nil, nil, nil
	t.byName = nil
	t.count, t.capacity = 0, 0
	return err
}

// Stats describes table occupancy.
type Stats struct {
	Capacity       int
	Count          int
	Free           int
	ReservedBytes  int
	CommittedBytes int
}

// Stats returns current occupancy figures.
func (t *Table) Stats() Stats {
	return Stats{
		Capacity:       t.capacity,
		Count:          t.count - len(t.free),
		Free:           len(t.free),
		ReservedBytes:  t.arena.Reserved(),
		CommittedBytes: t.arena.Committed(),
	}
}
