package arena

import (
	"fmt"
	"unsafe"
)

// Arena is a fixed reservation of virtual memory.
// It is not safe for concurrent use.
type Arena struct {
	mem       []byte
	committed int
	pageSize  int
}

// Reserve reserves at least size bytes of address space, rounded up to the
// page size. No memory is committed.
func Reserve(size int) (*Arena, error) {
	if size < 0 {
		return nil, fmt.Errorf("arena: negative reservation %d", size)
	}
	ps := PageSize()
	size = AlignUp(max(size, 1), ps)

	mem, err := reserve(size)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", size, err)
	}

	return &Arena{mem: mem, pageSize: ps}, nil
}

// Grow makes the first newSize bytes of the arena usable and returns them.
// The returned slice always starts at the arena's base address. A newSize of
// zero releases the whole reservation and returns nil.
//
// Grow panics if newSize exceeds the reservation.
func (a *Arena) Grow(oldSize, newSize int) []byte {
	if newSize == 0 {
		if err := a.Release(); err != nil {
			panic(fmt.Sprintf("arena: release failed: %v", err))
		}
		return nil
	}
	if a.mem == nil {
		panic("arena: invariant violated: grow after release")
	}
	if oldSize > a.committed {
		panic(fmt.Sprintf("arena: invariant violated: old size %d exceeds committed %d", oldSize, a.committed))
	}
	if newSize > len(a.mem) {
		panic(fmt.Sprintf("arena: invariant violated: grow to %d bytes exceeds reservation of %d bytes", newSize, len(a.mem)))
	}

	if want := AlignUp(newSize, a.pageSize); want > a.committed {
		if err := commit(a.mem[a.committed:want]); err != nil {
			panic(fmt.Sprintf("arena: commit %d bytes: %v", want-a.committed, err))
		}
		a.committed = want
	}

	return a.mem[:newSize:newSize]
}

// Release returns the whole reservation to the operating system. Slices
// obtained from Grow must not be used afterwards.
func (a *Arena) Release() error {
	if a.mem == nil {
		return nil
	}
	mem := a.mem
	a.mem = nil
	a.committed = 0
	return release(mem)
}

// Base returns the address of the first byte of the reservation, or 0 once
// released.
func (a *Arena) Base() uintptr {
	if a.mem == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.mem)))
}

// Reserved returns the reservation size in bytes.
func (a *Arena) Reserved() int { return len(a.mem) }

// Committed returns the number of committed bytes, always page aligned.
func (a *Arena) Committed() int { return a.committed }

// AlignUp rounds n up to a multiple of align, which must be a power of two.
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
