package allocator

import "sync/atomic"

// Allocator allocates, resizes and frees byte buffers.
type Allocator interface {
	// Realloc allocates when old is nil, frees when newSize is 0 and resizes
	// otherwise. The returned slice has length newSize.
	Realloc(old []byte, newSize int) []byte
}

type system struct{}

// System is the Go heap allocator.
var System Allocator = system{}

func (system) Realloc(old []byte, newSize int) []byte {
	if newSize == 0 {
		return nil
	}
	if newSize <= cap(old) {
		buf := old[:newSize]
		if newSize > len(old) {
			clear(buf[len(old):])
		}
		return buf
	}
	buf := make([]byte, newSize)
	copy(buf, old)
	return buf
}

// Tracking counts the bytes and buffers handed out by a backing allocator.
// It is safe for concurrent use if the backing allocator is.
type Tracking struct {
	backing     Allocator
	outstanding atomic.Int64
	live        atomic.Int64
}

// NewTracking wraps backing. A nil backing uses System.
func NewTracking(backing Allocator) *Tracking {
	if backing == nil {
		backing = System
	}
	return &Tracking{backing: backing}
}

// Realloc implements Allocator.
func (t *Tracking) Realloc(old []byte, newSize int) []byte {
	buf := t.backing.Realloc(old, newSize)

	t.outstanding.Add(int64(newSize - len(old)))
	switch {
	case old == nil && newSize > 0:
		t.live.Add(1)
	case old != nil && newSize == 0:
		t.live.Add(-1)
	}
	return buf
}

// Outstanding returns the number of bytes currently allocated.
func (t *Tracking) Outstanding() int64 {
	return t.outstanding.Load()
}

// Live returns the number of buffers that have not been freed.
func (t *Tracking) Live() int64 {
	return t.live.Load()
}
