package catalog

import "asset-catalog/core/allocator"

type requestState uint8

const (
	statePending requestState = iota
	stateValid
	stateFailed
	stateHandled
)

func (s requestState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateValid:
		return "valid"
	case stateFailed:
		return "failed"
	case stateHandled:
		return "handled"
	}
	return "unknown"
}

// request is one async load. The owning goroutine creates it as pending, the
// loader goroutine moves it to valid or failed, and Poll marks it handled.
// All state reads and writes happen under Loader.mu.
type request struct {
	catalog    *Catalog
	id         AssetID
	path       string
	alloc      allocator.Allocator
	raw        []byte
	descriptor []byte
	state      requestState
	err        error
}

// release returns the transient buffers to the allocator that produced them.
func (r *request) release() {
	r.raw = r.alloc.Realloc(r.raw, 0)
	r.descriptor = r.alloc.Realloc(r.descriptor, 0)
}
