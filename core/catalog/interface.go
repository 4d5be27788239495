package catalog

import "asset-catalog/core/slots"

// AssetID is a generational handle to a catalog slot.
type AssetID = slots.ID

// InvalidID never resolves.
const InvalidID = slots.InvalidID

// Interface describes one asset type.
type Interface struct {
	// AssetSize is the payload size of every slot, in bytes.
	AssetSize int
	// DescriptorSize is the size of the buffer Load fills. Ignored when
	// NoDescriptor is set.
	DescriptorSize int
	// NoDescriptor makes the descriptor share the asset layout. Load then
	// fills an AssetSize buffer that is copied into the slot verbatim and
	// LoadComplete is not needed.
	NoDescriptor bool

	// Load parses raw file bytes into descriptor. It may run on the loader
	// goroutine and must not touch any catalog.
	Load func(raw, descriptor []byte) error
	// LoadComplete merges a descriptor into a live asset on the owning
	// goroutine. It may call back into the catalog.
	LoadComplete func(descriptor, asset []byte)
	// Free releases whatever an asset refers to before its slot is zeroed.
	// Optional.
	Free func(asset []byte)
}

func (i Interface) canLoad() bool {
	return i.Load != nil && (i.NoDescriptor || i.LoadComplete != nil)
}

func (i Interface) descriptorSize() int {
	if i.NoDescriptor {
		return i.AssetSize
	}
	return i.DescriptorSize
}
