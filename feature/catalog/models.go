package catalog

import "encoding/binary"

// Asset states stored in the last word of every payload.
const (
	StateEmpty uint32 = iota
	StatePlaceholder
	StateLoaded
	StateFallback
)

var stateNames = [...]string{"empty", "placeholder", "loaded", "fallback"}

// StateName returns the readable name of a payload state.
func StateName(s uint32) string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Image formats recognised by the texture kind.
const (
	FormatUnknown uint32 = iota
	FormatPNG
	FormatJPEG
	FormatGIF
)

var formatNames = [...]string{"unknown", "png", "jpeg", "gif"}

func formatCode(name string) uint32 {
	for i, n := range formatNames {
		if n == name {
			return uint32(i)
		}
	}
	return FormatUnknown
}

// FormatName returns the image format name for a texture format code.
func FormatName(f uint32) string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return formatNames[FormatUnknown]
}

const (
	// TextureSize is the payload size of a texture slot.
	TextureSize = 16
	// TextureDescriptorSize is the size of the header parsed by the loader.
	TextureDescriptorSize = 12
	// BlobSize is the payload size of a blob slot.
	BlobSize = 16
)

// Texture is the decoded payload of a texture slot:
// width, height, format and state as little-endian uint32.
type Texture struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Format string `json:"format"`
	State  string `json:"state"`
}

func encodeTexture(b []byte, width, height, format, state uint32) {
	binary.LittleEndian.PutUint32(b[0:], width)
	binary.LittleEndian.PutUint32(b[4:], height)
	binary.LittleEndian.PutUint32(b[8:], format)
	binary.LittleEndian.PutUint32(b[12:], state)
}

// DecodeTexture reads a texture payload.
func DecodeTexture(b []byte) Texture {
	return Texture{
		Width:  binary.LittleEndian.Uint32(b[0:]),
		Height: binary.LittleEndian.Uint32(b[4:]),
		Format: FormatName(binary.LittleEndian.Uint32(b[8:])),
		State:  StateName(binary.LittleEndian.Uint32(b[12:])),
	}
}

// Blob is the decoded payload of a blob slot:
// size as uint64, then crc32 and state as uint32, little-endian.
type Blob struct {
	Size  uint64 `json:"size"`
	CRC32 uint32 `json:"crc32"`
	State string `json:"state"`
}

func encodeBlob(b []byte, size uint64, crc, state uint32) {
	binary.LittleEndian.PutUint64(b[0:], size)
	binary.LittleEndian.PutUint32(b[8:], crc)
	binary.LittleEndian.PutUint32(b[12:], state)
}

// DecodeBlob reads a blob payload.
func DecodeBlob(b []byte) Blob {
	return Blob{
		Size:  binary.LittleEndian.Uint64(b[0:]),
		CRC32: binary.LittleEndian.Uint32(b[8:]),
		State: StateName(binary.LittleEndian.Uint32(b[12:])),
	}
}

// Asset is the view of one slot returned by the service.
type Asset struct {
	ID      uint64   `json:"id"`
	Handle  string   `json:"handle"`
	Kind    string   `json:"kind"`
	Texture *Texture `json:"texture,omitempty"`
	Blob    *Blob    `json:"blob,omitempty"`
}

// LoadRequest is the body of a load call and one manifest entry.
type LoadRequest struct {
	Path  string `json:"path"`
	Tag   string `json:"tag"`
	Async bool   `json:"async"`
}

// KindStats reports the occupancy of one kind's catalog.
type KindStats struct {
	Kind          string `json:"kind"`
	Capacity      int    `json:"capacity"`
	Count         int    `json:"count"`
	Free          int    `json:"free"`
	InFlight      int    `json:"in_flight"`
	ReservedBytes int    `json:"reserved_bytes"`
	Committed     int    `json:"committed_bytes"`
	DistinctPaths uint64 `json:"distinct_paths"`
}
