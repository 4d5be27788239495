package catalog

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	assetcatalog "asset-catalog/core/catalog"
)

const (
	KindTexture = "texture"
	KindBlob    = "blob"
)

// kind binds an asset type to its catalog callbacks and payload codec.
type kind struct {
	name  string
	iface assetcatalog.Interface
	// mark writes an empty payload carrying only state.
	mark func(asset []byte, state uint32)
	view func(asset []byte, a *Asset)
}

var errEmptyFile = errors.New("empty file")

func textureKind() kind {
	return kind{
		name: KindTexture,
		iface: assetcatalog.Interface{
			AssetSize:      TextureSize,
			DescriptorSize: TextureDescriptorSize,
			Load:           loadTexture,
			LoadComplete: func(desc, asset []byte) {
				copy(asset, desc[:TextureDescriptorSize])
				binary.LittleEndian.PutUint32(asset[12:], StateLoaded)
			},
		},
		mark: func(asset []byte, state uint32) {
			encodeTexture(asset, 0, 0, FormatUnknown, state)
		},
		view: func(asset []byte, a *Asset) {
			t := DecodeTexture(asset)
			a.Texture = &t
		},
	}
}

// loadTexture decodes only the image header.
func loadTexture(raw, desc []byte) error {
	if len(raw) == 0 {
		return errEmptyFile
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode image header: %w", err)
	}
	binary.LittleEndian.PutUint32(desc[0:], uint32(cfg.Width))
	binary.LittleEndian.PutUint32(desc[4:], uint32(cfg.Height))
	binary.LittleEndian.PutUint32(desc[8:], formatCode(format))
	return nil
}

func blobKind() kind {
	return kind{
		name: KindBlob,
		iface: assetcatalog.Interface{
			AssetSize:    BlobSize,
			NoDescriptor: true,
			Load: func(raw, desc []byte) error {
				encodeBlob(desc, uint64(len(raw)), crc32.ChecksumIEEE(raw), StateLoaded)
				return nil
			},
		},
		mark: func(asset []byte, state uint32) {
			encodeBlob(asset, 0, 0, state)
		},
		view: func(asset []byte, a *Asset) {
			b := DecodeBlob(asset)
			a.Blob = &b
		},
	}
}

func builtinKinds() []kind {
	return []kind{textureKind(), blobKind()}
}
