// Package storage provides the read side of asset storage.
//
// Assets are read whole through the Source interface, which fills a buffer
// obtained from the caller's allocator. Two implementations live here:
//
//   - FileSource: a directory on an afero filesystem (OS or in-memory).
//   - ObjectSource: a bucket on S3 or MinIO, through the Client interface.
//
// The Client interface wraps the MinIO Go client so that object storage can
// be mocked in unit tests (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	src := storage.NewObjectSource(client, cfg.Storage.Bucket, "textures")
//	buf, err := src.ReadFile(ctx, "hero.png", allocator.System)
package storage
