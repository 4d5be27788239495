package storage

import (
	"context"
	"fmt"
	"path"

	"asset-catalog/core/allocator"

	"github.com/minio/minio-go/v7"
)

// ObjectSource reads assets from an object storage bucket.
type ObjectSource struct {
	client Client
	bucket string
	prefix string
}

// NewObjectSource serves objects under prefix in bucket.
func NewObjectSource(client Client, bucket, prefix string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket, prefix: prefix}
}

// ReadFile implements Source.
func (s *ObjectSource) ReadFile(ctx context.Context, name string, a allocator.Allocator) ([]byte, error) {
	key := name
	if s.prefix != "" {
		key = path.Join(s.prefix, name)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError(key, err)
	}
	defer obj.Close()

	data, err := ReadAll(obj, 0, a)
	if err != nil {
		return nil, objectError(key, err)
	}
	return data, nil
}

func objectError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("get object %s: %w", key, ErrNotFound)
	}
	return fmt.Errorf("get object %s: %w", key, err)
}
