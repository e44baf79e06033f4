package core

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object in a bucket listing.
type ObjectInfo struct {
	Name     string
	Size     int64
	Modified time.Time
}

// ObjectStore defines bucket and object operations against an S3 compatible
// backend. Implementations should be thread-safe. Bucket names passed in are
// logical names; implementations may apply a configured prefix before talking
// to the backend and strip it again in listings.
type ObjectStore interface {
	// Buckets lists the logical bucket names visible to this store.
	Buckets(ctx context.Context) ([]string, error)

	// CreateBucket creates the bucket if it does not already exist.
	CreateBucket(ctx context.Context, bucket string) error

	// RemoveBucket deletes the bucket and every object it contains.
	RemoveBucket(ctx context.Context, bucket string) error

	// Objects lists all objects in the bucket. Implementations follow
	// backend continuation tokens internally so the result is complete.
	Objects(ctx context.Context, bucket string) ([]ObjectInfo, error)

	// Put stores (or overwrites) the object bytes under the given name.
	Put(ctx context.Context, bucket, name string, data []byte) error

	// Get returns the object bytes.
	Get(ctx context.Context, bucket, name string) ([]byte, error)

	// Remove deletes the object.
	Remove(ctx context.Context, bucket, name string) error

	// BucketSize returns the sum of all object sizes in the bucket.
	BucketSize(ctx context.Context, bucket string) (int64, error)
}
