// Package s3 provides a core.ObjectStore backed by an S3 compatible endpoint
// (MinIO or AWS S3) through the MinIO client. Bucket names are namespaced
// with a configurable prefix so multiple deployments can share one endpoint.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/croften/opskit/core"
	"github.com/croften/opskit/logging"
	"github.com/croften/opskit/objectstore"
)

// Options configures the S3 store.
type Options struct {
	// Endpoint is the host:port of the S3 compatible service (no scheme).
	Endpoint string

	// AccessKey / SecretKey are the static credentials.
	AccessKey string
	SecretKey string

	// Region for signing and bucket creation.
	Region string

	// BucketPrefix namespaces every bucket this store touches.
	BucketPrefix string

	// UseSSL selects https transport.
	UseSSL bool

	// Logger receives operation diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger

	// Client overrides the MinIO client entirely (tests).
	Client *minio.Client
}

// Store implements core.ObjectStore on top of a MinIO client.
type Store struct {
	client *minio.Client
	region string
	prefix string
	logger logging.Logger
}

// Interface compliance (compile-time assertion)
var _ core.ObjectStore = (*Store)(nil)

// New creates an S3 store. Client construction failures (bad endpoint,
// missing credentials) are configuration errors.
func New(optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		if opts.Endpoint == "" {
			return nil, core.NewConfigError("object store endpoint is required", nil)
		}
		var err error
		client, err = minio.New(opts.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
			Secure: opts.UseSSL,
			Region: opts.Region,
		})
		if err != nil {
			return nil, core.NewConfigError("build object store client", err)
		}
	}

	return &Store{
		client: client,
		region: opts.Region,
		prefix: opts.BucketPrefix,
		logger: opts.Logger,
	}, nil
}

func (s *Store) bucketName(bucket string) string {
	return objectstore.FormatBucketName(s.prefix, bucket)
}

// Buckets lists the logical names of buckets carrying the configured prefix.
func (s *Store) Buckets(ctx context.Context) ([]string, error) {
	infos, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if s.prefix != "" && objectstore.TrimBucketName(s.prefix, info.Name) == info.Name {
			continue // not ours
		}
		names = append(names, objectstore.TrimBucketName(s.prefix, info.Name))
	}
	return names, nil
}

// CreateBucket creates the bucket. Creating an existing bucket owned by the
// caller is a no-op.
func (s *Store) CreateBucket(ctx context.Context, bucket string) error {
	name := s.bucketName(bucket)
	err := s.client.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		exists, errCheck := s.client.BucketExists(ctx, name)
		if errCheck == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket %q: %w", name, err)
	}
	s.logger.Debug("bucket created", "bucket", name)
	return nil
}

// RemoveBucket deletes every contained object, then the bucket itself.
func (s *Store) RemoveBucket(ctx context.Context, bucket string) error {
	infos, err := s.Objects(ctx, bucket)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if err := s.Remove(ctx, bucket, info.Name); err != nil {
			return err
		}
	}
	name := s.bucketName(bucket)
	if err := s.client.RemoveBucket(ctx, name); err != nil {
		return mapError(fmt.Errorf("remove bucket %q: %w", name, err))
	}
	s.logger.Debug("bucket removed", "bucket", name)
	return nil
}

// Objects lists all objects in the bucket. The MinIO client follows listing
// continuation internally, so the result is complete.
func (s *Store) Objects(ctx context.Context, bucket string) ([]core.ObjectInfo, error) {
	name := s.bucketName(bucket)
	var infos []core.ObjectInfo
	for obj := range s.client.ListObjects(ctx, name, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, mapError(fmt.Errorf("list objects in %q: %w", name, obj.Err))
		}
		infos = append(infos, core.ObjectInfo{Name: obj.Key, Size: obj.Size, Modified: obj.LastModified})
	}
	return infos, nil
}

// Put stores (or overwrites) the object bytes.
func (s *Store) Put(ctx context.Context, bucket, name string, data []byte) error {
	bn := s.bucketName(bucket)
	_, err := s.client.PutObject(ctx, bn, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return mapError(fmt.Errorf("put object %q to %q: %w", name, bn, err))
	}
	return nil
}

// Get returns the object bytes.
func (s *Store) Get(ctx context.Context, bucket, name string) ([]byte, error) {
	bn := s.bucketName(bucket)
	obj, err := s.client.GetObject(ctx, bn, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(fmt.Errorf("get object %q from %q: %w", name, bn, err))
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapError(fmt.Errorf("read object %q from %q: %w", name, bn, err))
	}
	return data, nil
}

// Remove deletes the object.
func (s *Store) Remove(ctx context.Context, bucket, name string) error {
	bn := s.bucketName(bucket)
	if err := s.client.RemoveObject(ctx, bn, name, minio.RemoveObjectOptions{}); err != nil {
		return mapError(fmt.Errorf("remove object %q from %q: %w", name, bn, err))
	}
	return nil
}

// BucketSize sums the object sizes in the bucket.
func (s *Store) BucketSize(ctx context.Context, bucket string) (int64, error) {
	infos, err := s.Objects(ctx, bucket)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, info := range infos {
		total += info.Size
	}
	return total, nil
}

// mapError folds backend "does not exist" responses into the package
// sentinels so callers can branch without inspecting MinIO types.
func mapError(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return fmt.Errorf("%w: %v", objectstore.ErrNotFound, err)
	case "NoSuchBucket":
		return fmt.Errorf("%w: %v", objectstore.ErrBucketNotFound, err)
	}
	return err
}
