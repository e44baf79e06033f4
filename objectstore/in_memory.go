package objectstore

import (
	"context"
	"sync"
	"time"

	"github.com/croften/opskit/core"
)

// InMemory is a trivial in-process ObjectStore implementation useful for
// tests, examples and single-process prototypes. It keeps all objects in a
// nested map guarded by an RWMutex. Data is copied on put / get to avoid
// accidental external mutation of internal buffers.
//
// Layout: bucket -> object name -> bytes + modification time
//
// This implementation is intentionally minimal; it does not enforce retention
// limits, size quotas, or eviction. For production, prefer the MinIO backed
// implementation that can scale and survive process restarts.
type InMemory struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
}

type object struct {
	data     []byte
	modified time.Time
}

// NewInMemory returns an empty in-memory object store.
func NewInMemory() *InMemory {
	return &InMemory{buckets: make(map[string]map[string]object)}
}

// Buckets lists the bucket names in unspecified order.
func (s *InMemory) Buckets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.buckets))
	for name := range s.buckets {
		names = append(names, name)
	}
	return names, nil
}

// CreateBucket creates the bucket if absent. Creating an existing bucket is
// a no-op.
func (s *InMemory) CreateBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.buckets[bucket]; !exists {
		s.buckets[bucket] = make(map[string]object)
	}
	return nil
}

// RemoveBucket deletes the bucket and everything in it, or returns
// ErrBucketNotFound.
func (s *InMemory) RemoveBucket(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.buckets[bucket]; !exists {
		return ErrBucketNotFound
	}
	delete(s.buckets, bucket)
	return nil
}

// Objects lists the objects in the bucket or returns ErrBucketNotFound.
func (s *InMemory) Objects(_ context.Context, bucket string) ([]core.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.buckets[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}
	infos := make([]core.ObjectInfo, 0, len(m))
	for name, obj := range m {
		infos = append(infos, core.ObjectInfo{Name: name, Size: int64(len(obj.data)), Modified: obj.modified})
	}
	return infos, nil
}

// Put stores (or overwrites) the object bytes, creating the bucket lazily.
// The input slice is copied before storage.
func (s *InMemory) Put(_ context.Context, bucket, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.buckets[bucket]
	if !ok {
		m = make(map[string]object)
		s.buckets[bucket] = m
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m[name] = object{data: cp, modified: time.Now()}
	return nil
}

// Get returns a copy of the stored object bytes or ErrNotFound.
func (s *InMemory) Get(_ context.Context, bucket, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.buckets[bucket]
	if !ok {
		return nil, ErrBucketNotFound
	}
	obj, ok := m[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

// Remove deletes the object if present or returns ErrNotFound.
func (s *InMemory) Remove(_ context.Context, bucket, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.buckets[bucket]
	if !ok {
		return ErrBucketNotFound
	}
	if _, ok := m[name]; !ok {
		return ErrNotFound
	}
	delete(m, name)
	return nil
}

// BucketSize sums the stored object sizes or returns ErrBucketNotFound.
func (s *InMemory) BucketSize(_ context.Context, bucket string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.buckets[bucket]
	if !ok {
		return 0, ErrBucketNotFound
	}
	var total int64
	for _, obj := range m {
		total += int64(len(obj.data))
	}
	return total, nil
}
