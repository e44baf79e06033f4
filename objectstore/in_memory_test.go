package objectstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/croften/opskit/core"
)

// Interface compliance (compile-time assertions)
var _ core.ObjectStore = (*InMemory)(nil)

func TestInMemoryPutGetIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	data := []byte("hello")
	if err := store.Put(ctx, "b1", "o1", data); err != nil {
		t.Fatalf("put: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := store.Get(ctx, "b1", "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := store.Get(ctx, "b1", "o1")
	if string(out2) != "hello" { // original stored should be unchanged
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestInMemoryObjectsAndRemove(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	if err := store.Put(ctx, "b1", "o1", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "b1", "o2", []byte("22")); err != nil {
		t.Fatal(err)
	}
	infos, err := store.Objects(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(infos))
	}
	size, err := store.BucketSize(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if size != 3 {
		t.Fatalf("expected bucket size 3, got %d", size)
	}
	if err := store.Remove(ctx, "b1", "o1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "b1", "o1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for removed object, got %v", err)
	}
	infos, _ = store.Objects(ctx, "b1")
	if len(infos) != 1 {
		t.Fatalf("expected 1 object after remove, got %d", len(infos))
	}
}

func TestInMemoryBucketLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	if err := store.CreateBucket(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	buckets, err := store.Buckets(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(buckets) != 1 || buckets[0] != "b1" {
		t.Fatalf("unexpected bucket listing %v", buckets)
	}
	if err := store.RemoveBucket(ctx, "b1"); err != nil {
		t.Fatalf("remove bucket: %v", err)
	}
	if err := store.RemoveBucket(ctx, "b1"); !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound, got %v", err)
	}
	if _, err := store.Objects(ctx, "b1"); !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound from Objects, got %v", err)
	}
}

func TestInMemoryConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("o%d", i%10)
			if err := store.Put(ctx, "b1", name, []byte("data")); err != nil {
				t.Errorf("put err: %v", err)
			}
			_, _ = store.Objects(ctx, "b1")
		}()
	}
	wg.Wait()
	infos, err := store.Objects(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) == 0 {
		t.Fatalf("expected some objects, got 0")
	}
}

func TestFormatBucketName(t *testing.T) {
	cases := []struct {
		prefix, bucket, want string
	}{
		{"p--", "reports", "p--reports"},
		{"p--", "p--reports", "p--reports"},
		{"", "reports", "reports"},
	}
	for _, c := range cases {
		if got := FormatBucketName(c.prefix, c.bucket); got != c.want {
			t.Errorf("FormatBucketName(%q, %q) = %q, want %q", c.prefix, c.bucket, got, c.want)
		}
	}
	if got := TrimBucketName("p--", "p--reports"); got != "reports" {
		t.Errorf("TrimBucketName = %q, want reports", got)
	}
}
