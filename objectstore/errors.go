package objectstore

import "fmt"

var (
	// ErrNotFound is returned when an object for the given bucket / name
	// pair does not exist in the underlying store.
	ErrNotFound = fmt.Errorf("object not found")

	// ErrBucketNotFound is returned when the bucket itself does not exist.
	ErrBucketNotFound = fmt.Errorf("bucket not found")
)
