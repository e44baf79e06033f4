package objectstore

import "strings"

// FormatBucketName prepends the prefix to the logical bucket name unless the
// name already carries it.
func FormatBucketName(prefix, bucket string) string {
	if prefix == "" || strings.HasPrefix(bucket, prefix) {
		return bucket
	}
	return prefix + bucket
}

// TrimBucketName strips the prefix from a backend bucket name, yielding the
// logical name.
func TrimBucketName(prefix, bucket string) string {
	if prefix == "" {
		return bucket
	}
	return strings.TrimPrefix(bucket, prefix)
}
