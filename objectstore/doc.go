// Package objectstore contains concrete implementations of core.ObjectStore.
//
// The canonical ObjectStore interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Implementation
// packages like this one (in-memory, MinIO/S3) provide storage backends that
// can be swapped without touching calling code.
//
// Buckets carry an optional logical prefix: FormatBucketName prepends it
// unless already present, and listings strip it again, so callers only ever
// see logical names. Callers should depend on the core interface rather than
// concrete types so they can substitute alternative backends in tests or
// production.
package objectstore
