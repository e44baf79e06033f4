// Package core provides the foundational domain types, contracts and error
// taxonomy used by opskit. It defines the core abstractions for:
//
//   - Log entries (immutable timestamp/message pairs in nanosecond precision)
//   - Collections (pluggable storage policies for accumulated log entries)
//   - Secret resolvers (tenant scoped configuration/credential lookup)
//   - Object stores (bucket/object operations against S3 compatible backends)
//   - The ConfigError / TransportError / ParseError taxonomy
//
// The package intentionally keeps implementation concerns (HTTP clients,
// Vault, MinIO, concrete storage policies) out of scope, exposing small
// interfaces to enable custom backends and extensions. Callers should depend
// on these contracts rather than concrete types so they can substitute
// alternative implementations in tests or production.
package core
