// Package loki implements a client for the query_range HTTP API of a
// Loki-style log aggregation service.
//
// A Fetcher executes a (possibly multi-request) range query and accumulates
// the results client-side into a storage policy (ordered list or grouped
// set). Pagination is sequential: when a page comes back full, the next
// request starts just past the highest timestamp seen so far. After a fetch
// the sorted, timestamp-formatted view is available via Logs, and can be
// written out as tab-separated lines via WriteTo or ToStream.
//
// Fetchers are synchronous and single-session: each instance owns its
// collection exclusively and is not safe for concurrent use. Network, HTTP
// and decoding failures are never retried internally; they surface to the
// caller through the core error taxonomy.
package loki
