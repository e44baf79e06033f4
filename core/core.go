package core

// LogEntry is an immutable pair of a nanosecond epoch timestamp and the raw
// message text. It carries no other attributes; labels and stream metadata
// from the backend are intentionally discarded during accumulation.
type LogEntry struct {
	// TimestampNs is the entry time in nanoseconds since the Unix epoch.
	TimestampNs int64
	// Message is the raw log line as returned by the backend.
	Message string
}

// Collection accumulates log entries for a single fetch session under one of
// the storage policies (ordered list or grouped set). Implementations are not
// required to be safe for concurrent use: a collection is owned exclusively
// by the fetcher that created it for the lifetime of the session.
type Collection interface {
	// Insert adds an entry according to the active storage policy. Whether
	// duplicates are kept or collapsed is policy defined.
	Insert(entry LogEntry)

	// View returns the accumulated entries sorted ascending by raw
	// timestamp. The returned slice is a snapshot safe for caller mutation.
	View() []LogEntry

	// Len reports the number of entries the view would contain.
	Len() int

	// Reset discards all accumulated entries.
	Reset()
}
