package collection

import (
	"sort"

	"github.com/croften/opskit/core"
)

// OrderedList accumulates entries in append order and keeps duplicates.
// Sorting happens at view time with a stable sort, so entries sharing a
// timestamp keep their insertion order.
type OrderedList struct {
	entries []core.LogEntry
}

// NewOrderedList returns an empty ordered-list collection.
func NewOrderedList() *OrderedList {
	return &OrderedList{}
}

// Insert appends the entry unconditionally.
func (c *OrderedList) Insert(entry core.LogEntry) {
	c.entries = append(c.entries, entry)
}

// View returns a snapshot of the entries sorted ascending by timestamp.
func (c *OrderedList) View() []core.LogEntry {
	out := make([]core.LogEntry, len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampNs < out[j].TimestampNs
	})
	return out
}

// Len reports the number of accumulated entries, duplicates included.
func (c *OrderedList) Len() int { return len(c.entries) }

// Reset discards all accumulated entries.
func (c *OrderedList) Reset() { c.entries = nil }
