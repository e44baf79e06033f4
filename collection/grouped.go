package collection

import (
	"sort"

	"github.com/croften/opskit/core"
)

// GroupedSet groups entries by timestamp and collapses duplicate messages
// within a timestamp. A per-group membership set handles the collapse while a
// parallel slice preserves first-insertion order, keeping the view
// deterministic.
type GroupedSet struct {
	groups map[int64]*group
	total  int
}

type group struct {
	seen     map[string]struct{}
	messages []string
}

// NewGroupedSet returns an empty grouped-set collection.
func NewGroupedSet() *GroupedSet {
	return &GroupedSet{groups: make(map[int64]*group)}
}

// Insert adds the entry unless an identical (timestamp, message) pair is
// already present.
func (c *GroupedSet) Insert(entry core.LogEntry) {
	g, ok := c.groups[entry.TimestampNs]
	if !ok {
		g = &group{seen: make(map[string]struct{})}
		c.groups[entry.TimestampNs] = g
	}
	if _, dup := g.seen[entry.Message]; dup {
		return
	}
	g.seen[entry.Message] = struct{}{}
	g.messages = append(g.messages, entry.Message)
	c.total++
}

// View returns a snapshot sorted ascending by timestamp. Messages sharing a
// timestamp appear in first-insertion order.
func (c *GroupedSet) View() []core.LogEntry {
	timestamps := make([]int64, 0, len(c.groups))
	for ts := range c.groups {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	out := make([]core.LogEntry, 0, c.total)
	for _, ts := range timestamps {
		for _, msg := range c.groups[ts].messages {
			out = append(out, core.LogEntry{TimestampNs: ts, Message: msg})
		}
	}
	return out
}

// Len reports the number of distinct (timestamp, message) pairs.
func (c *GroupedSet) Len() int { return c.total }

// Reset discards all accumulated entries.
func (c *GroupedSet) Reset() {
	c.groups = make(map[int64]*group)
	c.total = 0
}
