// Package collection contains the concrete storage policies behind
// core.Collection.
//
// The canonical Collection interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Two policies are
// provided:
//
//   - OrderedList keeps entries in append order and never removes
//     duplicates. Overlapping pagination windows therefore surface the same
//     entry twice.
//   - GroupedSet groups entries by timestamp and collapses duplicate
//     messages within a timestamp. Messages at different timestamps never
//     collapse. Within a timestamp the first-insertion order is preserved so
//     the view is reproducible.
//
// Both policies produce the same externally visible shape: a sequence of
// entries sorted ascending by raw timestamp. Collections are not safe for
// concurrent use; each fetch session owns its collection exclusively.
package collection
