package loki

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ncruces/go-strftime"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Entry is one row of the formatted log view.
type Entry struct {
	// Timestamp is the entry time rendered with the fetcher's timestamp format.
	Timestamp string
	// Message is the raw log line.
	Message string
}

// Logs returns the sorted, formatted view of everything accumulated so far.
// The view is computed lazily on first access after a fetch and cached until
// the next Fetch invalidates it, so repeated calls return the identical
// sequence. Entries sharing a timestamp appear in insertion order.
func (f *Fetcher) Logs() []Entry {
	if f.view != nil {
		return f.view
	}
	raw := f.entries.View()
	view := make([]Entry, 0, len(raw))
	for _, e := range raw {
		view = append(view, Entry{
			Timestamp: strftime.Format(f.format, time.Unix(0, e.TimestampNs)),
			Message:   e.Message,
		})
	}
	f.view = view
	return view
}

// WriteTo writes every entry of the view as a "<timestamp>\t<message>\n" line
// to w. It implements io.WriterTo.
func (f *Fetcher) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, e := range f.Logs() {
		n, err := fmt.Fprintf(w, "%s\t%s\n", e.Timestamp, e.Message)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// StreamOptions configures ToStream.
type StreamOptions struct {
	// Encoding transcodes the output. Nil writes UTF-8 as-is.
	Encoding encoding.Encoding
}

// ToStream materializes the view into a newly allocated stream of
// tab-separated lines and returns it positioned at the start, ready to be
// read back.
func (f *Fetcher) ToStream(optFns ...func(o *StreamOptions)) (io.ReadSeeker, error) {
	var opts StreamOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	var buf bytes.Buffer
	var sink io.Writer = &buf
	var tw *transform.Writer
	if opts.Encoding != nil {
		tw = transform.NewWriter(&buf, opts.Encoding.NewEncoder())
		sink = tw
	}

	if _, err := f.WriteTo(sink); err != nil {
		return nil, err
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return nil, err
		}
	}
	return bytes.NewReader(buf.Bytes()), nil
}
