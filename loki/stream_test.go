package loki

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/croften/opskit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestWriteToRoundTrip(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 2000000000, Message: "second"},
		testutil.LogLine{TimestampNs: 1000000000, Message: "first"},
	))
	f := newTestFetcher(t, backend)
	require.NoError(t, f.Fetch(context.Background(), "q"))

	var buf bytes.Buffer
	n, err := f.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	scanner := bufio.NewScanner(&buf)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())

	logs := f.Logs()
	require.Len(t, lines, len(logs))
	for i, e := range logs {
		assert.Equal(t, fmt.Sprintf("%s\t%s", e.Timestamp, e.Message), lines[i])
	}
}

func TestToStreamPositionedAtStart(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 1000000000, Message: "hello"},
	))
	f := newTestFetcher(t, backend)
	require.NoError(t, f.Fetch(context.Background(), "q"))

	stream, err := f.ToStream()
	require.NoError(t, err)

	// readable immediately, no Seek needed
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "\thello\n"))

	// and seekable back to the start
	_, err = stream.Seek(0, io.SeekStart)
	require.NoError(t, err)
	again, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestToStreamEmptyView(t *testing.T) {
	backend := testutil.NewLokiBackend()
	f := newTestFetcher(t, backend)
	require.NoError(t, f.Fetch(context.Background(), "q"))

	stream, err := f.ToStream()
	require.NoError(t, err)
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestToStreamTranscodes(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 1000000000, Message: "café"},
	))
	f := newTestFetcher(t, backend)
	require.NoError(t, f.Fetch(context.Background(), "q"))

	stream, err := f.ToStream(func(o *StreamOptions) {
		o.Encoding = charmap.ISO8859_1
	})
	require.NoError(t, err)
	data, err := io.ReadAll(stream)
	require.NoError(t, err)

	// 'é' is a single 0xE9 byte in Latin-1, two bytes in UTF-8
	assert.Contains(t, string(data), "caf\xe9")
	assert.NotContains(t, string(data), "café")
}
