package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/croften/opskit/core"
	"github.com/google/uuid"
)

// FetchOptions configures a single fetch session.
type FetchOptions struct {
	// StartNs is the inclusive lower bound of the time range in nanoseconds
	// since the epoch. Defaults to 0.
	StartNs int64

	// FollowPagination keeps requesting pages while they come back full.
	// Defaults to true.
	FollowPagination bool

	// Direction is the scan order. Defaults to DirectionForward.
	Direction Direction
}

// queryRangeResponse mirrors the relevant slice of the backend's JSON shape:
// {"data":{"result":[{"values":[["<ns>","<msg>"],...]},...]}}
type queryRangeResponse struct {
	Data struct {
		Result []struct {
			Values [][]string `json:"values"`
		} `json:"result"`
	} `json:"data"`
}

// Fetch executes the range query and accumulates every returned entry into
// the collection. When a page returns exactly the page limit and pagination
// is enabled, the next page is requested starting just past the highest
// timestamp seen in that page. Entries from pages that completed before an
// error remain accumulated; the error is still returned.
func (f *Fetcher) Fetch(ctx context.Context, query string, optFns ...func(o *FetchOptions)) error {
	opts := FetchOptions{
		FollowPagination: true,
		Direction:        DirectionForward,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	f.view = nil // invalidate the cached view for this session

	sessionID := uuid.NewString()
	began := time.Now()
	start := opts.StartNs
	pages, added := 0, 0

	for {
		count, pageMax, err := f.fetchPage(ctx, query, start, opts.Direction)
		pages++
		added += count
		if err != nil {
			f.logger.Error("log fetch failed",
				"session_id", sessionID, "query", query, "pages", pages,
				"entries", added, "error", err)
			return err
		}
		if !opts.FollowPagination || count < f.pageLimit {
			break
		}
		start = pageMax + f.stepNs
	}

	f.logger.Debug("log fetch completed",
		"session_id", sessionID, "query", query, "pages", pages,
		"entries", added, "duration", time.Since(began))
	return nil
}

// fetchPage issues one page request and inserts its entries. It returns the
// number of entries in the page and the maximum timestamp seen in it.
func (f *Fetcher) fetchPage(ctx context.Context, query string, startNs int64, dir Direction) (int, int64, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(f.pageLimit))
	params.Set("direction", string(dir))
	params.Set("start", strconv.FormatInt(startNs, 10))
	params.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, core.NewConfigError("build page request", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, 0, core.NewTransportError(0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, core.NewTransportError(0, "", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, core.NewTransportError(resp.StatusCode, snippet(body), nil)
	}

	var decoded queryRangeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, 0, core.NewParseError("invalid query_range response body", err)
	}

	count := 0
	var pageMax int64
	for _, stream := range decoded.Data.Result {
		for _, value := range stream.Values {
			if len(value) < 2 {
				return count, pageMax, core.NewParseError("values entry is not a [timestamp, message] pair", nil)
			}
			ts, err := strconv.ParseInt(value[0], 10, 64)
			if err != nil {
				return count, pageMax, core.NewParseError("non-integer timestamp in values entry", err)
			}
			if ts > pageMax {
				pageMax = ts
			}
			f.entries.Insert(core.LogEntry{TimestampNs: ts, Message: value[1]})
			count++
		}
	}
	return count, pageMax, nil
}

func snippet(body []byte) string {
	const max = 512
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
