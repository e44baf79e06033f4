package loki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/croften/opskit/core"
	"github.com/croften/opskit/internal/testutil"
	"github.com/ncruces/go-strftime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resolverFunc func(ctx context.Context, project string) (map[string]string, error)

func (f resolverFunc) Resolve(ctx context.Context, project string) (map[string]string, error) {
	return f(ctx, project)
}

func newTestFetcher(t *testing.T, backend *testutil.LokiBackend, optFns ...func(o *Options)) *Fetcher {
	t.Helper()
	srv := backend.Server()
	t.Cleanup(srv.Close)
	f, err := New(func(o *Options) {
		for _, fn := range optFns {
			fn(o)
		}
		o.Endpoint = srv.URL
	})
	require.NoError(t, err)
	return f
}

func formatted(ns int64) string {
	return strftime.Format(DefaultTimestampFormat, time.Unix(0, ns))
}

func TestNewRejectsUnsupportedPolicy(t *testing.T) {
	_, err := New(func(o *Options) {
		o.Endpoint = "http://localhost:3100" + QueryRangePath
		o.Policy = Policy("ring-buffer")
	})
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestNewRequiresEndpoint(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestNewForProjectDerivesEndpoint(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, project string) (map[string]string, error) {
		return map[string]string{"loki_host": "http://loki.internal:3100/"}, nil
	})
	f, err := NewForProject(context.Background(), resolver, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "http://loki.internal:3100"+QueryRangePath, f.Endpoint())
}

func TestNewForProjectMissingSecret(t *testing.T) {
	resolver := resolverFunc(func(ctx context.Context, project string) (map[string]string, error) {
		return map[string]string{"other": "x"}, nil
	})
	_, err := NewForProject(context.Background(), resolver, "proj-1")
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestNewForProjectResolverFailure(t *testing.T) {
	boom := errors.New("vault sealed")
	resolver := resolverFunc(func(ctx context.Context, project string) (map[string]string, error) {
		return nil, boom
	})
	_, err := NewForProject(context.Background(), resolver, "proj-1")
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err))
	assert.True(t, errors.Is(err, boom))
}

func TestFetchSinglePartialPage(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 1000000000, Message: "a"},
		testutil.LogLine{TimestampNs: 2000000000, Message: "b"},
	))
	f := newTestFetcher(t, backend)

	require.NoError(t, f.Fetch(context.Background(), `{app="web"}`))

	// 2 < 5000, no second request
	assert.Equal(t, 1, backend.Calls())
	logs := f.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, Entry{Timestamp: formatted(1000000000), Message: "a"}, logs[0])
	assert.Equal(t, Entry{Timestamp: formatted(2000000000), Message: "b"}, logs[1])
}

func TestFetchRequestParameters(t *testing.T) {
	backend := testutil.NewLokiBackend()
	f := newTestFetcher(t, backend, func(o *Options) { o.PageLimit = 100 })

	require.NoError(t, f.Fetch(context.Background(), `{app="api"}`, func(o *FetchOptions) {
		o.StartNs = 42
		o.Direction = DirectionBackward
	}))

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "100", reqs[0].Get("limit"))
	assert.Equal(t, "backward", reqs[0].Get("direction"))
	assert.Equal(t, "42", reqs[0].Get("start"))
	assert.Equal(t, `{app="api"}`, reqs[0].Get("query"))
}

func TestFetchPaginates(t *testing.T) {
	backend := testutil.NewLokiBackend(
		testutil.PageOf(
			testutil.LogLine{TimestampNs: 10, Message: "p1-a"},
			testutil.LogLine{TimestampNs: 20, Message: "p1-b"},
		),
		testutil.PageOf(
			testutil.LogLine{TimestampNs: 30, Message: "p2-a"},
			testutil.LogLine{TimestampNs: 40, Message: "p2-b"},
		),
		testutil.PageOf(
			testutil.LogLine{TimestampNs: 50, Message: "p3-a"},
		),
	)
	f := newTestFetcher(t, backend, func(o *Options) { o.PageLimit = 2 })

	require.NoError(t, f.Fetch(context.Background(), `{app="web"}`))

	// two full pages, then a partial one
	require.Equal(t, 3, backend.Calls())
	reqs := backend.Requests()
	assert.Equal(t, "0", reqs[0].Get("start"))
	assert.Equal(t, "21", reqs[1].Get("start")) // max of page 1 + step
	assert.Equal(t, "41", reqs[2].Get("start")) // max of page 2 + step
	assert.Equal(t, 5, f.Len())
}

func TestFetchPaginationKeepsDirection(t *testing.T) {
	backend := testutil.NewLokiBackend(
		testutil.PageOf(testutil.LogLine{TimestampNs: 10, Message: "a"}),
		testutil.PageOf(),
	)
	f := newTestFetcher(t, backend, func(o *Options) { o.PageLimit = 1 })

	require.NoError(t, f.Fetch(context.Background(), "q", func(o *FetchOptions) {
		o.Direction = DirectionBackward
	}))

	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "backward", reqs[1].Get("direction"))
}

func TestFetchWithoutPagination(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 10, Message: "a"},
		testutil.LogLine{TimestampNs: 20, Message: "b"},
	))
	f := newTestFetcher(t, backend, func(o *Options) { o.PageLimit = 2 })

	require.NoError(t, f.Fetch(context.Background(), "q", func(o *FetchOptions) {
		o.FollowPagination = false
	}))

	// page was full but pagination is disabled
	assert.Equal(t, 1, backend.Calls())
	assert.Equal(t, 2, f.Len())
}

func TestFetchCustomStepIncrement(t *testing.T) {
	backend := testutil.NewLokiBackend(
		testutil.PageOf(testutil.LogLine{TimestampNs: 100, Message: "a"}),
		testutil.PageOf(),
	)
	f := newTestFetcher(t, backend, func(o *Options) {
		o.PageLimit = 1
		o.StepIncrementNs = 500
	})

	require.NoError(t, f.Fetch(context.Background(), "q"))
	reqs := backend.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "600", reqs[1].Get("start"))
}

func TestFetchCountsValuesAcrossResultGroups(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.Page{Streams: [][]testutil.LogLine{
		{{TimestampNs: 10, Message: "s1-a"}, {TimestampNs: 30, Message: "s1-b"}},
		{{TimestampNs: 20, Message: "s2-a"}},
	}})
	f := newTestFetcher(t, backend)

	require.NoError(t, f.Fetch(context.Background(), "q"))
	assert.Equal(t, 3, f.Len())

	logs := f.Logs()
	require.Len(t, logs, 3)
	assert.Equal(t, "s1-a", logs[0].Message)
	assert.Equal(t, "s2-a", logs[1].Message)
	assert.Equal(t, "s1-b", logs[2].Message)
}

func TestLogsSortedForBothPolicies(t *testing.T) {
	for name, policy := range map[string]Policy{
		"ordered-list": PolicyOrderedList,
		"grouped-set":  PolicyGroupedSet,
	} {
		t.Run(name, func(t *testing.T) {
			backend := testutil.NewLokiBackend(testutil.PageOf(
				testutil.LogLine{TimestampNs: 3000000000, Message: "third"},
				testutil.LogLine{TimestampNs: 1000000000, Message: "first"},
				testutil.LogLine{TimestampNs: 2000000000, Message: "second"},
			))
			f := newTestFetcher(t, backend, func(o *Options) { o.Policy = policy })

			require.NoError(t, f.Fetch(context.Background(), "q"))
			logs := f.Logs()
			require.Len(t, logs, 3)
			assert.Equal(t, []string{"first", "second", "third"}, []string{
				logs[0].Message, logs[1].Message, logs[2].Message,
			})
		})
	}
}

func TestLogsIdempotentBetweenFetches(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 10, Message: "a"},
	))
	f := newTestFetcher(t, backend)

	require.NoError(t, f.Fetch(context.Background(), "q"))
	first := f.Logs()
	second := f.Logs()
	assert.Equal(t, first, second)
}

func TestFetchInvalidatesCachedView(t *testing.T) {
	backend := testutil.NewLokiBackend(
		testutil.PageOf(testutil.LogLine{TimestampNs: 10, Message: "a"}),
		testutil.PageOf(testutil.LogLine{TimestampNs: 20, Message: "b"}),
	)
	f := newTestFetcher(t, backend)

	require.NoError(t, f.Fetch(context.Background(), "q"))
	require.Len(t, f.Logs(), 1)

	require.NoError(t, f.Fetch(context.Background(), "q"))
	logs := f.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "b", logs[1].Message)
}

func TestGroupedSetPolicyCollapsesAcrossPages(t *testing.T) {
	// The boundary entry is served twice to simulate overlapping windows.
	backend := testutil.NewLokiBackend(
		testutil.PageOf(testutil.LogLine{TimestampNs: 10, Message: "dup"}),
		testutil.PageOf(
			testutil.LogLine{TimestampNs: 10, Message: "dup"},
			testutil.LogLine{TimestampNs: 10, Message: "other"},
		),
		testutil.PageOf(),
	)
	f := newTestFetcher(t, backend, func(o *Options) {
		o.PageLimit = 1
		o.StepIncrementNs = 0
		o.Policy = PolicyGroupedSet
	})

	require.NoError(t, f.Fetch(context.Background(), "q"))
	logs := f.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "dup", logs[0].Message)
	assert.Equal(t, "other", logs[1].Message)
}

func TestFetchHTTPErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many outstanding requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f, err := New(func(o *Options) { o.Endpoint = srv.URL })
	require.NoError(t, err)

	err = f.Fetch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
	var te *core.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusTooManyRequests, te.Status)
}

func TestFetchMalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	f, err := New(func(o *Options) { o.Endpoint = srv.URL })
	require.NoError(t, err)

	err = f.Fetch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
}

func TestFetchBadTimestampIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"result":[{"values":[["not-a-number","msg"]]}]}}`))
	}))
	defer srv.Close()

	f, err := New(func(o *Options) { o.Endpoint = srv.URL })
	require.NoError(t, err)

	err = f.Fetch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
}

func TestFetchFailureKeepsEarlierPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"data":{"result":[{"values":[["10","a"],["20","b"]]}]}}`))
			return
		}
		http.Error(w, "upstream gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	f, err := New(func(o *Options) {
		o.Endpoint = srv.URL
		o.PageLimit = 2
	})
	require.NoError(t, err)

	err = f.Fetch(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
	// the first page stays accumulated even though the session failed
	assert.Equal(t, 2, f.Len())
}

func TestFetchContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f, err := New(func(o *Options) { o.Endpoint = srv.URL })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = f.Fetch(ctx, "q")
	require.Error(t, err)
	assert.True(t, core.IsTransportError(err))
}

func TestCustomTimestampFormat(t *testing.T) {
	backend := testutil.NewLokiBackend(testutil.PageOf(
		testutil.LogLine{TimestampNs: 1500000000000000000, Message: "a"},
	))
	f := newTestFetcher(t, backend, func(o *Options) {
		o.TimestampFormat = "%Y/%m/%d"
	})

	require.NoError(t, f.Fetch(context.Background(), "q"))
	logs := f.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, strftime.Format("%Y/%m/%d", time.Unix(0, 1500000000000000000)), logs[0].Timestamp)
}
