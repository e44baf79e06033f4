package loki

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/croften/opskit/collection"
	"github.com/croften/opskit/core"
	"github.com/croften/opskit/logging"
)

// Direction selects the scan order of a range query.
type Direction string

const (
	// DirectionForward scans oldest to newest.
	DirectionForward Direction = "forward"
	// DirectionBackward scans newest to oldest.
	DirectionBackward Direction = "backward"
)

// Policy selects the storage policy for accumulated entries.
type Policy string

const (
	// PolicyOrderedList keeps entries in append order, duplicates included.
	PolicyOrderedList Policy = "ordered-list"
	// PolicyGroupedSet groups entries by timestamp and collapses duplicate
	// messages within a timestamp.
	PolicyGroupedSet Policy = "grouped-set"
)

const (
	// QueryRangePath is the fixed API path appended to a resolved host when
	// the endpoint is derived from secrets.
	QueryRangePath = "/loki/api/v1/query_range"

	// DefaultTimestampFormat formats nanosecond timestamps as local-time
	// strings in the view. Uses strftime directives.
	DefaultTimestampFormat = "%Y-%m-%d %H:%M:%S"

	// DefaultPageLimit is the per-request entry cap, doubling as the
	// sentinel that signals more pages may exist.
	DefaultPageLimit = 5000

	// DefaultStepIncrementNs is added to the latest timestamp seen before
	// requesting the next page, avoiding a re-fetch of the boundary entry.
	DefaultStepIncrementNs = 1

	// DefaultTimeout bounds each individual page request.
	DefaultTimeout = 30 * time.Second
)

// Options configures a Fetcher.
type Options struct {
	// Endpoint is the full query_range URL. Required unless the fetcher is
	// built through NewForProject.
	Endpoint string

	// TimestampFormat renders timestamps in the view (strftime directives,
	// local time). Defaults to DefaultTimestampFormat.
	TimestampFormat string

	// PageLimit caps entries per HTTP call. Defaults to DefaultPageLimit.
	PageLimit int

	// StepIncrementNs is the nanosecond offset added to the latest seen
	// timestamp before the next page request. Defaults to DefaultStepIncrementNs.
	StepIncrementNs int64

	// Policy selects the storage policy. Defaults to PolicyOrderedList.
	Policy Policy

	// HTTPClient overrides the HTTP client used for page requests. When nil
	// a client with Timeout is used.
	HTTPClient *http.Client

	// Timeout bounds each page request when HTTPClient is nil. Defaults to
	// DefaultTimeout. Expiry surfaces as a TransportError.
	Timeout time.Duration

	// Logger receives fetch session diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Fetcher executes range queries against the log aggregation service and
// materializes results into its collection. Not safe for concurrent use.
type Fetcher struct {
	endpoint   string
	format     string
	pageLimit  int
	stepNs     int64
	httpClient *http.Client
	logger     logging.Logger

	entries core.Collection
	view    []Entry // lazily computed, invalidated by Fetch
}

// New creates a Fetcher. An unsupported storage policy or a missing endpoint
// is a ConfigError, raised before any network call.
func New(optFns ...func(o *Options)) (*Fetcher, error) {
	opts := Options{
		TimestampFormat: DefaultTimestampFormat,
		PageLimit:       DefaultPageLimit,
		StepIncrementNs: DefaultStepIncrementNs,
		Policy:          PolicyOrderedList,
		Timeout:         DefaultTimeout,
		Logger:          logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Endpoint == "" {
		return nil, core.NewConfigError("endpoint is required", nil)
	}

	var entries core.Collection
	switch opts.Policy {
	case PolicyOrderedList:
		entries = collection.NewOrderedList()
	case PolicyGroupedSet:
		entries = collection.NewGroupedSet()
	default:
		return nil, core.NewConfigError(fmt.Sprintf("unsupported storage policy %q", opts.Policy), nil)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Fetcher{
		endpoint:   opts.Endpoint,
		format:     opts.TimestampFormat,
		pageLimit:  opts.PageLimit,
		stepNs:     opts.StepIncrementNs,
		httpClient: httpClient,
		logger:     opts.Logger,
		entries:    entries,
	}, nil
}

// NewForProject derives the endpoint by resolving the project's secrets and
// appending QueryRangePath to the "loki_host" value. A resolver failure or a
// missing secret is a hard error; no fetcher is returned.
func NewForProject(ctx context.Context, resolver core.SecretResolver, project string, optFns ...func(o *Options)) (*Fetcher, error) {
	secrets, err := resolver.Resolve(ctx, project)
	if err != nil {
		return nil, core.NewConfigError(fmt.Sprintf("resolve secrets for project %q", project), err)
	}
	host := secrets[core.SecretLokiHost]
	if host == "" {
		return nil, core.NewConfigError(fmt.Sprintf("secret %q not found for project %q", core.SecretLokiHost, project), nil)
	}
	endpoint := strings.TrimRight(host, "/") + QueryRangePath

	// The derived endpoint wins over any endpoint passed in options.
	return New(func(o *Options) {
		for _, fn := range optFns {
			fn(o)
		}
		o.Endpoint = endpoint
	})
}

// Endpoint returns the query_range URL this fetcher talks to.
func (f *Fetcher) Endpoint() string { return f.endpoint }

// Len reports the number of entries accumulated so far.
func (f *Fetcher) Len() int { return f.entries.Len() }
