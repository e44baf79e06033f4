// Package opskit provides a high-level façade over the toolkit's service
// abstractions (log fetching, secret resolution, object storage & logging)
// enabling platform components to share one wired set of clients. Most
// applications interact with this package by:
//  1. Creating a Toolkit via New() (optionally overriding default in-memory services)
//  2. Or via FromConfig() to wire Vault and S3 backends from configuration
//  3. Requesting clients (LogFetcher, ObjectStore, Secrets) as needed
//
// The façade delegates the actual work to the loki, secret and objectstore
// packages while keeping setup and usage ergonomics concise. All defaults are
// safe for local development and testing; production deployments typically
// supply a populated config.Config and a structured logger.
package opskit

import (
	"context"

	"github.com/google/uuid"

	"github.com/croften/opskit/config"
	"github.com/croften/opskit/core"
	"github.com/croften/opskit/logging"
	"github.com/croften/opskit/loki"
	"github.com/croften/opskit/objectstore"
	"github.com/croften/opskit/objectstore/s3"
	"github.com/croften/opskit/secret"
	"github.com/croften/opskit/secret/vault"
)

// Options configures the Toolkit instance.
type Options struct {
	// Config supplies the fetcher, store and resolver settings. Defaults to
	// config.Default().
	Config config.Config

	// Secrets resolves per-project secrets (defaults to an empty in-memory
	// resolver if not provided).
	Secrets core.SecretResolver

	// Store is the object storage backend (defaults to an in-memory store
	// if not provided).
	Store core.ObjectStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Toolkit is the high-level façade aggregating the shared service clients.
type Toolkit struct {
	id      string
	cfg     config.Config
	secrets core.SecretResolver
	store   core.ObjectStore
	logger  logging.Logger
}

// New creates a Toolkit with optional overrides. Any unset service is
// initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Toolkit {
	opts := Options{
		Config:  config.Default(),
		Secrets: secret.NewInMemory(nil),
		Store:   objectstore.NewInMemory(),
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Toolkit{
		id:      uuid.NewString(),
		cfg:     opts.Config,
		secrets: opts.Secrets,
		store:   opts.Store,
		logger:  opts.Logger,
	}
}

// FromConfig validates cfg and wires the Vault resolver and S3 store when
// their sections are populated. Sections left empty fall back to the
// in-memory implementations. The default logger honors cfg.Logging; option
// functions may still replace it.
func FromConfig(cfg config.Config, optFns ...func(o *Options)) (*Toolkit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{
		Config:  cfg,
		Secrets: secret.NewInMemory(nil),
		Store:   objectstore.NewInMemory(),
		Logger:  logging.NewSlogLogger(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format, false),
	}

	if cfg.Vault.Address != "" {
		resolver, err := vault.New(func(o *vault.Options) {
			o.Address = cfg.Vault.Address
			o.Token = cfg.Vault.Token
			o.Mount = cfg.Vault.Mount
			o.SharedPath = cfg.Vault.SharedPath
			o.ProjectPathTemplate = cfg.Vault.PathTemplate
		})
		if err != nil {
			return nil, err
		}
		opts.Secrets = resolver
	}

	if cfg.ObjectStore.Endpoint != "" {
		store, err := s3.New(func(o *s3.Options) {
			o.Endpoint = cfg.ObjectStore.Endpoint
			o.AccessKey = cfg.ObjectStore.AccessKey
			o.SecretKey = cfg.ObjectStore.SecretKey
			o.Region = cfg.ObjectStore.Region
			o.BucketPrefix = cfg.ObjectStore.BucketPrefix
			o.UseSSL = cfg.ObjectStore.UseSSL
		})
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return New(func(o *Options) { *o = opts }), nil
}

// ID returns the unique identifier of this toolkit instance, attached to
// diagnostics for correlation.
func (t *Toolkit) ID() string { return t.id }

// Config returns the configuration the toolkit was built with.
func (t *Toolkit) Config() config.Config { return t.cfg }

// Logger returns the logger the toolkit hands to the clients it builds.
func (t *Toolkit) Logger() logging.Logger { return t.logger }

// Secrets returns the secret resolver.
func (t *Toolkit) Secrets() core.SecretResolver { return t.secrets }

// ObjectStore returns the object storage backend.
func (t *Toolkit) ObjectStore() core.ObjectStore { return t.store }

// LogFetcher builds a fetcher for the given project. A configured endpoint
// wins; otherwise the endpoint is derived from the project's "loki_host"
// secret. Each call returns a fresh fetcher owning its own collection.
func (t *Toolkit) LogFetcher(ctx context.Context, project string, optFns ...func(o *loki.Options)) (*loki.Fetcher, error) {
	base := func(o *loki.Options) {
		o.TimestampFormat = t.cfg.Loki.TimestampFormat
		o.PageLimit = t.cfg.Loki.PageLimit
		o.StepIncrementNs = t.cfg.Loki.StepIncrementNs
		o.Policy = loki.Policy(t.cfg.Loki.Policy)
		o.Timeout = t.cfg.LokiTimeout()
		o.Logger = t.logger
		for _, fn := range optFns {
			fn(o)
		}
	}

	if t.cfg.Loki.Endpoint != "" {
		return loki.New(func(o *loki.Options) {
			base(o)
			o.Endpoint = t.cfg.Loki.Endpoint
		})
	}
	return loki.NewForProject(ctx, t.secrets, project, base)
}
