// Package vault provides a core.SecretResolver backed by HashiCorp Vault's
// KV v2 secrets engine. Each project maps to a secret path derived from a
// configurable template; a shared path holds platform wide secrets. Project
// values win over shared values on key collisions.
package vault

import (
	"context"
	"errors"
	"fmt"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/croften/opskit/core"
)

const (
	// DefaultMount is the KV v2 mount path.
	DefaultMount = "kv"
	// DefaultSharedPath holds secrets visible to every project.
	DefaultSharedPath = "shared"
	// DefaultProjectPathTemplate maps a project id to its secret path.
	DefaultProjectPathTemplate = "projects/%s"
)

// Options configures the Vault resolver.
type Options struct {
	// Address of the Vault server (e.g. "https://vault.internal:8200").
	// Ignored when Client is set.
	Address string

	// Token authenticates the client. Ignored when Client is set.
	Token string

	// Mount is the KV v2 mount path. Defaults to DefaultMount.
	Mount string

	// SharedPath holds platform wide secrets. Defaults to DefaultSharedPath.
	SharedPath string

	// ProjectPathTemplate renders the per-project secret path from the
	// project id. Defaults to DefaultProjectPathTemplate.
	ProjectPathTemplate string

	// Client overrides the Vault API client entirely.
	Client *vaultapi.Client
}

// Resolver reads project scoped secrets from Vault.
type Resolver struct {
	client     *vaultapi.Client
	mount      string
	sharedPath string
	pathTmpl   string
}

// Interface compliance (compile-time assertion)
var _ core.SecretResolver = (*Resolver)(nil)

// New creates a Vault-backed resolver. Client construction failures are
// configuration errors.
func New(optFns ...func(o *Options)) (*Resolver, error) {
	opts := Options{
		Mount:               DefaultMount,
		SharedPath:          DefaultSharedPath,
		ProjectPathTemplate: DefaultProjectPathTemplate,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.Client
	if client == nil {
		cfg := vaultapi.DefaultConfig()
		if opts.Address != "" {
			cfg.Address = opts.Address
		}
		var err error
		client, err = vaultapi.NewClient(cfg)
		if err != nil {
			return nil, core.NewConfigError("build vault client", err)
		}
		if opts.Token != "" {
			client.SetToken(opts.Token)
		}
	}

	return &Resolver{
		client:     client,
		mount:      opts.Mount,
		sharedPath: opts.SharedPath,
		pathTmpl:   opts.ProjectPathTemplate,
	}, nil
}

// Resolve reads the shared path and the project path, merging them with
// project values winning. A path that simply does not exist contributes
// nothing; any other read failure is a TransportError.
func (r *Resolver) Resolve(ctx context.Context, project string) (map[string]string, error) {
	out := make(map[string]string)
	paths := []string{r.sharedPath, fmt.Sprintf(r.pathTmpl, project)}
	for _, path := range paths {
		kvSecret, err := r.client.KVv2(r.mount).Get(ctx, path)
		if err != nil {
			if errors.Is(err, vaultapi.ErrSecretNotFound) {
				continue
			}
			return nil, core.NewTransportError(0, "", fmt.Errorf("read vault path %s/%s: %w", r.mount, path, err))
		}
		for k, v := range kvSecret.Data {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
	}
	return out, nil
}
