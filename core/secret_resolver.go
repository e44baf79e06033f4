package core

import "context"

// SecretResolver returns named secrets scoped to a project or tenant. The log
// fetcher uses it to derive the query endpoint (secret "loki_host"); other
// components may resolve credentials through the same contract.
//
// Implementations should be thread-safe. The returned map is owned by the
// caller; implementations must not retain or mutate it after returning.
type SecretResolver interface {
	Resolve(ctx context.Context, project string) (map[string]string, error)
}

// SecretLokiHost is the secret key holding the base URL of the log
// aggregation service for a project.
const SecretLokiHost = "loki_host"
