// Package secret contains concrete implementations of core.SecretResolver.
//
// The canonical SecretResolver interface lives in the core package to avoid
// dependency cycles and keep domain contracts central. Two implementations
// are provided: InMemory, a process-local resolver fed from explicit
// configuration (the documented fallback when no secret service is wired),
// and the Vault-backed resolver in the vault subpackage.
//
// Callers should depend on the core interface rather than concrete types so
// they can substitute alternative secret backends in tests or production.
package secret
