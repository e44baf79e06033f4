// Package config loads and validates the opskit configuration.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Default(), the documented defaults
//  2. a YAML file (Load)
//  3. OPSKIT_* environment variables (ApplyEnv), with optional .env support
//
// Credentials and endpoints are always explicit configuration; there are no
// implicit module-level fallbacks. Validate reports problems as ConfigError
// before any component performs I/O.
package config
