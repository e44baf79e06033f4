// Package testutil contains helper fakes used across tests to reduce
// boilerplate when exercising the log fetcher against a scripted backend.
// These helpers are intentionally minimal and avoid adding third-party
// dependencies. They are not intended for production usage.
package testutil
