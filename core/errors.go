package core

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid or incomplete configuration: an unsupported
// storage policy, a missing endpoint, an unresolvable secret. It is raised
// before any network I/O takes place.
type ConfigError struct {
	Reason string // human readable description
	Err    error  // optional underlying cause
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a ConfigError with the given reason and optional cause.
func NewConfigError(reason string, err error) *ConfigError {
	return &ConfigError{Reason: reason, Err: err}
}

// TransportError reports a failed exchange with a remote service: connection
// failures, timeouts and non-2xx HTTP responses. Status is zero when no HTTP
// response was received.
type TransportError struct {
	Status int    // HTTP status code, 0 if the request never completed
	Body   string // response body snippet for non-2xx responses
	Err    error  // optional underlying cause
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error: HTTP %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

// Unwrap returns the underlying cause, if any.
func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError creates a TransportError wrapping the given cause.
func NewTransportError(status int, body string, err error) *TransportError {
	return &TransportError{Status: status, Body: body, Err: err}
}

// ParseError reports a response body that is not valid JSON or is missing
// the expected fields.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parse error: %s", e.Reason)
}

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError creates a ParseError with the given reason and optional cause.
func NewParseError(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}
