package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomyPredicates(t *testing.T) {
	cause := errors.New("boom")

	cfg := NewConfigError("unsupported storage policy", nil)
	if !IsConfigError(cfg) {
		t.Fatalf("expected ConfigError predicate to match")
	}
	if IsTransportError(cfg) || IsParseError(cfg) {
		t.Fatalf("predicates should not cross-match")
	}

	tr := NewTransportError(503, "service unavailable", cause)
	if !IsTransportError(tr) {
		t.Fatalf("expected TransportError predicate to match")
	}
	if !errors.Is(tr, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}

	pe := NewParseError("missing data.result", cause)
	if !IsParseError(pe) {
		t.Fatalf("expected ParseError predicate to match")
	}
}

func TestErrorTaxonomyWrapped(t *testing.T) {
	inner := NewConfigError("secret \"loki_host\" not found", nil)
	outer := fmt.Errorf("build fetcher: %w", inner)
	if !IsConfigError(outer) {
		t.Fatalf("expected ConfigError to be detected through wrapping")
	}
}

func TestTransportErrorMessage(t *testing.T) {
	tr := NewTransportError(404, "not found", nil)
	want := "transport error: HTTP 404: not found"
	if tr.Error() != want {
		t.Fatalf("expected %q, got %q", want, tr.Error())
	}
}
