package release

import (
	"fmt"
)

// TransportError reports a failed fetch: a network error, a timeout, or a
// non-2xx response. StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CatalogParseError reports a malformed release manifest.
type CatalogParseError struct {
	URL    string // empty when parsing bytes not fetched by a Resolver
	Detail string
	Err    error
}

func (e *CatalogParseError) Error() string {
	msg := "parse release manifest"
	if e.URL != "" {
		msg += " from " + e.URL
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Detail)
}

func (e *CatalogParseError) Unwrap() error {
	return e.Err
}
