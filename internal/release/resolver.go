package release

import (
	"context"
	"errors"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// Release list locations.
const (
	binBase = "https://github.com/dutterbutter/zksolc-bin/raw/db/generate-list"
	// DefaultFallbackBase serves platforms without a dedicated list.
	DefaultFallbackBase = "https://github.com/dutterbutter/zksolc-bin/tree/db/generate-list"
)

// DefaultEndpoints are the dedicated release lists per platform.
var DefaultEndpoints = map[platform.Platform]string{
	platform.LinuxAmd64:   binBase + "/linux-amd64/list.json",
	platform.LinuxAarch64: binBase + "/linux-arm64/list.json",
	platform.MacOSAmd64:   binBase + "/macosx-amd64/list.json",
	platform.MacOSAarch64: binBase + "/macosx-arm64/list.json",
	platform.WindowsAmd64: binBase + "/windows-amd64/list.json",
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoints replaces the dedicated per-platform list URLs.
func WithEndpoints(endpoints map[platform.Platform]string) Option {
	return func(r *Resolver) {
		if endpoints != nil {
			r.endpoints = endpoints
		}
	}
}

// WithFallbackBase sets the base of the <base>/<platform>/list.json scheme.
func WithFallbackBase(base string) Option {
	return func(r *Resolver) {
		if base != "" {
			r.fallbackBase = base
		}
	}
}

// Resolver fetches release catalogs. It keeps no cache: the list is small and
// a revoked or corrected release must be visible at install time.
type Resolver struct {
	fetcher      Fetcher
	endpoints    map[platform.Platform]string
	fallbackBase string
}

// NewResolver creates a resolver that fetches through fetcher.
func NewResolver(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:      fetcher,
		endpoints:    DefaultEndpoints,
		fallbackBase: DefaultFallbackBase,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListURL returns the release list location for p.
func (r *Resolver) ListURL(p platform.Platform) string {
	if u, ok := r.endpoints[p]; ok {
		return u
	}
	return r.fallbackBase + "/" + p.String() + "/list.json"
}

// FetchCatalog fetches and parses the release catalog of p. It returns either
// a complete catalog or a *TransportError / *CatalogParseError.
func (r *Resolver) FetchCatalog(ctx context.Context, p platform.Platform) (*Catalog, error) {
	logger := logging.GetLogger("release")
	url := r.ListURL(p)

	logger.Debug().Str("platform", p.String()).Str("url", url).Msg("Fetching release list")

	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &TransportError{URL: url, Err: err}
	}

	catalog, err := ParseCatalog(data)
	if err != nil {
		var parseErr *CatalogParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = url
		}
		return nil, err
	}

	logger.Debug().
		Str("platform", p.String()).
		Int("releases", len(catalog.Releases)).
		Int("builds", len(catalog.Builds)).
		Msg("Release list parsed")

	return catalog, nil
}
