package binary

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// Artifact hosting locations.
const (
	binBase = "https://github.com/dutterbutter/zksolc-bin/raw/db/generate-list"
	// DefaultFallbackBase serves platforms without a dedicated prefix.
	DefaultFallbackBase = "https://github.com/dutterbutter/zksolc-bin/tree/db/generate-list"
)

// Supported version range of the dedicated hosts, inclusive.
var (
	VersionMin = semver.MustParse("1.3.13")
	VersionMax = semver.MustParse("1.4.1")
)

// Source is where a platform's artifacts live and which versions it serves.
type Source struct {
	Prefix string
	Min    semver.Version
	Max    semver.Version
}

// DefaultSources is the closed table of dedicated artifact hosts.
func DefaultSources() map[platform.Platform]Source {
	return map[platform.Platform]Source{
		platform.LinuxAmd64:   {Prefix: binBase + "/linux-amd64", Min: VersionMin, Max: VersionMax},
		platform.LinuxAarch64: {Prefix: binBase + "/linux-arm64", Min: VersionMin, Max: VersionMax},
		platform.MacOSAmd64:   {Prefix: binBase + "/macosx-amd64", Min: VersionMin, Max: VersionMax},
		platform.MacOSAarch64: {Prefix: binBase + "/macosx-arm64", Min: VersionMin, Max: VersionMax},
		platform.WindowsAmd64: {Prefix: binBase + "/windows-amd64", Min: VersionMin, Max: VersionMax},
	}
}

// Locator maps a platform, version and artifact name to a download URL.
type Locator interface {
	ResolveURL(p platform.Platform, v semver.Version, artifact string) (*url.URL, error)
}

type source struct {
	prefix   *url.URL
	min, max semver.Version
}

// TableLocator resolves URLs from a per-platform table. Platforms missing from
// the table use <fallback>/<platform>/<artifact>.
type TableLocator struct {
	sources   map[platform.Platform]source
	fallback  *url.URL
	globalMin semver.Version
}

// NewLocator builds a locator from table. Versions below globalMin are
// rejected on every platform, including the fallback ones. Invalid prefixes
// are programming errors and panic.
func NewLocator(table map[platform.Platform]Source, fallback string, globalMin semver.Version) *TableLocator {
	sources := make(map[platform.Platform]source, len(table))
	for p, s := range table {
		sources[p] = source{prefix: mustParseURL(s.Prefix), min: s.Min, max: s.Max}
	}
	return &TableLocator{
		sources:   sources,
		fallback:  mustParseURL(fallback),
		globalMin: globalMin,
	}
}

// DefaultLocator returns the locator for the public artifact hosts.
func DefaultLocator() *TableLocator {
	return NewLocator(DefaultSources(), DefaultFallbackBase, VersionMin)
}

// ResolveURL returns the download URL of artifact. The artifact name is
// escaped as a single path segment.
func (l *TableLocator) ResolveURL(p platform.Platform, v semver.Version, artifact string) (*url.URL, error) {
	if src, ok := l.sources[p]; ok {
		if v.LT(src.min) || v.GT(src.max) {
			return nil, &UnsupportedVersionError{Platform: p, Version: v}
		}
		return join(src.prefix, artifact)
	}

	if v.LT(l.globalMin) {
		return nil, &UnsupportedVersionError{Platform: p, Version: v}
	}

	base := *l.fallback
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + p.String()
	base.RawPath = ""
	return join(&base, artifact)
}

func join(prefix *url.URL, artifact string) (*url.URL, error) {
	raw := strings.TrimSuffix(prefix.String(), "/") + "/" + url.PathEscape(artifact)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("build artifact url: %w", err)
	}
	return u, nil
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid artifact url prefix %q: %v", raw, err))
	}
	return u
}
