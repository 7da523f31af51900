package release

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blang/semver"
)

// Catalog is the parsed release manifest of one platform.
//
//	{
//	    "builds": [
//	        {"version": "1.3.17", "sha256": "0x1a2b..."}
//	    ],
//	    "releases": {
//	        "1.3.17": "zksolc-linux-amd64-musl-v1.3.17"
//	    }
//	}
type Catalog struct {
	// Releases maps canonical version strings to artifact file names.
	Releases map[string]string
	// Builds holds the published checksums; some releases may lack one.
	Builds []BuildInfo
}

// BuildInfo contains the SHA256 checksum of a zksolc binary.
type BuildInfo struct {
	Version semver.Version
	SHA256  []byte
}

type manifest struct {
	Builds   []manifestBuild   `json:"builds"`
	Releases map[string]string `json:"releases"`
}

type manifestBuild struct {
	Version string `json:"version"`
	SHA256  string `json:"sha256"`
}

// ParseCatalog decodes a release manifest. The document must be a single
// JSON object with a releases map, versions must be valid semantic versions
// and checksums SHA256 digests in hex (optionally 0x-prefixed); any
// violation fails the whole parse.
func ParseCatalog(data []byte) (*Catalog, error) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &CatalogParseError{Detail: "decode json", Err: err}
	}
	if m.Releases == nil {
		return nil, &CatalogParseError{Detail: "missing releases"}
	}

	catalog := &Catalog{
		Releases: make(map[string]string, len(m.Releases)),
		Builds:   make([]BuildInfo, 0, len(m.Builds)),
	}

	for raw, artifact := range m.Releases {
		v, err := semver.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, &CatalogParseError{Detail: fmt.Sprintf("release version %q", raw), Err: err}
		}
		if artifact == "" {
			return nil, &CatalogParseError{Detail: fmt.Sprintf("release %s has an empty artifact name", v)}
		}
		catalog.Releases[v.String()] = artifact
	}

	for i, b := range m.Builds {
		v, err := semver.Parse(strings.TrimSpace(b.Version))
		if err != nil {
			return nil, &CatalogParseError{Detail: fmt.Sprintf("builds[%d] version %q", i, b.Version), Err: err}
		}
		sum, err := DecodeChecksum(b.SHA256)
		if err != nil {
			return nil, &CatalogParseError{Detail: fmt.Sprintf("builds[%d] sha256 for %s", i, v), Err: err}
		}
		catalog.Builds = append(catalog.Builds, BuildInfo{Version: v, SHA256: sum})
	}

	return catalog, nil
}

// MarshalJSON encodes the catalog in manifest form with 0x-prefixed checksums.
func (c Catalog) MarshalJSON() ([]byte, error) {
	m := manifest{
		Builds:   make([]manifestBuild, 0, len(c.Builds)),
		Releases: c.Releases,
	}
	if m.Releases == nil {
		m.Releases = map[string]string{}
	}
	for _, b := range c.Builds {
		m.Builds = append(m.Builds, manifestBuild{
			Version: b.Version.String(),
			SHA256:  EncodeChecksum(b.SHA256),
		})
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a manifest with the same rules as ParseCatalog.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	parsed, err := ParseCatalog(data)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

// Artifact returns the artifact file name published for v.
func (c *Catalog) Artifact(v semver.Version) (string, bool) {
	name, ok := c.Releases[v.String()]
	return name, ok
}

// Checksum returns the expected SHA256 of v from the first matching build record.
func (c *Catalog) Checksum(v semver.Version) ([]byte, bool) {
	for _, b := range c.Builds {
		if b.Version.Equals(v) {
			return b.SHA256, true
		}
	}
	return nil, false
}

// Contains reports whether v has a published artifact.
func (c *Catalog) Contains(v semver.Version) bool {
	_, ok := c.Artifact(v)
	return ok
}

// Versions returns every released version in ascending order.
func (c *Catalog) Versions() []semver.Version {
	versions := make([]semver.Version, 0, len(c.Releases))
	for raw := range c.Releases {
		// keys were produced by Version.String in ParseCatalog
		if v, err := semver.Parse(raw); err == nil {
			versions = append(versions, v)
		}
	}
	semver.Sort(versions)
	return versions
}

// DecodeChecksum decodes a hex SHA256 digest with an optional 0x prefix.
func DecodeChecksum(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, fmt.Errorf("empty checksum")
	}
	sum, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(sum) != sha256.Size {
		return nil, fmt.Errorf("checksum is %d bytes, want %d", len(sum), sha256.Size)
	}
	return sum, nil
}

// EncodeChecksum encodes a digest as 0x-prefixed lowercase hex.
func EncodeChecksum(sum []byte) string {
	return "0x" + hex.EncodeToString(sum)
}
