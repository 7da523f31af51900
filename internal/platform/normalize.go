package platform

import (
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
	"gentoo":   FamilyGentoo,
}

// platformTable maps normalized "os/arch" pairs to release platforms.
var platformTable = map[string]Platform{
	"linux/amd64":   LinuxAmd64,
	"linux/arm64":   LinuxAarch64,
	"darwin/amd64":  MacOSAmd64,
	"darwin/arm64":  MacOSAarch64,
	"windows/amd64": WindowsAmd64,
}

// normalizeArch converts architecture aliases to GOARCH names.
// Unknown values are returned lowercased so callers can still report them.
func normalizeArch(arch string) string {
	switch a := strings.ToLower(strings.TrimSpace(arch)); a {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return a
	}
}

// normalizeOS converts OS aliases to GOOS names.
func normalizeOS(goos string) string {
	switch o := strings.ToLower(strings.TrimSpace(goos)); o {
	case "macos", "macosx", "osx":
		return "darwin"
	default:
		return o
	}
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}

// FromGOOSGOARCH maps an OS/architecture pair to a release platform.
// Unrecognized combinations map to Other; this never fails.
func FromGOOSGOARCH(goos, goarch string) Platform {
	if p, ok := platformTable[normalizeOS(goos)+"/"+normalizeArch(goarch)]; ok {
		return p
	}
	return Other
}
