// Package platform identifies the host that zksolc binaries are installed for.
//
// Identify maps GOOS/GOARCH onto the closed set of release platform tags used
// by the release catalog and the artifact locator. The Detector adds Linux
// distribution details through gopsutil; those details are exposed to the Lua
// config as a read-only platform table and never influence URL resolution.
package platform

import "context"

// Platform is a release platform tag.
type Platform string

// Release platforms with a dedicated binary source. Every other host maps to Other.
const (
	LinuxAmd64   Platform = "linux-amd64"
	LinuxAarch64 Platform = "linux-aarch64"
	MacOSAmd64   Platform = "macos-amd64"
	MacOSAarch64 Platform = "macos-aarch64"
	WindowsAmd64 Platform = "windows-amd64"
	Other        Platform = "other"
)

// String returns the platform tag.
func (p Platform) String() string {
	return string(p)
}

// Known reports whether p is one of the enumerated release platforms.
func (p Platform) Known() bool {
	switch p {
	case LinuxAmd64, LinuxAarch64, MacOSAmd64, MacOSAarch64, WindowsAmd64:
		return true
	default:
		return false
	}
}

// IsWindows reports whether binaries for p need a .exe suffix.
func (p Platform) IsWindows() bool {
	return p == WindowsAmd64
}

// All returns the known release platforms in a stable order.
func All() []Platform {
	return []Platform{LinuxAmd64, LinuxAarch64, MacOSAmd64, MacOSAarch64, WindowsAmd64}
}

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyGentoo  = "gentoo"  // Gentoo
	FamilyUnknown = "unknown" // Unrecognized distributions
)

// Info contains platform detection information.
type Info struct {
	Tag           Platform // release platform tag
	OS            string   // "linux", "darwin", "windows"
	Arch          string   // "amd64", "arm64" (normalized)
	ArchRaw       string   // original GOARCH
	Distro        string   // distro ID (Linux only, e.g., "ubuntu", "alpine")
	Family        string   // canonical family (e.g., "debian", "alpine")
	DistroVersion string   // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// IsAppleSilicon returns true if running on Apple Silicon (macOS + arm64).
func (i *Info) IsAppleSilicon() bool {
	return i.OS == "darwin" && i.Arch == "arm64"
}

// HasDistro reports whether Linux distribution details were detected.
func (i *Info) HasDistro() bool {
	return i.OS == "linux" && i.Distro != ""
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
