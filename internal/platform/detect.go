package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Identify returns the release platform of the running process.
func Identify() Platform {
	return FromGOOSGOARCH(runtime.GOOS, runtime.GOARCH)
}

// RealDetector implements Detector using actual platform detection.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect performs platform detection and returns platform information.
// It uses runtime.GOOS and runtime.GOARCH for the release tag, and gopsutil
// for Linux distribution details.
//
// Distribution detection failures are not errors: the distro fields stay
// empty. Only a cancelled context fails detection.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		Tag:     Identify(),
		OS:      runtime.GOOS,
		Arch:    normalizeArch(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	if runtime.GOOS != "linux" {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	distro = normalizePlatform(distro)
	if distro != "" {
		info.Distro = distro
		info.Family = mapFamily(family)
		info.DistroVersion = normalizePlatform(version)
	}

	return info, nil
}
