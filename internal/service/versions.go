// Package service provides the version operations behind the zksvm commands.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
)

// CatalogSource supplies the release catalog of a platform.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, p platform.Platform) (*release.Catalog, error)
}

// Installer installs a single version and returns its binary path.
type Installer interface {
	Install(ctx context.Context, v semver.Version) (string, error)
}

// VersionStore is the local record of installed versions and the global pointer.
type VersionStore interface {
	ListInstalled() ([]semver.Version, error)
	IsInstalled(v semver.Version) bool
	RemoveVersion(v semver.Version) error
	GetGlobal() (*semver.Version, error)
	SetGlobal(v semver.Version) error
	UnsetGlobal() error
}

// Versions orchestrates catalog lookups, installs and the global pointer.
type Versions struct {
	catalogs  CatalogSource
	installer Installer
	store     VersionStore
	platform  platform.Platform
	clock     Clock
}

// NewVersions creates the version service with dependency injection.
func NewVersions(
	catalogs CatalogSource,
	installer Installer,
	store VersionStore,
	p platform.Platform,
	clock Clock,
) *Versions {
	if clock == nil {
		clock = RealClock{}
	}
	return &Versions{
		catalogs:  catalogs,
		installer: installer,
		store:     store,
		platform:  p,
		clock:     clock,
	}
}

// InstallResult describes a completed install.
type InstallResult struct {
	Version  semver.Version
	Path     string
	Duration time.Duration
}

// RemoveResult describes the global pointer after a removal.
type RemoveResult struct {
	Removed []semver.Version
	// Global is the global version after the removal, nil when unset.
	Global *semver.Version
	// GlobalChanged is true when the removal moved or cleared the pointer.
	GlobalChanged bool
}

// Platform returns the platform the service installs for.
func (s *Versions) Platform() platform.Platform {
	return s.platform
}

// InstalledVersions returns the installed versions in ascending order.
func (s *Versions) InstalledVersions() ([]semver.Version, error) {
	return s.store.ListInstalled()
}

// IsInstalled reports whether v is installed.
func (s *Versions) IsInstalled(v semver.Version) bool {
	return s.store.IsInstalled(v)
}

// AllVersions returns every version in the release catalog, ascending.
func (s *Versions) AllVersions(ctx context.Context) ([]semver.Version, error) {
	catalog, err := s.catalogs.FetchCatalog(ctx, s.platform)
	if err != nil {
		return nil, err
	}
	return catalog.Versions(), nil
}

// AvailableVersions returns the catalog versions that are not installed.
func (s *Versions) AvailableVersions(ctx context.Context) ([]semver.Version, error) {
	all, err := s.AllVersions(ctx)
	if err != nil {
		return nil, err
	}
	installed, err := s.store.ListInstalled()
	if err != nil {
		return nil, err
	}
	return subtract(all, installed), nil
}

// IsReleased reports whether the release catalog lists v.
func (s *Versions) IsReleased(ctx context.Context, v semver.Version) (bool, error) {
	catalog, err := s.catalogs.FetchCatalog(ctx, s.platform)
	if err != nil {
		return false, err
	}
	return catalog.Contains(v), nil
}

// CurrentVersion returns the global version, nil when none is set.
func (s *Versions) CurrentVersion() (*semver.Version, error) {
	return s.store.GetGlobal()
}

// Install downloads, verifies and installs v.
func (s *Versions) Install(ctx context.Context, v semver.Version) (*InstallResult, error) {
	logger := logging.GetLogger("service")
	start := s.clock.Now()

	path, err := s.installer.Install(ctx, v)
	if err != nil {
		return nil, err
	}

	result := &InstallResult{Version: v, Path: path, Duration: s.clock.Now().Sub(start)}
	logger.Info().Str("version", v.String()).Str("path", path).Dur("duration", result.Duration).Msg("Installed")
	return result, nil
}

// EnsureGlobal makes v the global version when none is set. It reports
// whether the pointer was written.
func (s *Versions) EnsureGlobal(v semver.Version) (bool, error) {
	current, err := s.store.GetGlobal()
	if err != nil {
		return false, err
	}
	if current != nil {
		return false, nil
	}
	if err := s.store.SetGlobal(v); err != nil {
		return false, err
	}
	return true, nil
}

// SetGlobalVersion makes v the global version. v must be installed.
func (s *Versions) SetGlobalVersion(v semver.Version) error {
	if !s.store.IsInstalled(v) {
		return fmt.Errorf("version %s is not installed", v)
	}
	return s.store.SetGlobal(v)
}

// UnsetGlobalVersion clears the global version.
func (s *Versions) UnsetGlobalVersion() error {
	return s.store.UnsetGlobal()
}

// RemoveVersion deletes the files of v without touching the global pointer.
func (s *Versions) RemoveVersion(v semver.Version) error {
	return s.store.RemoveVersion(v)
}

// Uninstall removes v. If v was the global version the pointer moves to the
// highest remaining version, or is cleared when none remain.
func (s *Versions) Uninstall(v semver.Version) (*RemoveResult, error) {
	if err := s.store.RemoveVersion(v); err != nil {
		return nil, err
	}

	result := &RemoveResult{Removed: []semver.Version{v}}

	current, err := s.store.GetGlobal()
	if err != nil {
		return nil, err
	}
	if current == nil || !current.Equals(v) {
		result.Global = current
		return result, nil
	}

	result.GlobalChanged = true
	remaining, err := s.store.ListInstalled()
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return result, s.store.UnsetGlobal()
	}

	highest := remaining[len(remaining)-1]
	if err := s.store.SetGlobal(highest); err != nil {
		return nil, err
	}
	result.Global = &highest
	return result, nil
}

// RemoveAll removes every installed version and clears the global pointer.
func (s *Versions) RemoveAll() (*RemoveResult, error) {
	installed, err := s.store.ListInstalled()
	if err != nil {
		return nil, err
	}

	result := &RemoveResult{}
	for _, v := range installed {
		if err := s.store.RemoveVersion(v); err != nil {
			return result, err
		}
		result.Removed = append(result.Removed, v)
	}

	current, err := s.store.GetGlobal()
	if err != nil {
		// a malformed pointer is cleared along with everything else
		current = nil
	}
	result.GlobalChanged = current != nil || err != nil
	return result, s.store.UnsetGlobal()
}

// subtract returns the versions of all that are not in exclude. Both are sorted.
func subtract(all, exclude []semver.Version) []semver.Version {
	out := make([]semver.Version, 0, len(all))
	j := 0
	for _, v := range all {
		for j < len(exclude) && exclude[j].LT(v) {
			j++
		}
		if j < len(exclude) && exclude[j].Equals(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
