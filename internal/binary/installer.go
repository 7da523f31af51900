package binary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/fsutil"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/lock"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/store"
)

// CatalogSource supplies the release catalog of a platform.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, p platform.Platform) (*release.Catalog, error)
}

// InstallerConfig holds the collaborators of an Installer.
type InstallerConfig struct {
	// DataDir is the root of the version store (required)
	DataDir string
	// Platform is the host platform tag (required)
	Platform platform.Platform
	// Catalogs fetches release catalogs (required)
	Catalogs CatalogSource
	// Downloader fetches artifacts (required)
	Downloader *Downloader
	// Locator defaults to DefaultLocator()
	Locator Locator
	// Verifier defaults to checksum-only verification
	Verifier *Verifier
}

// Installer downloads, verifies and installs compiler versions.
type Installer struct {
	store      *store.Store
	platform   platform.Platform
	catalogs   CatalogSource
	locator    Locator
	downloader *Downloader
	verifier   *Verifier
	extractor  *Extractor
}

// NewInstaller creates an installer from cfg.
func NewInstaller(cfg InstallerConfig) (*Installer, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("DataDir is required")
	}
	if cfg.Platform == "" {
		return nil, fmt.Errorf("Platform is required")
	}
	if cfg.Catalogs == nil {
		return nil, fmt.Errorf("Catalogs is required")
	}
	if cfg.Downloader == nil {
		return nil, fmt.Errorf("Downloader is required")
	}

	locator := cfg.Locator
	if locator == nil {
		locator = DefaultLocator()
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = NewVerifier(nil)
	}

	return &Installer{
		store:      store.New(cfg.DataDir),
		platform:   cfg.Platform,
		catalogs:   cfg.Catalogs,
		locator:    locator,
		downloader: cfg.Downloader,
		verifier:   verifier,
		extractor:  NewExtractor(),
	}, nil
}

// Resolve looks up the artifact of v in a freshly fetched catalog and returns
// it along with the published checksum.
func (i *Installer) Resolve(ctx context.Context, v semver.Version) (*Artifact, []byte, error) {
	catalog, err := i.catalogs.FetchCatalog(ctx, i.platform)
	if err != nil {
		return nil, nil, err
	}

	name, ok := catalog.Artifact(v)
	if !ok {
		return nil, nil, &UnknownVersionError{Version: v}
	}
	// A release without a published checksum cannot be verified.
	checksum, ok := catalog.Checksum(v)
	if !ok {
		return nil, nil, &UnknownVersionError{Version: v}
	}

	u, err := i.locator.ResolveURL(i.platform, v, name)
	if err != nil {
		return nil, nil, err
	}

	return &Artifact{Platform: i.platform, Version: v, Name: name, URL: u.String()}, checksum, nil
}

// Install downloads and verifies v, then writes it to its version directory
// under the version's install lock. It returns the path of the installed
// binary. Installing a version that is already present downloads and
// overwrites it.
func (i *Installer) Install(ctx context.Context, v semver.Version) (string, error) {
	logger := logging.GetLogger("installer")
	done := logging.LogOperationStart(logger, "install "+v.String())
	defer done()

	artifact, checksum, err := i.Resolve(ctx, v)
	if err != nil {
		return "", err
	}

	data, err := i.downloader.Download(ctx, artifact.URL)
	if err != nil {
		return "", err
	}

	method, err := i.verify(ctx, artifact, data, checksum)
	if err != nil {
		return "", err
	}

	l, err := lock.Acquire(ctx, i.store.DataDir(), v.String())
	if err != nil {
		return "", fmt.Errorf("acquire install lock: %w", err)
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn().Err(err).Str("version", v.String()).Msg("Failed to release install lock")
		}
	}()

	path, err := i.materialize(artifact, data)
	if err != nil {
		return "", err
	}

	logger.Debug().
		Str("version", v.String()).
		Str("path", path).
		Str("verified", method.String()).
		Msg("Version installed")

	return path, nil
}

func (i *Installer) verify(ctx context.Context, artifact *Artifact, data, checksum []byte) (VerificationMethod, error) {
	if err := i.verifier.VerifyChecksum(data, checksum, artifact.Version); err != nil {
		return 0, err
	}
	if !i.verifier.HasKeyring() {
		return VerificationSHA256, nil
	}

	sig, err := i.downloader.DownloadSignature(ctx, artifact.URL)
	if err != nil {
		return 0, err
	}
	if err := i.verifier.VerifySignature(data, sig, artifact.URL+SignatureSuffix); err != nil {
		return 0, err
	}
	return VerificationSHA256AndGPG, nil
}

// materialize writes verified bytes to the canonical binary path. Must be
// called with the version lock held.
func (i *Installer) materialize(artifact *Artifact, data []byte) (string, error) {
	dir := i.store.VersionDir(artifact.Version)
	_, statErr := os.Stat(dir)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fsutil.Wrap("create version directory", dir, err)
	}

	dest := i.store.BinaryPath(artifact.Version, artifact.Platform)
	err := i.write(artifact, data, dest)
	if err != nil {
		if created {
			i.removeIfEmpty(dir)
		}
		return "", err
	}
	return dest, nil
}

func (i *Installer) write(artifact *Artifact, data []byte, dest string) error {
	payload := data
	if artifact.Platform == platform.WindowsAmd64 && strings.HasSuffix(artifact.Name, ".zip") {
		var err error
		payload, err = i.extractor.ExtractZipEntry(data, windowsZipEntry)
		if err != nil {
			return fmt.Errorf("extract %s: %w", artifact.Name, err)
		}
	}

	return fsutil.WriteFileAtomic(dest, payload, binaryMode(artifact.Platform))
}

func (i *Installer) removeIfEmpty(dir string) {
	if empty, err := fsutil.IsDirEmpty(dir); err == nil && empty {
		os.Remove(dir)
	}
}

func binaryMode(p platform.Platform) os.FileMode {
	if p.IsWindows() {
		return 0o644
	}
	return 0o755
}
