package binary

import (
	"fmt"

	"github.com/blang/semver"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/platform"
)

// UnknownVersionError reports a version that the release catalog does not
// list, or lists without a published checksum.
type UnknownVersionError struct {
	Version semver.Version
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown version %s", e.Version)
}

// UnsupportedVersionError reports a version outside the range served for a platform.
type UnsupportedVersionError struct {
	Platform platform.Platform
	Version  semver.Version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("version %s is not supported on %s", e.Version, e.Platform)
}

// UnsuccessfulDownloadError reports a non-2xx response to an artifact download.
type UnsuccessfulDownloadError struct {
	URL        string
	StatusCode int
}

func (e *UnsuccessfulDownloadError) Error() string {
	return fmt.Sprintf("download %s: unexpected status code %d", e.URL, e.StatusCode)
}

// ChecksumMismatchError reports downloaded bytes whose SHA-256 differs from
// the published one. Expected and Actual are lowercase hex.
type ChecksumMismatchError struct {
	Version  semver.Version
	Expected string
	Actual   string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s:\nexpected: %s\nactual:   %s", e.Version, e.Expected, e.Actual)
}

// SignatureError reports a detached signature that could not be fetched or verified.
type SignatureError struct {
	URL string
	Err error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("verify signature %s: %v", e.URL, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}
