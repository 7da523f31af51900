package binary

import (
	"context"
	"errors"

	"github.com/ZebulonRouseFrantzich/zksvm/internal/logging"
	"github.com/ZebulonRouseFrantzich/zksvm/internal/release"
)

// SignatureSuffix is appended to an artifact URL to locate its detached signature.
const SignatureSuffix = ".asc"

// Downloader fetches artifacts into memory. It makes exactly one attempt per
// call; binaries are not cached between installs.
type Downloader struct {
	fetcher release.Fetcher
}

// NewDownloader creates a downloader on top of fetcher.
func NewDownloader(fetcher release.Fetcher) *Downloader {
	return &Downloader{fetcher: fetcher}
}

// Download returns the body of url. A non-2xx response becomes an
// *UnsuccessfulDownloadError; network failures and timeouts stay
// *release.TransportError.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	logger := logging.GetLogger("download")
	logger.Debug().Str("url", url).Msg("Downloading artifact")

	data, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		var transportErr *release.TransportError
		if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
			return nil, &UnsuccessfulDownloadError{URL: url, StatusCode: transportErr.StatusCode}
		}
		return nil, err
	}

	logger.Debug().Str("url", url).Int("bytes", len(data)).Msg("Artifact downloaded")
	return data, nil
}

// DownloadSignature fetches the detached signature published next to artifactURL.
func (d *Downloader) DownloadSignature(ctx context.Context, artifactURL string) ([]byte, error) {
	sigURL := artifactURL + SignatureSuffix
	data, err := d.Download(ctx, sigURL)
	if err != nil {
		return nil, &SignatureError{URL: sigURL, Err: err}
	}
	return data, nil
}
