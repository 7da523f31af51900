package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole request including the body read.
	// Binaries are tens of megabytes, so this is minutes rather than seconds.
	DefaultTimeout = 120 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "zksvm/1.0"
	// maxBodySize caps how much of a response is buffered in memory.
	maxBodySize = 512 << 20
)

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher implements Fetcher over net/http. It never retries: a failed
// request surfaces as a *TransportError and the caller decides what to do.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher whose requests are aborted after timeout.
// A zero timeout selects DefaultTimeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
	}
}

// Fetch performs a single GET and returns the full body of a 2xx response.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	if len(body) > maxBodySize {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", maxBodySize)}
	}

	return body, nil
}
