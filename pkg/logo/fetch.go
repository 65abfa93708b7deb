package logo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/httputil"
	"github.com/pixelglyph/qrsmith/pkg/observability"
)

const (
	// fetchTimeout bounds a single download attempt.
	fetchTimeout = 10 * time.Second

	// maxFetchBytes caps the response body. Logos past this size add
	// nothing at composite resolution.
	maxFetchBytes = 8 << 20
)

// Sentinel errors for logo fetching. Check with errors.Is.
var (
	// ErrNotFound indicates the logo URL returned 404.
	ErrNotFound = errors.New("logo not found")

	// ErrNetwork indicates a connection, timeout, or server failure.
	ErrNetwork = errors.New("network error")

	// ErrTooLarge indicates the response body exceeded the size cap.
	ErrTooLarge = errors.New("logo exceeds size limit")
)

// Fetcher downloads logo images over HTTP. Transient failures (network
// errors, 5xx responses) are retried with exponential backoff; 4xx
// responses fail immediately.
type Fetcher struct {
	client   *http.Client
	attempts int
	delay    time.Duration
}

// NewFetcher returns a Fetcher with a 10 second per-attempt timeout
// and three attempts.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: fetchTimeout},
		attempts: 3,
		delay:    time.Second,
	}
}

// Fetch downloads and decodes the logo at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Asset, error) {
	if err := qrerrors.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	var data []byte
	err := httputil.Retry(ctx, f.attempts, f.delay, func() error {
		b, err := f.download(ctx, rawURL)
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, translate(err, rawURL)
	}
	return FromBytes(data)
}

// download performs a single GET attempt.
func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "image/*")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.ContentLength > maxFetchBytes {
		return nil, ErrTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %w", ErrNetwork, err)}
	}
	if len(body) > maxFetchBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

// checkStatus maps an HTTP status code to a sentinel error. Server
// errors are marked retryable, client errors are not.
func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: server returned %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrNetwork, code)
	}
}

// translate attaches a structured code to a fetch failure.
func translate(err error, rawURL string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return qrerrors.Wrap(qrerrors.ErrCodeNotFound, err, "fetch logo %s", rawURL)
	case errors.Is(err, ErrTooLarge):
		return qrerrors.Wrap(qrerrors.ErrCodeInvalidLogo, err, "fetch logo %s", rawURL)
	case errors.Is(err, context.DeadlineExceeded):
		return qrerrors.Wrap(qrerrors.ErrCodeTimeout, err, "fetch logo %s", rawURL)
	default:
		return qrerrors.Wrap(qrerrors.ErrCodeNetwork, err, "fetch logo %s", rawURL)
	}
}
