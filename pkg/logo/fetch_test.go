package logo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/observability"
)

// newTestFetcher keeps retry delays short so failure paths stay fast.
func newTestFetcher() *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: 2 * time.Second},
		attempts: 3,
		delay:    5 * time.Millisecond,
	}
}

func TestFetch(t *testing.T) {
	data := encodePNG(t, twoTone(8, 8))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	a, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got, want := a.Format(), "png"; got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
	if got := a.Bounds(); got.Dx() != 8 || got.Dy() != 8 {
		t.Errorf("Bounds = %dx%d, want 8x8", got.Dx(), got.Dy())
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	data := encodePNG(t, twoTone(8, 8))
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	a, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if a == nil {
		t.Fatal("Fetch returned nil asset")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch succeeded on 404")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound in chain", err)
	}
	if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeNotFound {
		t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeNotFound)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (404 is not retryable)", got)
	}
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch succeeded on 403")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork in chain", err)
	}
	if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeNetwork {
		t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeNetwork)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (4xx is not retryable)", got)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch succeeded against a permanently failing server")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork in chain", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(maxFetchBytes+1))
		w.Write(make([]byte, maxFetchBytes+1))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch accepted an oversized response")
	}
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("error = %v, want ErrTooLarge in chain", err)
	}
	if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeInvalidLogo {
		t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeInvalidLogo)
	}
}

func TestFetchUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>this is not an image</html>"))
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Fetch accepted a non-image body")
	}
	if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeInvalidLogo {
		t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeInvalidLogo)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "Empty", input: ""},
		{name: "NoScheme", input: "example.com/logo.png"},
		{name: "FileScheme", input: "file:///etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestFetcher().Fetch(context.Background(), tt.input)
			if err == nil {
				t.Fatalf("Fetch(%q) succeeded, want error", tt.input)
			}
			if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeInvalidInput {
				t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeInvalidInput)
			}
		})
	}
}

// recordingHTTPHooks counts HTTP events for assertions.
type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  atomic.Int32
	responses atomic.Int32
	errors    atomic.Int32
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) {
	h.requests.Add(1)
}

func (h *recordingHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {
	h.responses.Add(1)
}

func (h *recordingHTTPHooks) OnError(context.Context, string, string, string, error) {
	h.errors.Add(1)
}

func TestFetchEmitsHTTPHooks(t *testing.T) {
	data := encodePNG(t, twoTone(8, 8))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	if _, err := newTestFetcher().Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := hooks.requests.Load(); got != 1 {
		t.Errorf("OnRequest calls = %d, want 1", got)
	}
	if got := hooks.responses.Load(); got != 1 {
		t.Errorf("OnResponse calls = %d, want 1", got)
	}
	if got := hooks.errors.Load(); got != 0 {
		t.Errorf("OnError calls = %d, want 0", got)
	}
}

func TestFetchContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := newTestFetcher().Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatal("Fetch succeeded past its deadline")
	}
	if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeTimeout {
		t.Errorf("error code = %q, want %q", got, qrerrors.ErrCodeTimeout)
	}
}
