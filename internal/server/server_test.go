package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pixelglyph/qrsmith/pkg/cache"
	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
	return New(Config{Addr: ":0", Logger: logger, Runner: runner})
}

// postRender marshals body and POSTs it to the render endpoint.
func postRender(t *testing.T, s *Server, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/render", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func testLogoPNG(t *testing.T) []byte {
	t.Helper()
	im := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			im.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, im); err != nil {
		t.Fatalf("encode test logo: %v", err)
	}
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRenderBinary(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{"content": "https://example.com"}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
}

func TestRenderJPEG(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{
		"content": "https://example.com",
		"formats": []string{"jpeg"},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", got)
	}
	body := rec.Body.Bytes()
	if len(body) < 2 || body[0] != 0xFF || body[1] != 0xD8 {
		t.Error("body is not a JPEG")
	}
}

func TestRenderJSONEnvelope(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{
		"content": "https://example.com",
		"style":   map[string]any{"module_pixel_size": 4},
	}, map[string]string{"Accept": "application/json"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}

	var resp renderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(resp.Images["png"]) == 0 {
		t.Error("envelope has no png image")
	}
	if !bytes.HasPrefix(resp.Images["png"], []byte("\x89PNG")) {
		t.Error("decoded image is not a PNG")
	}
	if resp.Stats.Version < 1 {
		t.Errorf("Stats.Version = %d, want >= 1", resp.Stats.Version)
	}
	if resp.RequestID == "" {
		t.Error("envelope has no request ID")
	}
	if resp.RequestID != rec.Header().Get("X-Request-ID") {
		t.Error("envelope request ID does not match header")
	}
}

func TestRenderWithLogoWarnsInHeader(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{
		"content":    "https://example.com",
		"level":      "m",
		"logo_bytes": testLogoPNG(t),
		"style":      map[string]any{"module_pixel_size": 4},
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	warnings := rec.Header().Values("X-Render-Warning")
	if len(warnings) == 0 {
		t.Fatal("expected a warning header for level m with a logo")
	}
}

func TestRenderErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "MissingContent",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "UnknownField",
			body:       map[string]any{"content": "x", "colour": "red"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "BadLevel",
			body:       map[string]any{"content": "x", "level": "ultra"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "BadFormat",
			body:       map[string]any{"content": "x", "formats": []string{"bmp"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
		{
			name: "BadColor",
			body: map[string]any{
				"content": "x",
				"style":   map[string]any{"module_color": "not-a-color"},
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_COLOR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRender(t, s, tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Error == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestRenderStrictBudget(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{
		"content":    "https://example.com",
		"level":      "l",
		"strict":     true,
		"logo_bytes": testLogoPNG(t),
		"style": map[string]any{
			"logo_size_ratio":   0.35,
			"module_pixel_size": 4,
		},
	}, nil)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d (body %s)",
			rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != string(qrerrors.ErrCodeLogoTooLarge) {
		t.Errorf("code = %q, want LOGO_TOO_LARGE", resp.Code)
	}
}

func TestRequestIDEcho(t *testing.T) {
	s := newTestServer(t)
	rec := postRender(t, s, map[string]any{"content": "https://example.com"},
		map[string]string{"X-Request-ID": "client-supplied-id"})

	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("X-Request-ID = %q, want client-supplied-id", got)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code qrerrors.Code
		want int
	}{
		{qrerrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{qrerrors.ErrCodeInvalidStyle, http.StatusBadRequest},
		{qrerrors.ErrCodeLogoTooLarge, http.StatusUnprocessableEntity},
		{qrerrors.ErrCodeFileNotFound, http.StatusNotFound},
		{qrerrors.ErrCodeNetwork, http.StatusBadGateway},
		{qrerrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{qrerrors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := httpStatus(tt.code); got != tt.want {
			t.Errorf("httpStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	// Give ListenAndServe a moment to bind before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
