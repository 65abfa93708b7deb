package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pixelglyph/qrsmith/pkg/buildinfo"
	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/observability"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
)

// renderResponse is the JSON envelope returned to clients that accept
// application/json. Image bytes are base64-encoded per format.
type renderResponse struct {
	RequestID string            `json:"request_id"`
	Images    map[string][]byte `json:"images"`
	Warnings  []string          `json:"warnings,omitempty"`
	Cached    bool              `json:"cached"`
	Stats     renderStats       `json:"stats"`
}

type renderStats struct {
	Version    int   `json:"version"`
	SymbolSize int   `json:"symbol_size"`
	WidthPx    int   `json:"width_px"`
	EncodeMs   int64 `json:"encode_ms"`
	RenderMs   int64 `json:"render_ms"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var opts pipeline.Options
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, r, qrerrors.Wrap(qrerrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	// Local paths never cross the API boundary.
	opts.LogoPath = ""
	opts.Logger = s.logger

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo))

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, renderResponse{
			RequestID: requestIDFrom(ctx),
			Images:    result.Artifacts,
			Warnings:  result.Warnings,
			Cached:    result.CacheInfo.RenderHit,
			Stats: renderStats{
				Version:    result.Stats.Version,
				SymbolSize: result.Stats.SymbolSize,
				WidthPx:    result.Stats.WidthPx,
				EncodeMs:   result.Stats.EncodeTime.Milliseconds(),
				RenderMs:   result.Stats.RenderTime.Milliseconds(),
			},
		})
		return
	}

	// Binary response: first requested format wins, warnings travel in
	// headers since the body is the image itself.
	format := pipeline.DefaultFormat
	if len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	data, ok := result.Artifacts[format]
	if !ok {
		s.writeError(w, r, qrerrors.New(qrerrors.ErrCodeInternal,
			"no %s artifact in render result", format))
		return
	}
	for _, warn := range result.Warnings {
		w.Header().Add("X-Render-Warning", warn)
	}
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps a pipeline error onto an HTTP status and JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := qrerrors.GetCode(err)
	status := httpStatus(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("render failed", "err", err, "request_id", requestIDFrom(ctx))
	}
	observability.HTTP().OnError(ctx, r.Method, r.Host, r.URL.Path, err)

	writeJSON(w, status, errorResponse{
		Error:     qrerrors.UserMessage(err),
		Code:      string(code),
		RequestID: requestIDFrom(ctx),
	})
}

// httpStatus maps error codes onto HTTP statuses. Unknown codes and
// plain errors fall through to 500.
func httpStatus(code qrerrors.Code) int {
	switch code {
	case qrerrors.ErrCodeInvalidInput, qrerrors.ErrCodeInvalidMatrix,
		qrerrors.ErrCodeInvalidColor, qrerrors.ErrCodeInvalidStyle,
		qrerrors.ErrCodeInvalidLogo, qrerrors.ErrCodeInvalidFormat,
		qrerrors.ErrCodeInvalidPreset, qrerrors.ErrCodeInvalidEncoder:
		return http.StatusBadRequest
	case qrerrors.ErrCodeLogoTooLarge:
		return http.StatusUnprocessableEntity
	case qrerrors.ErrCodeNotFound, qrerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case qrerrors.ErrCodeNetwork:
		return http.StatusBadGateway
	case qrerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func cacheHeader(info pipeline.CacheInfo) string {
	if info.RenderHit {
		return "HIT"
	}
	return "MISS"
}

func contentType(format string) string {
	if format == pipeline.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
