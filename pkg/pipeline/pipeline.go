// Package pipeline provides the core render pipeline for qrsmith.
//
// This package implements the complete encode → plan → render pipeline that
// can be used by CLI, API, and worker components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Encode: Turn a text payload into a normalized module matrix
//  2. Plan: Resolve the style, compute the logo region, and build the
//     per-module occlusion plan
//  3. Render: Rasterize the symbol with logo and halo, encode PNG/JPEG
//
// Matrices and rendered artifacts are cached; occlusion plans are ephemeral
// and rebuilt on every render.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Content:  "https://example.com",
//	    Level:    "h",
//	    LogoPath: "logo.png",
//	    Style:    style.Config{LogoShape: "circle"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	// Encode only
//	m, err := runner.Encode(ctx, opts)
//
//	// Plan with an existing matrix
//	plan, err := pipeline.ComputePlan(m, opts)
//
//	// Render with an existing matrix and plan
//	artifacts, err := runner.Render(ctx, m, matrixHash, plan, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pixelglyph/qrsmith/pkg/cache"
	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/halo"
	"github.com/pixelglyph/qrsmith/pkg/logo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultLevel is the default error correction level. High matches
	// the logo-embedding use case and keeps occluded symbols scannable.
	DefaultLevel = "h"

	// DefaultFormat is the default artifact format.
	DefaultFormat = FormatPNG
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the render pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Encode options
	Content    string `json:"content"`
	Encoder    string `json:"encoder,omitempty"`
	Level      string `json:"level,omitempty"`
	MinVersion int    `json:"min_version,omitempty"`
	MaxVersion int    `json:"max_version,omitempty"`
	QuietZone  int    `json:"quiet_zone,omitempty"`

	// Style options
	Style style.Config `json:"style,omitempty"`

	// Logo options. At most one source may be set; LogoBytes carries
	// base64-encoded image data in JSON requests.
	LogoURL   string `json:"logo_url,omitempty"`
	LogoBytes []byte `json:"logo_bytes,omitempty"`
	LogoPath  string `json:"-"`
	LogoFit   string `json:"logo_fit,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	JPEGQuality int      `json:"jpeg_quality,omitempty"`

	// Strict upgrades the occlusion budget warning to a LOGO_TOO_LARGE error.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses cache reads, forcing recomputation.
	Refresh bool `json:"refresh,omitempty"`

	// Matrix skips the encode stage and renders this pre-encoded matrix.
	Matrix *matrix.Matrix `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Matrix is the encoded module matrix.
	Matrix *matrix.Matrix

	// MatrixHash is the content hash of the serialized matrix.
	MatrixHash string

	// Region is the logo region geometry, nil for plain renders.
	Region *geometry.Region

	// Plan is the per-module occlusion plan, nil for plain renders.
	Plan *halo.Plan

	// Artifacts contains encoded images keyed by format.
	Artifacts map[string][]byte

	// Warnings lists advisory conditions: clamped style values, occlusion
	// budget breaches, and risky error correction choices.
	Warnings []string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Version    int
	SymbolSize int
	WidthPx    int
	EncodeTime time.Duration
	PlanTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	EncodeHit bool // Whether the matrix came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return qrerrors.New(qrerrors.ErrCodeInvalidFormat,
			"invalid format %q (must be one of: png, jpeg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForEncode(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForEncode checks required fields for the encode stage.
func (o *Options) ValidateForEncode() error {
	if o.Matrix == nil && o.Content == "" {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput, "content is required")
	}
	if o.Matrix != nil && o.Content != "" {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"content and a pre-encoded matrix are mutually exclusive")
	}

	// Encode defaults
	if o.Level == "" {
		o.Level = DefaultLevel
	}
	if _, err := matrix.ParseLevel(o.Level); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetRenderDefaults sets default values for the render stage.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for the render stage.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if _, err := logo.ParseFitMode(o.LogoFit); err != nil {
		return err
	}
	if o.JPEGQuality < 0 || o.JPEGQuality > 100 {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"jpeg quality %d out of range [1, 100]", o.JPEGQuality)
	}

	sources := 0
	if o.LogoPath != "" {
		sources++
	}
	if o.LogoURL != "" {
		sources++
	}
	if len(o.LogoBytes) > 0 {
		sources++
	}
	if sources > 1 {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"at most one logo source (path, URL, or bytes) may be set")
	}

	return nil
}

// HasLogo reports whether any logo source is configured.
func (o *Options) HasLogo() bool {
	return o.LogoPath != "" || o.LogoURL != "" || len(o.LogoBytes) > 0
}

// ParsedLevel returns the error correction level, applying the default.
func (o *Options) ParsedLevel() (matrix.ECLevel, error) {
	name := o.Level
	if name == "" {
		name = DefaultLevel
	}
	return matrix.ParseLevel(name)
}

// EncodeOptions builds the encoder configuration for the encode stage.
func (o *Options) EncodeOptions() (matrix.EncodeOptions, error) {
	level, err := o.ParsedLevel()
	if err != nil {
		return matrix.EncodeOptions{}, err
	}
	return matrix.EncodeOptions{
		Level:      level,
		Encoder:    o.Encoder,
		MinVersion: o.MinVersion,
		MaxVersion: o.MaxVersion,
		QuietZone:  o.QuietZone,
	}, nil
}

// MatrixKeyOpts returns cache key options for the encode stage.
func (o *Options) MatrixKeyOpts() cache.MatrixKeyOpts {
	level := o.Level
	if parsed, err := o.ParsedLevel(); err == nil {
		level = parsed.String()
	}
	return cache.MatrixKeyOpts{
		Encoder:    o.Encoder,
		Level:      level,
		MinVersion: o.MinVersion,
		MaxVersion: o.MaxVersion,
		QuietZone:  o.QuietZone,
	}
}

// ImageKeyOpts returns cache key options for a rendered artifact. The
// resolved style is used so that equivalent spellings of the same style
// share a key; logoHash is empty for renders without a logo.
func (o *Options) ImageKeyOpts(format string, st style.Resolved, logoHash string) cache.ImageKeyOpts {
	fit, err := logo.ParseFitMode(o.LogoFit)
	if err != nil {
		fit = logo.FitCover
	}
	return cache.ImageKeyOpts{
		Format:          format,
		ModuleColor:     style.FormatHex(st.ModuleColor),
		BackgroundColor: style.FormatHex(st.BackgroundColor),
		ModulePixelSize: st.ModulePixelSize,
		LogoShape:       string(st.LogoShape),
		LogoBackground:  string(st.LogoBackground),
		LogoSizeRatio:   st.LogoSizeRatio,
		LogoHash:        logoHash,
		LogoFit:         string(fit),
		BorderWidth:     st.BorderWidth,
		BorderColor:     style.FormatHex(st.BorderColor),
		JPEGQuality:     o.JPEGQuality,
	}
}
