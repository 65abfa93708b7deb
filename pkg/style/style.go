// Package style resolves user-facing styling inputs into the canonical
// parameters consumed by the geometry, planning, and raster stages.
//
// Resolution is pure validation and normalization: hex color strings
// become concrete colors, enum names become typed values, and out-of-range
// numbers are either rejected or clamped. Clamps are never silent; the
// resolved style carries flags naming every value that was adjusted.
package style

import (
	"image/color"
	"math"
	"strings"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// LogoShape selects the geometric region the logo occupies.
type LogoShape string

const (
	ShapeSquare      LogoShape = "square"
	ShapeCircle      LogoShape = "circle"
	ShapeRoundedRect LogoShape = "rounded-rect"
)

// BackgroundStyle selects how the area behind the logo is treated.
type BackgroundStyle string

const (
	// BackgroundSolid clears a sharp-edged frame around the logo.
	BackgroundSolid BackgroundStyle = "solid"
	// BackgroundGradientHalo fades modules back in across a halo ring.
	BackgroundGradientHalo BackgroundStyle = "gradient-halo"
	// BackgroundRadialGradient adds a radial color wash under the halo.
	BackgroundRadialGradient BackgroundStyle = "radial-gradient"
)

// Defaults mirror the original generator's form values.
const (
	DefaultModuleColor     = "#000000"
	DefaultBackgroundColor = "#ffffff"
	DefaultModulePixelSize = 15
	DefaultLogoSizeRatio   = 0.25

	// MaxLogoSizeRatio caps the logo at 35% of the symbol width.
	MaxLogoSizeRatio = 0.35

	// MaxModulePixelSize bounds output resolution (64 px per module puts
	// a version 40 symbol at ~11k pixels square).
	MaxModulePixelSize = 64

	// BorderAuto requests a border width proportional to the module
	// pixel size (0.75 of a module, at least 1 px).
	BorderAuto = -1

	borderSizeFactor = 0.75
)

// ParseShape converts a shape name into a LogoShape. Long forms from the
// original form labels ("rounded rectangle") are accepted.
func ParseShape(s string) (LogoShape, error) {
	switch normalizeEnum(s) {
	case "", "square":
		return ShapeSquare, nil
	case "circle":
		return ShapeCircle, nil
	case "rounded-rect", "rounded-rectangle", "rounded":
		return ShapeRoundedRect, nil
	}
	return "", qrerrors.New(qrerrors.ErrCodeInvalidStyle,
		"unknown logo shape %q (want square, circle, or rounded-rect)", s)
}

// ParseBackgroundStyle converts a background style name into a
// BackgroundStyle.
func ParseBackgroundStyle(s string) (BackgroundStyle, error) {
	switch normalizeEnum(s) {
	case "", "solid":
		return BackgroundSolid, nil
	case "gradient-halo", "halo", "gradient":
		return BackgroundGradientHalo, nil
	case "radial-gradient", "radial":
		return BackgroundRadialGradient, nil
	}
	return "", qrerrors.New(qrerrors.ErrCodeInvalidStyle,
		"unknown background style %q (want solid, gradient-halo, or radial-gradient)", s)
}

// normalizeEnum lowercases and joins spaced or underscored enum names so
// "Rounded Rectangle" and "rounded_rectangle" match "rounded-rectangle".
func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.ReplaceAll(s, " ", "-")
}

// Config holds the user-facing style inputs as they arrive from flags,
// preset files, or API requests. Zero values mean "use the default".
type Config struct {
	ModuleColor     string  `json:"module_color,omitempty" toml:"module_color"`
	BackgroundColor string  `json:"background_color,omitempty" toml:"background_color"`
	ModulePixelSize int     `json:"module_pixel_size,omitempty" toml:"module_pixel_size"`
	LogoShape       string  `json:"logo_shape,omitempty" toml:"logo_shape"`
	LogoBackground  string  `json:"logo_background,omitempty" toml:"logo_background"`
	LogoSizeRatio   float64 `json:"logo_size_ratio,omitempty" toml:"logo_size_ratio"`

	// BorderWidth is the logo border stroke in pixels. Zero disables the
	// border; BorderAuto derives it from the module pixel size.
	BorderWidth int    `json:"border_width,omitempty" toml:"border_width"`
	BorderColor string `json:"border_color,omitempty" toml:"border_color"`
}

// ClampFlags records which inputs were adjusted during resolution.
type ClampFlags struct {
	LogoSizeRatio   bool
	ModulePixelSize bool
}

// Any reports whether any value was clamped.
func (f ClampFlags) Any() bool {
	return f.LogoSizeRatio || f.ModulePixelSize
}

// Resolved is the canonical style consumed by the render stages. It is an
// immutable value object; create one only through Resolve.
type Resolved struct {
	ModuleColor     color.RGBA
	BackgroundColor color.RGBA
	ModulePixelSize int
	LogoShape       LogoShape
	LogoBackground  BackgroundStyle
	LogoSizeRatio   float64
	BorderWidth     int
	BorderColor     color.RGBA
	Clamped         ClampFlags
}

// Resolve validates and normalizes a Config.
//
// Unparseable colors fail with INVALID_COLOR; unknown enum names and
// nonsense numbers fail with INVALID_STYLE. A logo size ratio above
// MaxLogoSizeRatio and a module pixel size outside [1, MaxModulePixelSize]
// are clamped, with the adjustment recorded in Resolved.Clamped.
func Resolve(cfg Config) (Resolved, error) {
	var r Resolved
	var err error

	moduleColor := cfg.ModuleColor
	if moduleColor == "" {
		moduleColor = DefaultModuleColor
	}
	if r.ModuleColor, err = ParseHex(moduleColor); err != nil {
		return Resolved{}, err
	}

	backgroundColor := cfg.BackgroundColor
	if backgroundColor == "" {
		backgroundColor = DefaultBackgroundColor
	}
	if r.BackgroundColor, err = ParseHex(backgroundColor); err != nil {
		return Resolved{}, err
	}

	switch {
	case cfg.ModulePixelSize == 0:
		r.ModulePixelSize = DefaultModulePixelSize
	case cfg.ModulePixelSize < 1:
		r.ModulePixelSize = 1
		r.Clamped.ModulePixelSize = true
	case cfg.ModulePixelSize > MaxModulePixelSize:
		r.ModulePixelSize = MaxModulePixelSize
		r.Clamped.ModulePixelSize = true
	default:
		r.ModulePixelSize = cfg.ModulePixelSize
	}

	switch {
	case cfg.LogoSizeRatio == 0:
		r.LogoSizeRatio = DefaultLogoSizeRatio
	case cfg.LogoSizeRatio < 0:
		return Resolved{}, qrerrors.New(qrerrors.ErrCodeInvalidStyle,
			"logo size ratio must be positive, got %g", cfg.LogoSizeRatio)
	case cfg.LogoSizeRatio > MaxLogoSizeRatio:
		r.LogoSizeRatio = MaxLogoSizeRatio
		r.Clamped.LogoSizeRatio = true
	default:
		r.LogoSizeRatio = cfg.LogoSizeRatio
	}

	if r.LogoShape, err = ParseShape(cfg.LogoShape); err != nil {
		return Resolved{}, err
	}
	if r.LogoBackground, err = ParseBackgroundStyle(cfg.LogoBackground); err != nil {
		return Resolved{}, err
	}

	switch {
	case cfg.BorderWidth == BorderAuto:
		r.BorderWidth = proportionalBorder(r.ModulePixelSize)
	case cfg.BorderWidth < 0:
		return Resolved{}, qrerrors.New(qrerrors.ErrCodeInvalidStyle,
			"border width must not be negative, got %d", cfg.BorderWidth)
	default:
		r.BorderWidth = cfg.BorderWidth
	}

	borderColor := cfg.BorderColor
	if borderColor == "" {
		r.BorderColor = r.ModuleColor
	} else if r.BorderColor, err = ParseHex(borderColor); err != nil {
		return Resolved{}, err
	}

	return r, nil
}

// proportionalBorder is the BorderAuto rule: 0.75 of a module, floor 1 px.
func proportionalBorder(modulePixelSize int) int {
	w := int(math.Round(borderSizeFactor * float64(modulePixelSize)))
	if w < 1 {
		w = 1
	}
	return w
}
