package logo

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// FitMode selects how a logo is scaled into its square region.
type FitMode string

const (
	// FitCover scales preserving aspect ratio and center-crops to fill
	// the region.
	FitCover FitMode = "cover"

	// FitStretch scales each axis independently, distorting non-square
	// sources.
	FitStretch FitMode = "stretch"
)

// ParseFitMode normalizes a user-supplied fit mode label. The empty
// string means FitCover.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cover":
		return FitCover, nil
	case "stretch":
		return FitStretch, nil
	default:
		return "", qrerrors.New(qrerrors.ErrCodeInvalidInput, "unknown fit mode %q (want cover or stretch)", s)
	}
}

// Prepare scales the asset to a size x size pixel image ready for
// compositing. Cover mode crops, stretch mode distorts.
func Prepare(a *Asset, size int, mode FitMode) (image.Image, error) {
	if a == nil {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidLogo, "no logo asset to prepare")
	}
	if size < 1 {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidInput, "logo target size %d is below 1 pixel", size)
	}

	switch mode {
	case FitStretch:
		return resize.Resize(uint(size), uint(size), a.Image(), resize.Lanczos3), nil
	default:
		return imaging.Fill(a.Image(), size, size, imaging.Center, imaging.Lanczos), nil
	}
}
