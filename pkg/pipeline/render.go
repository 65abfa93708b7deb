package pipeline

import (
	"bytes"
	"image"
	"math"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/logo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/raster"
)

// RenderImage runs the raster stage without caching: composite the
// symbol and encode every requested format from the one bitmap.
func RenderImage(m *matrix.Matrix, plan *PlanResult, asset *logo.Asset, opts Options) (map[string][]byte, error) {
	if plan == nil {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidInput, "no plan to render from")
	}

	prepared, err := prepareLogo(plan, asset, opts)
	if err != nil {
		return nil, err
	}

	im, err := raster.Render(m, plan.Style, plan.Region, plan.Plan, prepared)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var buf bytes.Buffer
		switch format {
		case FormatJPEG:
			var jpegOpts []raster.JPEGOption
			if opts.JPEGQuality > 0 {
				jpegOpts = append(jpegOpts, raster.WithQuality(opts.JPEGQuality))
			}
			err = raster.EncodeJPEG(&buf, im, jpegOpts...)
		default:
			err = raster.EncodePNG(&buf, im)
		}
		if err != nil {
			return nil, err
		}
		artifacts[format] = buf.Bytes()
	}

	return artifacts, nil
}

// prepareLogo scales the logo asset to the region size using the
// configured fit mode. Returns nil when there is nothing to composite.
func prepareLogo(plan *PlanResult, asset *logo.Asset, opts Options) (image.Image, error) {
	if asset == nil || plan.Region == nil {
		return nil, nil
	}
	fit, err := logo.ParseFitMode(opts.LogoFit)
	if err != nil {
		return nil, err
	}
	size := int(math.Round(plan.Region.Size()))
	if size < 1 {
		size = 1
	}
	return logo.Prepare(asset, size, fit)
}
