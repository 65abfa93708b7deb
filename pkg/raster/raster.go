// Package raster renders a planned symbol into a pixel bitmap.
//
// Rendering is deterministic: identical inputs produce byte-identical
// bitmaps. Module squares are written directly into the pixel buffer so
// the plain-symbol output is exact; gradients, logo clipping, and border
// strokes draw through a gg canvas over the same buffer.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/halo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// Render draws the symbol into a freshly allocated bitmap of
// TotalPixels × TotalPixels.
//
// The region and plan describe the logo placement; both nil renders a
// plain symbol. A non-nil region with a nil logo clears (and, for
// radial backgrounds, tints) the region without compositing an image,
// and the border is still stroked when configured. The logo image is
// expected to be prepared to the region size already; it is clipped to
// the region shape and composited source-over, centered.
func Render(m *matrix.Matrix, st style.Resolved, g *geometry.Region, p *halo.Plan, logo image.Image) (*image.RGBA, error) {
	if m == nil {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidInput, "matrix is nil")
	}
	if st.ModulePixelSize < 1 {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidStyle,
			"module pixel size must be at least 1, got %d", st.ModulePixelSize)
	}

	size := m.TotalPixels(st.ModulePixelSize)
	im := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(im, im.Bounds(), image.NewUniform(st.BackgroundColor), image.Point{}, draw.Src)

	if g != nil && st.LogoBackground == style.BackgroundRadialGradient {
		paintRadialFrame(im, *g, st)
	}

	drawModules(im, m, st, g, p)

	if g != nil {
		if logo != nil {
			compositeLogo(im, *g, logo)
		}
		if st.BorderWidth > 0 {
			strokeBorder(im, *g, st)
		}
	}
	return im, nil
}

// drawModules fills one square per dark module, blending partially
// faded modules toward the locally resolved background.
func drawModules(im *image.RGBA, m *matrix.Matrix, st style.Resolved, g *geometry.Region, p *halo.Plan) {
	mps := st.ModulePixelSize
	qz := m.QuietZone()

	for row := 0; row < m.Size(); row++ {
		for col := 0; col < m.Size(); col++ {
			if !m.Dark(row, col) {
				continue
			}
			op := p.Opacity(row, col)
			if op == 0 {
				continue
			}

			c := st.ModuleColor
			if op < 1 {
				x, y := geometry.ModuleCenter(qz, mps, row, col)
				c = style.Lerp(localBackground(g, st, x, y), st.ModuleColor, op)
			}
			fillSquare(im, (qz+col)*mps, (qz+row)*mps, mps, c)
		}
	}
}

// localBackground resolves the background color behind a point: the
// radial frame sample when that style is active, the flat background
// otherwise.
func localBackground(g *geometry.Region, st style.Resolved, x, y float64) color.RGBA {
	if g != nil && st.LogoBackground == style.BackgroundRadialGradient {
		return frameColorAt(*g, st, x, y)
	}
	return st.BackgroundColor
}

// frameColorAt samples the radial frame gradient: module color at the
// region boundary fading to the background color one halo width out.
func frameColorAt(g geometry.Region, st style.Resolved, x, y float64) color.RGBA {
	width := g.HaloWidth()
	if width <= 0 {
		return st.BackgroundColor
	}
	t := clamp01(g.SignedDistance(x, y) / width)
	return style.Lerp(st.ModuleColor, st.BackgroundColor, t)
}

// paintRadialFrame pre-paints the gradient frame pixels before modules
// are drawn, sampling each pixel at its center.
func paintRadialFrame(im *image.RGBA, g geometry.Region, st style.Resolved) {
	width := g.HaloWidth()
	reach := g.HalfSize + width
	bounds := im.Bounds()

	lo := int(math.Floor(g.CenterX - reach))
	hi := int(math.Ceil(g.CenterX + reach))
	if lo < bounds.Min.X {
		lo = bounds.Min.X
	}
	if hi > bounds.Max.X {
		hi = bounds.Max.X
	}

	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			d := g.SignedDistance(float64(x)+0.5, float64(y)+0.5)
			if d >= width {
				continue
			}
			t := clamp01(d / width)
			im.SetRGBA(x, y, style.Lerp(st.ModuleColor, st.BackgroundColor, t))
		}
	}
}

// compositeLogo clips the logo to the region shape and draws it
// source-over, centered on the region.
func compositeLogo(im *image.RGBA, g geometry.Region, logo image.Image) {
	dc := gg.NewContextForRGBA(im)
	dc.Push()
	regionPath(dc, g, 0)
	dc.Clip()
	dc.DrawImageAnchored(logo, int(math.Round(g.CenterX)), int(math.Round(g.CenterY)), 0.5, 0.5)
	dc.Pop()
}

// strokeBorder draws the border ring just outside the region boundary:
// inner edge on the boundary, outer edge one border width out.
func strokeBorder(im *image.RGBA, g geometry.Region, st style.Resolved) {
	dc := gg.NewContextForRGBA(im)
	dc.SetColor(st.BorderColor)
	dc.SetLineWidth(float64(st.BorderWidth))
	regionPath(dc, g, float64(st.BorderWidth)/2)
	dc.Stroke()
}

// regionPath traces the region outline grown outward by offset pixels.
func regionPath(dc *gg.Context, g geometry.Region, offset float64) {
	half := g.HalfSize + offset
	switch g.Shape {
	case style.ShapeCircle:
		dc.DrawCircle(g.CenterX, g.CenterY, half)
	case style.ShapeRoundedRect:
		dc.DrawRoundedRectangle(g.CenterX-half, g.CenterY-half, 2*half, 2*half, g.CornerRadius+offset)
	default:
		dc.DrawRectangle(g.CenterX-half, g.CenterY-half, 2*half, 2*half)
	}
}

func fillSquare(im *image.RGBA, x0, y0, size int, c color.RGBA) {
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			im.SetRGBA(x, y, c)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
