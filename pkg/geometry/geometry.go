// Package geometry maps the logo placement between module space and
// pixel space: where the logo region sits, which modules it touches, and
// how far any pixel is from its boundary.
package geometry

import (
	"math"

	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

const (
	// maxModuleAreaRatio caps the region's continuous area at 30% of the
	// symbol area, the legibility limit error correction can absorb.
	maxModuleAreaRatio = 0.30

	// cornerRadiusFactor sets the rounded-rect corner radius relative to
	// the region side.
	cornerRadiusFactor = 0.15

	// haloWidthFactor sets the fade band width relative to the region
	// size.
	haloWidthFactor = 0.25

	// frameMarginFactor sets the solid background frame margin relative
	// to the region size.
	frameMarginFactor = 0.10
)

// ModuleBBox is an inclusive rectangle of module indices.
type ModuleBBox struct {
	MinRow, MinCol int
	MaxRow, MaxCol int
}

// Contains reports whether module (row, col) lies inside the rectangle.
func (b ModuleBBox) Contains(row, col int) bool {
	return row >= b.MinRow && row <= b.MaxRow && col >= b.MinCol && col <= b.MaxCol
}

// Rows returns the rectangle height in modules.
func (b ModuleBBox) Rows() int { return b.MaxRow - b.MinRow + 1 }

// Cols returns the rectangle width in modules.
func (b ModuleBBox) Cols() int { return b.MaxCol - b.MinCol + 1 }

// Modules returns the number of modules the rectangle covers.
func (b ModuleBBox) Modules() int { return b.Rows() * b.Cols() }

// Expand grows the rectangle by n modules on every side, clipped to the
// symbol bounds [0, size).
func (b ModuleBBox) Expand(n, size int) ModuleBBox {
	out := ModuleBBox{
		MinRow: b.MinRow - n,
		MinCol: b.MinCol - n,
		MaxRow: b.MaxRow + n,
		MaxCol: b.MaxCol + n,
	}
	if out.MinRow < 0 {
		out.MinRow = 0
	}
	if out.MinCol < 0 {
		out.MinCol = 0
	}
	if out.MaxRow > size-1 {
		out.MaxRow = size - 1
	}
	if out.MaxCol > size-1 {
		out.MaxCol = size - 1
	}
	return out
}

// Region is the pixel-space area the logo and its background frame
// occupy, always centered on the symbol.
type Region struct {
	Shape style.LogoShape

	// CenterX, CenterY is the region center in pixels, quiet zone
	// included.
	CenterX, CenterY float64

	// HalfSize is the circle radius or half the square side, in pixels.
	HalfSize float64

	// CornerRadius is the rounded-rect corner radius in pixels, zero for
	// the other shapes.
	CornerRadius float64

	// BBox is the smallest module rectangle fully containing the region.
	BBox ModuleBBox

	// Clamped reports that the requested logo size exceeded the module
	// area cap and was shrunk to fit it.
	Clamped bool
}

// Size returns the region diameter or side length in pixels.
func (g Region) Size() float64 { return 2 * g.HalfSize }

// HaloWidth returns the fade band width in pixels: 25% of the region
// size, measured outward from the boundary.
func (g Region) HaloWidth() float64 { return haloWidthFactor * g.Size() }

// FrameMargin returns the solid background frame margin in pixels: one
// module or 10% of the region size, whichever is larger.
func (g Region) FrameMargin(modulePixelSize int) float64 {
	return math.Max(float64(modulePixelSize), frameMarginFactor*g.Size())
}

// ComputeRegion derives the logo region for a matrix and resolved style.
//
// The region size is logoSizeRatio × (N × modulePixelSize); the quiet
// zone shifts the center but never contributes to the size basis. A size
// whose square would occupy more than 30% of the symbol's module area is
// clamped down and flagged.
func ComputeRegion(m *matrix.Matrix, st style.Resolved) Region {
	n := m.Size()
	mps := st.ModulePixelSize
	symbolPx := float64(n * mps)
	center := float64(m.TotalPixels(mps)) / 2

	side := st.LogoSizeRatio * symbolPx
	maxSide := math.Sqrt(maxModuleAreaRatio) * symbolPx
	clamped := false
	if side > maxSide {
		side = maxSide
		clamped = true
	}

	g := Region{
		Shape:    st.LogoShape,
		CenterX:  center,
		CenterY:  center,
		HalfSize: side / 2,
		Clamped:  clamped,
	}
	if st.LogoShape == style.ShapeRoundedRect {
		g.CornerRadius = cornerRadiusFactor * side
	}
	g.BBox = boundingModules(g, m.QuietZone(), mps, n)
	return g
}

// boundingModules converts the region's pixel extent into the smallest
// containing module rectangle, clipped to the symbol.
func boundingModules(g Region, quietZone, mps, size int) ModuleBBox {
	lo := g.CenterX - g.HalfSize
	hi := g.CenterX + g.HalfSize

	first := int(math.Floor(lo/float64(mps))) - quietZone
	last := int(math.Ceil(hi/float64(mps))) - 1 - quietZone

	if first < 0 {
		first = 0
	}
	if last > size-1 {
		last = size - 1
	}
	if last < first {
		last = first
	}
	return ModuleBBox{MinRow: first, MinCol: first, MaxRow: last, MaxCol: last}
}

// ModuleCenter returns the pixel-space center of module (row, col).
func ModuleCenter(quietZone, modulePixelSize, row, col int) (x, y float64) {
	x = (float64(quietZone+col) + 0.5) * float64(modulePixelSize)
	y = (float64(quietZone+row) + 0.5) * float64(modulePixelSize)
	return x, y
}

// SignedDistance returns the distance in pixels from (x, y) to the
// region boundary: negative inside, zero on the boundary, positive
// outside. Circles use Euclidean distance; squares use Chebyshev
// distance; rounded rects use Chebyshev with Euclidean corners.
func (g Region) SignedDistance(x, y float64) float64 {
	dx := x - g.CenterX
	dy := y - g.CenterY

	switch g.Shape {
	case style.ShapeCircle:
		return math.Hypot(dx, dy) - g.HalfSize
	case style.ShapeRoundedRect:
		return roundedBoxDistance(dx, dy, g.HalfSize, g.CornerRadius)
	default:
		return math.Max(math.Abs(dx), math.Abs(dy)) - g.HalfSize
	}
}

// Contains reports whether (x, y) lies inside the region or on its
// boundary.
func (g Region) Contains(x, y float64) bool {
	return g.SignedDistance(x, y) <= 0
}

// roundedBoxDistance is the signed distance to a square of the given
// half size whose corners are rounded with radius r.
func roundedBoxDistance(dx, dy, half, r float64) float64 {
	qx := math.Abs(dx) - (half - r)
	qy := math.Abs(dy) - (half - r)

	outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)
	return outside + inside - r
}
