// Package halo plans per-module opacity around the logo region.
//
// A plan assigns every module an opacity in [0, 1]: 1 means drawn as-is,
// 0 means suppressed under the logo or its background frame, in between
// means blended toward the background. Plans are ephemeral; they are
// built fresh for each render, consumed by the rasterizer, and never
// cached or shared.
package halo

import (
	"math"

	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// Plan holds the planned opacity for every module the logo region
// affects. Modules outside the affected window are implicitly 1.
type Plan struct {
	window  geometry.ModuleBBox
	opacity []float64
}

// Opacity returns the planned opacity for module (row, col). A nil plan
// leaves every module fully drawn.
func (p *Plan) Opacity(row, col int) float64 {
	if p == nil || !p.window.Contains(row, col) {
		return 1
	}
	return p.opacity[(row-p.window.MinRow)*p.window.Cols()+(col-p.window.MinCol)]
}

// Window returns the module rectangle the plan covers.
func (p *Plan) Window() geometry.ModuleBBox {
	if p == nil {
		return geometry.ModuleBBox{MaxRow: -1, MaxCol: -1}
	}
	return p.window
}

// Counts returns how many modules are fully suppressed and how many are
// partially faded.
func (p *Plan) Counts() (suppressed, faded int) {
	if p == nil {
		return 0, 0
	}
	for _, op := range p.opacity {
		switch {
		case op == 0:
			suppressed++
		case op < 1:
			faded++
		}
	}
	return suppressed, faded
}

// Build computes the occlusion plan for a matrix, region, and resolved
// style.
//
// Each module's pixel-space center is measured against the region
// boundary by signed distance d (negative inside):
//
//   - d <= 0: opacity 0, the logo is drawn over the module.
//   - Solid: opacity 0 while d is within the frame margin, 1 beyond it.
//     No blending.
//   - GradientHalo and RadialGradient: opacity ramps linearly, d divided
//     by the halo width, reaching 1 at the halo's outer edge. A module
//     halfway across the halo gets opacity 0.5 exactly.
//
// Opacity never decreases as d grows, and the plan only materializes the
// region's bounding box expanded by the style's reach; everything beyond
// stays implicitly 1.
func Build(m *matrix.Matrix, g geometry.Region, st style.Resolved) *Plan {
	mps := st.ModulePixelSize
	reach := reachFor(g, st)

	expand := int(math.Ceil(reach/float64(mps))) + 1
	window := g.BBox.Expand(expand, m.Size())

	p := &Plan{
		window:  window,
		opacity: make([]float64, window.Modules()),
	}

	qz := m.QuietZone()
	i := 0
	for row := window.MinRow; row <= window.MaxRow; row++ {
		for col := window.MinCol; col <= window.MaxCol; col++ {
			x, y := geometry.ModuleCenter(qz, mps, row, col)
			d := g.SignedDistance(x, y)
			p.opacity[i] = opacityAt(d, reach, st.LogoBackground)
			i++
		}
	}
	return p
}

// reachFor returns how far beyond the region boundary the style disturbs
// modules: the frame margin for solid backgrounds, the halo width for
// gradient ones.
func reachFor(g geometry.Region, st style.Resolved) float64 {
	if st.LogoBackground == style.BackgroundSolid {
		return g.FrameMargin(st.ModulePixelSize)
	}
	return g.HaloWidth()
}

// opacityAt maps a signed boundary distance to an opacity. Boundaries
// count as inside, matching the region containment rule.
func opacityAt(d, reach float64, bg style.BackgroundStyle) float64 {
	if d <= 0 {
		return 0
	}
	if bg == style.BackgroundSolid {
		if d <= reach {
			return 0
		}
		return 1
	}
	if reach <= 0 || d >= reach {
		return 1
	}
	return d / reach
}

// ExceedsBudget reports whether the region's covered modules outnumber
// what the symbol's error correction level can recover. Callers surface
// this as a warning, or as an error when running strict.
func ExceedsBudget(m *matrix.Matrix, g geometry.Region) bool {
	budget := m.Level().RecoveryRatio() * float64(m.Size()*m.Size())
	return float64(g.BBox.Modules()) > budget
}
