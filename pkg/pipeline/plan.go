package pipeline

import (
	"fmt"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/halo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// =============================================================================
// Plan Generation
// =============================================================================

// PlanResult carries the outputs of the plan stage: the resolved style,
// the logo region geometry, and the per-module occlusion plan. Region
// and Plan are nil for plain renders (no logo, solid background).
type PlanResult struct {
	Style    style.Resolved
	Region   *geometry.Region
	Plan     *halo.Plan
	Warnings []string
}

// ComputePlan resolves the style and builds the occlusion plan for m.
//
// A region is reserved whenever a logo source is configured or the
// background style is not solid; otherwise the symbol renders plain and
// Region and Plan stay nil. Style clamps and occlusion budget breaches
// are reported as warnings. With opts.Strict, a budget breach fails
// with LOGO_TOO_LARGE instead.
//
// Plans are ephemeral per-render data and are never cached.
func ComputePlan(m *matrix.Matrix, opts Options) (*PlanResult, error) {
	if m == nil {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix, "no matrix to plan for")
	}

	resolved, err := style.Resolve(opts.Style)
	if err != nil {
		return nil, err
	}

	out := &PlanResult{Style: resolved}
	if resolved.Clamped.LogoSizeRatio {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("logo size ratio capped at %g", style.MaxLogoSizeRatio))
	}
	if resolved.Clamped.ModulePixelSize {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("module pixel size clamped to the range [1, %d]", style.MaxModulePixelSize))
	}

	if !needsRegion(opts, resolved) {
		return out, nil
	}

	region := geometry.ComputeRegion(m, resolved)
	if region.Clamped {
		out.Warnings = append(out.Warnings,
			"logo region shrunk to keep the occluded area scannable")
	}

	if halo.ExceedsBudget(m, region) {
		if opts.Strict {
			return nil, qrerrors.New(qrerrors.ErrCodeLogoTooLarge,
				"logo occludes %d modules, more than level %s error correction can recover",
				region.BBox.Modules(), m.Level())
		}
		out.Warnings = append(out.Warnings, fmt.Sprintf(
			"logo occludes %d modules, more than level %s error correction can recover; shrink the logo or raise the level",
			region.BBox.Modules(), m.Level()))
	}
	if opts.HasLogo() && m.Level() < matrix.LevelHigh {
		out.Warnings = append(out.Warnings,
			"use High error correction when embedding a logo")
	}

	plan := halo.Build(m, region, resolved)
	out.Region = &region
	out.Plan = plan
	return out, nil
}

// needsRegion reports whether the render reserves a logo region. Plain
// renders (no logo, solid background) skip region and plan entirely.
func needsRegion(opts Options, st style.Resolved) bool {
	return opts.HasLogo() || st.LogoBackground != style.BackgroundSolid
}
