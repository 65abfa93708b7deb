// Package pkg provides the core libraries for qrsmith QR symbol rendering.
//
// # Overview
//
// qrsmith turns text payloads into styled QR images where a logo sits in a
// cleared region of the symbol and a halo fades the surrounding modules.
// The pkg directory is organized into five main areas:
//
//  1. [matrix] - Symbol encoding (encoder backends, normalized module matrix)
//  2. [style], [geometry], [halo] - Render planning (style resolution, logo placement, occlusion)
//  3. [raster], [logo] - Rasterization (pixel drawing, logo preparation)
//  4. [pipeline], [cache] - Orchestration and caching
//  5. [errors], [httputil], [observability], [io], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through qrsmith:
//
//	Text payload
//	         ↓
//	    [matrix] package (encode to a normalized module matrix)
//	         ↓
//	    [style] + [geometry] packages (resolve style, place the logo region)
//	         ↓
//	    [halo] package (per-module occlusion plan)
//	         ↓
//	    [raster] package (draw modules, halo, and logo)
//	         ↓
//	    PNG/JPEG output
//
// # Quick Start
//
// Encode a payload and render a logo-branded symbol:
//
//	import (
//	    "context"
//	    "github.com/pixelglyph/qrsmith/pkg/cache"
//	    "github.com/pixelglyph/qrsmith/pkg/pipeline"
//	    "github.com/pixelglyph/qrsmith/pkg/style"
//	)
//
//	// 1. Build a runner (nil cache and logger select no-op defaults)
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//
//	// 2. Describe the render
//	opts := pipeline.Options{
//	    Content:  "https://example.com",
//	    Level:    "h",
//	    LogoPath: "logo.png",
//	    Style:    style.Config{LogoShape: "circle", LogoBackground: "gradient-halo"},
//	}
//
//	// 3. Execute the pipeline
//	result, _ := runner.Execute(context.Background(), opts)
//
//	// 4. Use the artifacts
//	png := result.Artifacts["png"]
//	for _, w := range result.Warnings {
//	    fmt.Println("warning:", w)
//	}
//
// # Main Packages
//
// ## Encoding
//
// [matrix] - Normalized QR module matrix plus encoder backends. The matrix
// records the module grid, quiet zone, version, mask, and error correction
// level; two interchangeable backends produce it, one supporting version
// bounds and one not.
//
// ## Render Planning
//
// [style] - Resolves user-facing styling inputs (hex colors, shape and
// background names, sizes) into the canonical parameters consumed by the
// later stages. Out-of-range values are clamped with the adjustment
// recorded, never silently.
//
// [geometry] - Maps the logo placement between module space and pixel
// space: where the region sits, which modules it touches, and how far any
// pixel is from its boundary.
//
// [halo] - Plans per-module opacity around the logo region. Opacity 1
// draws a module as-is, 0 suppresses it, in between fades it toward the
// background. The package also measures the occlusion footprint against
// what the symbol's error correction level can recover.
//
// ## Rasterization
//
// [raster] - Deterministic pixel rendering. Module squares are written
// directly into the bitmap; gradients, logo clipping, and border strokes
// draw through a canvas over the same buffer. Encodes PNG and JPEG.
//
// [logo] - Loads logo images from files, raw bytes, or URLs, and prepares
// them for compositing (resize to the region, fit modes, hashing for
// cache keys).
//
// ## Orchestration
//
// [pipeline] - The complete encode → plan → render pipeline used by CLI
// and API. The Runner adds caching around the encode and render stages;
// occlusion plans are rebuilt on every render.
//
// [cache] - Caching for encoded matrices, fetched logos, and rendered
// artifacts. FileCache for the CLI (XDG cache dir), RedisCache for
// services, NullCache to disable caching.
//
// ## Infrastructure
//
// [errors] - Coded errors with user-facing messages. Every failure path
// carries a stable code (INVALID_INPUT, LOGO_TOO_LARGE, NETWORK_ERROR,
// and so on) that callers map to exit codes or HTTP statuses.
//
// [httputil] - HTTP client with retry and backoff for logo fetching.
//
// [observability] - Hook registries for pipeline, cache, and HTTP events.
// Backends register at startup; everything defaults to no-ops.
//
// [io] - JSON import and export for module matrices, so encoder output
// can be inspected, stored, and re-rendered without re-encoding.
//
// [buildinfo] - Version, commit, and build date stamped at link time.
//
// # Common Workflows
//
// Encode without rendering:
//
//	m, _ := matrix.Encode("hello", matrix.EncodeOptions{Level: matrix.LevelHigh})
//	fmt.Println(m.Version(), m.Size())
//
// Export a matrix for later re-rendering:
//
//	_ = qrio.ExportJSON(m, "matrix.json")
//
// Render a pre-encoded matrix with a different look:
//
//	opts := pipeline.Options{Matrix: m, Style: style.Config{ModuleColor: "#1a1a2e"}}
//	plan, _ := pipeline.ComputePlan(m, opts)
//	artifacts, _ := pipeline.RenderImage(m, plan, nil, opts)
//
// Check the occlusion budget before committing to a style:
//
//	region := geometry.ComputeRegion(m, resolved)
//	if halo.ExceedsBudget(m, region) {
//	    fmt.Println("logo occludes more than the level can recover")
//	}
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/halo/...        # Specific package
//	go test -run TestResolve      # Specific behavior
//
// [matrix]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/matrix
// [style]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/style
// [geometry]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/geometry
// [halo]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/halo
// [raster]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/raster
// [logo]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/logo
// [pipeline]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/cache
// [errors]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/observability
// [io]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/io
// [buildinfo]: https://pkg.go.dev/github.com/pixelglyph/qrsmith/pkg/buildinfo
package pkg
