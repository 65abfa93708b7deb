package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pixelglyph/qrsmith/pkg/cache"
	"github.com/pixelglyph/qrsmith/pkg/logo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, fetcher, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Fetcher *logo.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: logo.NewFetcher(),
	}
}

// Execute runs the complete encode → plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Encode
	encodeStart := time.Now()
	hooks.OnEncodeStart(ctx, opts.Encoder, len(opts.Content))
	m, encodeHit, err := r.EncodeWithCacheInfo(ctx, opts)
	result.Stats.EncodeTime = time.Since(encodeStart)
	if err != nil {
		hooks.OnEncodeComplete(ctx, opts.Encoder, 0, result.Stats.EncodeTime, err)
		return nil, err
	}
	hooks.OnEncodeComplete(ctx, opts.Encoder, m.Version(), result.Stats.EncodeTime, nil)
	result.Matrix = m
	result.Stats.Version = m.Version()
	result.Stats.SymbolSize = m.Size()
	result.CacheInfo.EncodeHit = encodeHit

	// Compute the matrix hash for artifact cache keys and API responses
	if data, err := matrixBytes(m); err == nil {
		result.MatrixHash = cache.Hash(data)
	}

	r.Logger.Info("encoded symbol",
		"version", m.Version(),
		"modules", m.Size(),
		"level", m.Level(),
		"cached", encodeHit,
		"duration", result.Stats.EncodeTime)

	// Stage 2: Plan (ephemeral, never cached)
	planStart := time.Now()
	hooks.OnPlanStart(ctx, opts.Style.LogoShape, m.Size())
	plan, err := ComputePlan(m, opts)
	result.Stats.PlanTime = time.Since(planStart)
	if err != nil {
		hooks.OnPlanComplete(ctx, opts.Style.LogoShape, 0, 0, result.Stats.PlanTime, err)
		return nil, err
	}
	suppressed, faded := plan.Plan.Counts()
	hooks.OnPlanComplete(ctx, opts.Style.LogoShape, suppressed, faded, result.Stats.PlanTime, nil)
	result.Region = plan.Region
	result.Plan = plan.Plan
	result.Warnings = plan.Warnings
	result.Stats.WidthPx = m.TotalPixels(plan.Style.ModulePixelSize)

	if plan.Region != nil {
		r.Logger.Info("planned occlusion",
			"shape", plan.Style.LogoShape,
			"suppressed", suppressed,
			"faded", faded,
			"duration", result.Stats.PlanTime)
	} else {
		r.Logger.Debug("plain render, no logo region")
	}
	for _, w := range plan.Warnings {
		r.Logger.Warn(w)
	}

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats[0], result.Stats.WidthPx)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, m, result.MatrixHash, plan, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats[0], 0, result.Stats.RenderTime, err)
		return nil, err
	}
	hooks.OnRenderComplete(ctx, opts.Formats[0], artifactBytes(artifacts), result.Stats.RenderTime, nil)
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered image",
		"formats", opts.Formats,
		"width", result.Stats.WidthPx,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// EncodeWithCacheInfo encodes the payload with caching and returns cache hit info.
// Pre-encoded matrices pass through without touching the cache.
func (r *Runner) EncodeWithCacheInfo(ctx context.Context, opts Options) (*matrix.Matrix, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForEncode(); err != nil {
		return nil, false, err
	}

	if opts.Matrix != nil {
		return opts.Matrix, false, nil
	}

	cacheKey := r.Keyer.MatrixKey(opts.Content, opts.MatrixKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if m, err := matrixFromBytes(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "matrix")
				return m, true, nil // Cache hit
			}
			// Undecodable entry - fall through to re-encode
		}
		observability.Cache().OnCacheMiss(ctx, "matrix")
	}

	// Encode
	m, err := EncodeMatrix(opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := matrixBytes(m); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMatrix)
		observability.Cache().OnCacheSet(ctx, "matrix", len(data))
	}

	return m, false, nil // Cache miss
}

// Encode is a convenience wrapper that calls EncodeWithCacheInfo and discards the cache hit info.
func (r *Runner) Encode(ctx context.Context, opts Options) (*matrix.Matrix, error) {
	m, _, err := r.EncodeWithCacheInfo(ctx, opts)
	return m, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
// The matrixHash identifies the matrix in artifact cache keys; plan must come
// from ComputePlan for the same matrix and options.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *matrix.Matrix, matrixHash string, plan *PlanResult, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Resolve the logo up front - artifact keys include its hash.
	asset, err := r.resolveLogo(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	logoHash := ""
	if asset != nil {
		logoHash = asset.Hash()
	}

	// Try to get all formats from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ImageKey(matrixHash, opts.ImageKeyOpts(format, plan.Style, logoHash))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "image")
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, "image")
	}

	// Render all formats
	rendered, err := RenderImage(m, plan, asset, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ImageKey(matrixHash, opts.ImageKeyOpts(format, plan.Style, logoHash))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, m *matrix.Matrix, matrixHash string, plan *PlanResult, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, m, matrixHash, plan, opts)
	return artifacts, err
}

// resolveLogo loads the configured logo source, if any.
func (r *Runner) resolveLogo(ctx context.Context, opts Options) (*logo.Asset, error) {
	switch {
	case len(opts.LogoBytes) > 0:
		return logo.FromBytes(opts.LogoBytes)
	case opts.LogoPath != "":
		return logo.FromFile(opts.LogoPath)
	case opts.LogoURL != "":
		return r.fetchLogo(ctx, opts)
	default:
		return nil, nil
	}
}

// fetchLogo downloads a logo URL, caching the raw bytes so repeated
// renders skip the network round trip.
func (r *Runner) fetchLogo(ctx context.Context, opts Options) (*logo.Asset, error) {
	cacheKey := r.Keyer.LogoKey(opts.LogoURL)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if a, err := logo.FromBytes(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "logo")
				return a, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "logo")
	}

	fetcher := r.Fetcher
	if fetcher == nil {
		fetcher = logo.NewFetcher()
	}
	a, err := fetcher.Fetch(ctx, opts.LogoURL)
	if err != nil {
		return nil, err
	}

	_ = r.Cache.Set(ctx, cacheKey, a.Bytes(), cache.TTLLogo)
	observability.Cache().OnCacheSet(ctx, "logo", len(a.Bytes()))
	return a, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// artifactBytes sums the encoded sizes across formats.
func artifactBytes(artifacts map[string][]byte) int {
	total := 0
	for _, data := range artifacts {
		total += len(data)
	}
	return total
}
