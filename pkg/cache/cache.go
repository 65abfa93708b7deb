// Package cache provides caching for encoded matrices, fetched logos, and
// rendered artifacts.
//
// The pipeline caches two stages: the encoded module matrix (content +
// encoder options fully determine it) and the final rendered image (matrix +
// style fully determine it). Occlusion plans are never cached - they are
// ephemeral per-render data. Logo bytes fetched from URLs are cached
// separately so repeated renders don't refetch.
//
// # Backends
//
//   - FileCache: file-based cache for CLI usage (XDG cache dir)
//   - RedisCache: shared cache for service deployments
//   - NullCache: no-op cache for tests or --no-cache
//
// # Keys
//
// Keys are generated by a Keyer so CLI and server agree on key layout.
// The DefaultKeyer hashes all inputs with SHA-256; ScopedKeyer adds a
// prefix for multi-tenant isolation.
package cache

import (
	"context"
	"time"
)

// TTLs for each cached stage.
const (
	// TTLMatrix is how long encoded module matrices are cached.
	// Encoding is deterministic, so these only expire to bound disk usage.
	TTLMatrix = 30 * 24 * time.Hour

	// TTLLogo is how long logo bytes fetched from URLs are cached.
	TTLLogo = 24 * time.Hour

	// TTLArtifact is how long rendered images are cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the interface for cache backends.
// All methods must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// MatrixKey generates a key for an encoded module matrix.
	MatrixKey(content string, opts MatrixKeyOpts) string

	// LogoKey generates a key for fetched logo bytes.
	LogoKey(url string) string

	// ImageKey generates a key for a rendered artifact.
	ImageKey(matrixHash string, opts ImageKeyOpts) string
}

// MatrixKeyOpts captures the encode options that determine a matrix.
type MatrixKeyOpts struct {
	Encoder    string
	Level      string
	MinVersion int
	MaxVersion int
	QuietZone  int
}

// ImageKeyOpts captures the style options that determine a rendered image.
type ImageKeyOpts struct {
	Format          string
	ModuleColor     string
	BackgroundColor string
	ModulePixelSize int
	LogoShape       string
	LogoBackground  string
	LogoSizeRatio   float64
	LogoHash        string // hash of the logo source bytes, "" when no logo
	LogoFit         string
	BorderWidth     int
	BorderColor     string
	JPEGQuality     int
}

// DefaultKeyer generates hash-based cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// MatrixKey generates a key for an encoded module matrix.
func (k *DefaultKeyer) MatrixKey(content string, opts MatrixKeyOpts) string {
	return hashKey("matrix", content, opts)
}

// LogoKey generates a key for fetched logo bytes.
func (k *DefaultKeyer) LogoKey(url string) string {
	return hashKey("logo", url)
}

// ImageKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ImageKey(matrixHash string, opts ImageKeyOpts) string {
	return hashKey("image", matrixHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
