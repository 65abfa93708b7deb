package matrix

import (
	"fmt"
	"strings"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// DefaultQuietZone is the quiet-zone width in modules recommended by the
// QR specification.
const DefaultQuietZone = 4

// MaskUnknown marks a matrix whose encoder did not report the mask
// pattern it selected.
const MaskUnknown = -1

const (
	minVersion = 1
	maxVersion = 40
)

// Matrix is an immutable, normalized QR module grid.
//
// The grid is square (N×N where N = 4×version + 17) and indexed
// [row][col] with true meaning a dark module. The quiet zone is not part
// of the grid; it is carried as a width in modules and applied by the
// rasterizer. A Matrix is safe for concurrent use.
type Matrix struct {
	grid      [][]bool
	size      int
	quietZone int
	version   int
	mask      int
	level     ECLevel
}

// Option sets optional symbol metadata during construction.
type Option func(*Matrix)

// WithVersion records the symbol version reported by the encoder. New
// rejects versions inconsistent with the grid size.
func WithVersion(v int) Option {
	return func(m *Matrix) { m.version = v }
}

// WithMask records the mask pattern (0-7) reported by the encoder.
func WithMask(mask int) Option {
	return func(m *Matrix) { m.mask = mask }
}

// WithLevel records the error correction level the symbol was encoded
// with.
func WithLevel(level ECLevel) Option {
	return func(m *Matrix) { m.level = level }
}

// New normalizes a raw encoder grid into a Matrix.
//
// The grid must be non-empty, square, and a legal QR symbol size. The
// quiet zone width must be zero or positive. The grid is deep-copied, so
// the caller may reuse its slices afterwards. Violations return an
// INVALID_MATRIX error.
func New(grid [][]bool, quietZone int, opts ...Option) (*Matrix, error) {
	n := len(grid)
	if n == 0 {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix, "matrix is empty")
	}
	for r, row := range grid {
		if len(row) != n {
			return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
				"matrix is not square: row %d has %d modules, want %d", r, len(row), n)
		}
	}
	if quietZone < 0 {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"quiet zone must not be negative, got %d", quietZone)
	}
	if (n-17)%4 != 0 {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"%d modules is not a valid QR symbol size", n)
	}

	m := &Matrix{
		grid:      make([][]bool, n),
		size:      n,
		quietZone: quietZone,
		version:   (n - 17) / 4,
		mask:      MaskUnknown,
	}
	for r := range grid {
		m.grid[r] = append([]bool(nil), grid[r]...)
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.version < minVersion || m.version > maxVersion {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"version %d out of range [%d, %d]", m.version, minVersion, maxVersion)
	}
	if 4*m.version+17 != n {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"%d modules does not match version %d (want %d)", n, m.version, 4*m.version+17)
	}
	if m.mask != MaskUnknown && (m.mask < 0 || m.mask > 7) {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"mask pattern %d out of range [0, 7]", m.mask)
	}
	return m, nil
}

// Size returns the symbol width N in modules, excluding the quiet zone.
func (m *Matrix) Size() int { return m.size }

// QuietZone returns the quiet-zone width in modules.
func (m *Matrix) QuietZone() int { return m.quietZone }

// Version returns the QR symbol version (1-40).
func (m *Matrix) Version() int { return m.version }

// Mask returns the mask pattern, or MaskUnknown when the encoder did not
// report one.
func (m *Matrix) Mask() int { return m.mask }

// Level returns the error correction level the symbol was encoded with.
func (m *Matrix) Level() ECLevel { return m.level }

// Dark reports whether the module at (row, col) is dark. Coordinates
// outside the symbol, including the quiet zone, are light.
func (m *Matrix) Dark(row, col int) bool {
	if row < 0 || row >= m.size || col < 0 || col >= m.size {
		return false
	}
	return m.grid[row][col]
}

// TotalPixels returns the rendered image width in pixels for the given
// module pixel size: (N + 2×quietZone) × modulePixelSize.
func (m *Matrix) TotalPixels(modulePixelSize int) int {
	return (m.size + 2*m.quietZone) * modulePixelSize
}

// DarkCount returns the number of dark modules in the symbol.
func (m *Matrix) DarkCount() int {
	count := 0
	for _, row := range m.grid {
		for _, dark := range row {
			if dark {
				count++
			}
		}
	}
	return count
}

// DarkRatio returns the fraction of modules that are dark.
func (m *Matrix) DarkRatio() float64 {
	return float64(m.DarkCount()) / float64(m.size*m.size)
}

// String renders the symbol as ASCII art, one text row per module row,
// with dark modules as "##". Intended for terminal inspection.
func (m *Matrix) String() string {
	var b strings.Builder
	b.Grow(m.size * (2*m.size + 1))
	for r := 0; r < m.size; r++ {
		for c := 0; c < m.size; c++ {
			if m.grid[r][c] {
				b.WriteString("##")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var _ fmt.Stringer = (*Matrix)(nil)
