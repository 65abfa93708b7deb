package io

import (
	"encoding/json"
	"io"
	"os"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
)

// ReadJSON decodes a matrix document from r.
//
// The input must be a JSON object with a "rows" array of '0'/'1' strings
// and a "quiet_zone" width. Optional fields:
//   - size: row count, checked against the rows when present
//   - version: symbol version (derived from the size when omitted)
//   - mask: mask pattern 0-7
//   - level: "L", "M", "Q", or "H" (defaults to "L")
//
// ReadJSON returns an INVALID_MATRIX error if:
//   - The JSON is malformed
//   - A row contains characters other than '0' and '1'
//   - The size field disagrees with the row count
//   - The grid is not square or not a legal QR symbol size
//   - The version or mask is inconsistent with the grid
//
// The returned matrix is independent of r and immutable. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (*matrix.Matrix, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidMatrix, err, "decode matrix document")
	}

	if doc.Size != 0 && doc.Size != len(doc.Rows) {
		return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
			"size field is %d but document has %d rows", doc.Size, len(doc.Rows))
	}

	grid := make([][]bool, len(doc.Rows))
	for r, row := range doc.Rows {
		grid[r] = make([]bool, len(row))
		for c := 0; c < len(row); c++ {
			switch row[c] {
			case '1':
				grid[r][c] = true
			case '0':
			default:
				return nil, qrerrors.New(qrerrors.ErrCodeInvalidMatrix,
					"row %d column %d: want '0' or '1', got %q", r, c, row[c])
			}
		}
	}

	var opts []matrix.Option
	if doc.Version != 0 {
		opts = append(opts, matrix.WithVersion(doc.Version))
	}
	if doc.Mask != nil {
		opts = append(opts, matrix.WithMask(*doc.Mask))
	}
	if doc.Level != "" {
		level, err := matrix.ParseLevel(doc.Level)
		if err != nil {
			return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidMatrix, err, "level field")
		}
		opts = append(opts, matrix.WithLevel(level))
	}

	return matrix.New(grid, doc.QuietZone, opts...)
}

// ImportJSON reads a JSON file at path and returns the decoded matrix.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. A missing file fails with FILE_NOT_FOUND; malformed documents
// return the same INVALID_MATRIX errors as [ReadJSON].
func ImportJSON(path string) (*matrix.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qrerrors.New(qrerrors.ErrCodeFileNotFound, "matrix file not found: %s", path)
		}
		return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidMatrix, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
