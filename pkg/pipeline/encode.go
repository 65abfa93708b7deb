package pipeline

import (
	"bytes"

	"github.com/pixelglyph/qrsmith/pkg/matrix"

	qrio "github.com/pixelglyph/qrsmith/pkg/io"
)

// EncodeMatrix runs the encode stage without caching. A pre-encoded
// matrix in opts bypasses the encoder entirely.
func EncodeMatrix(opts Options) (*matrix.Matrix, error) {
	if opts.Matrix != nil {
		return opts.Matrix, nil
	}
	encOpts, err := opts.EncodeOptions()
	if err != nil {
		return nil, err
	}
	return matrix.Encode(opts.Content, encOpts)
}

// matrixBytes serializes a matrix for caching, using the same JSON
// interchange format the CLI exports.
func matrixBytes(m *matrix.Matrix) ([]byte, error) {
	var buf bytes.Buffer
	if err := qrio.WriteJSON(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// matrixFromBytes deserializes a cached matrix.
func matrixFromBytes(data []byte) (*matrix.Matrix, error) {
	return qrio.ReadJSON(bytes.NewReader(data))
}
