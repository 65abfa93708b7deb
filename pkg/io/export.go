package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
)

// document is the on-wire shape of a serialized matrix.
type document struct {
	Size      int      `json:"size"`
	QuietZone int      `json:"quiet_zone"`
	Version   int      `json:"version"`
	Mask      *int     `json:"mask,omitempty"`
	Level     string   `json:"level"`
	Rows      []string `json:"rows"`
}

// WriteJSON encodes a matrix as JSON and writes it to w.
// The output includes all symbol metadata (version, mask, level) and can
// be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(m *matrix.Matrix, w io.Writer) error {
	if m == nil {
		return qrerrors.New(qrerrors.ErrCodeInvalidMatrix, "no matrix to export")
	}

	n := m.Size()
	doc := document{
		Size:      n,
		QuietZone: m.QuietZone(),
		Version:   m.Version(),
		Level:     m.Level().String(),
		Rows:      make([]string, n),
	}
	if mask := m.Mask(); mask != matrix.MaskUnknown {
		doc.Mask = &mask
	}

	var row strings.Builder
	for r := 0; r < n; r++ {
		row.Reset()
		row.Grow(n)
		for c := 0; c < n; c++ {
			if m.Dark(r, c) {
				row.WriteByte('1')
			} else {
				row.WriteByte('0')
			}
		}
		doc.Rows[r] = row.String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode matrix document: %w", err)
	}
	return nil
}

// ExportJSON writes a matrix to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(m *matrix.Matrix, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}
