// Package io provides JSON import and export for QR module matrices.
//
// # Overview
//
// This package serializes normalized module matrices to and from a simple
// JSON document. The format is designed for:
//
//   - Inspecting encoder output without rendering an image
//   - Re-rendering a fixed matrix with different styles, skipping the
//     encode stage entirely
//   - Feeding matrices produced by external encoders into the renderer
//   - Round-trip preservation: export, re-import, and render identically
//
// # JSON Format
//
//	{
//	  "size": 21,
//	  "quiet_zone": 4,
//	  "version": 1,
//	  "mask": 3,
//	  "level": "H",
//	  "rows": [
//	    "111111101...",
//	    "100000100...",
//	    ...
//	  ]
//	}
//
// Each entry in "rows" is one module row, top to bottom, with '1' for a
// dark module and '0' for a light one. The quiet zone is never part of
// the rows; it is carried as a width in modules.
//
// Required fields:
//   - rows: the module grid
//   - quiet_zone: quiet-zone width in modules
//
// Optional fields:
//   - size: row count, checked against the rows when present
//   - version: symbol version (derived from the size when omitted)
//   - mask: mask pattern 0-7 (omitted when the encoder did not report one)
//   - level: error correction level "L", "M", "Q", or "H" (defaults to "L")
//
// # Import
//
// Use [ImportJSON] to read a matrix from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	m, err := io.ImportJSON("matrix.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the document structure and the matrix
// constraints (square grid, legal symbol size, version consistency).
// Malformed documents fail with INVALID_MATRIX errors naming the row or
// field that caused the problem.
//
// # Export
//
// Use [ExportJSON] to write a matrix to a file, or [WriteJSON] to write
// to any io.Writer:
//
//	err := io.WriteJSON(m, os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The export includes all symbol metadata the encoder reported, so an
// exported matrix re-imports with identical version, mask, and level.
package io
