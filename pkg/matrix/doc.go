// Package matrix provides the normalized QR module grid consumed by the
// rendering pipeline.
//
// # Overview
//
// QR symbol encoding (bit streams, Reed-Solomon blocks, mask scoring) is
// delegated to external encoder libraries treated as black boxes. This
// package wraps their output into a single normalized boundary: an
// immutable N×N boolean grid plus quiet-zone width and symbol metadata
// (version, mask pattern, error correction level). Everything downstream -
// geometry, occlusion planning, rasterizing - works against [Matrix] and
// never sees an encoder type.
//
// # Normalization
//
// Create a Matrix from a raw grid with [New], which validates the encoder
// output: the grid must be square, non-empty, and a legal QR symbol size
// (N = 4×version + 17). Malformed output fails with an INVALID_MATRIX
// error. The grid is copied on construction; a Matrix never aliases
// encoder-owned memory and is safe to share between concurrent renders.
//
// # Encoders
//
// [Encode] builds a Matrix directly from a text payload:
//
//	m, err := matrix.Encode("https://example.com", matrix.EncodeOptions{
//	    Level: matrix.LevelHigh,
//	})
//
// Two encoder backends are wired: yeqown/go-qrcode (the default; its
// writer contract hands us the finalized grid) and skip2/go-qrcode (used
// automatically when a version range is forced, which yeqown does not
// support). Neither library reports the chosen mask pattern, so
// [Matrix.Mask] returns [MaskUnknown] for encoded symbols; externally
// sourced grids may record one via [WithMask].
package matrix
