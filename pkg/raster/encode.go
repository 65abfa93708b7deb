package raster

import (
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// Format identifies an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// DefaultJPEGQuality is the quality used when none is configured.
const DefaultJPEGQuality = 90

// ParseFormat converts a format name into a Format. The empty string
// selects PNG, the default artifact format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return "", qrerrors.New(qrerrors.ErrCodeInvalidFormat,
		"unknown image format %q (want png or jpeg)", s)
}

// PNGOption configures PNG encoding.
type PNGOption func(*pngEncoder)

type pngEncoder struct {
	level png.CompressionLevel
}

// WithCompressionLevel sets the PNG compression level (default
// png.DefaultCompression).
func WithCompressionLevel(l png.CompressionLevel) PNGOption {
	return func(e *pngEncoder) { e.level = l }
}

// EncodePNG writes the bitmap to w as PNG.
func EncodePNG(w io.Writer, im image.Image, opts ...PNGOption) error {
	e := pngEncoder{level: png.DefaultCompression}
	for _, opt := range opts {
		opt(&e)
	}

	enc := png.Encoder{CompressionLevel: e.level}
	if err := enc.Encode(w, im); err != nil {
		return qrerrors.Wrap(qrerrors.ErrCodeInternal, err, "encode png")
	}
	return nil
}

// JPEGOption configures JPEG encoding.
type JPEGOption func(*jpegEncoder)

type jpegEncoder struct {
	quality int
}

// WithQuality sets the JPEG quality (default DefaultJPEGQuality). Values
// are clamped to [1, 100].
func WithQuality(q int) JPEGOption {
	return func(e *jpegEncoder) { e.quality = q }
}

// EncodeJPEG writes the bitmap to w as JPEG.
func EncodeJPEG(w io.Writer, im image.Image, opts ...JPEGOption) error {
	e := jpegEncoder{quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&e)
	}
	if e.quality < 1 {
		e.quality = 1
	}
	if e.quality > 100 {
		e.quality = 100
	}

	if err := jpeg.Encode(w, im, &jpeg.Options{Quality: e.quality}); err != nil {
		return qrerrors.Wrap(qrerrors.ErrCodeInternal, err, "encode jpeg")
	}
	return nil
}

// Encode writes the bitmap in the given format with default options.
func Encode(w io.Writer, im image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return EncodePNG(w, im)
	case FormatJPEG:
		return EncodeJPEG(w, im)
	}
	return qrerrors.New(qrerrors.ErrCodeInvalidFormat, "unknown image format %q", f)
}
