// Package logo loads, fetches, and prepares logo images for
// compositing into a rendered symbol.
package logo

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"io"
	"os"

	// Register decoders for the formats logos commonly arrive in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// Asset is a decoded logo image, immutable once loaded.
type Asset struct {
	img    image.Image
	src    []byte
	format string
	hash   string
}

// Image returns the decoded image.
func (a *Asset) Image() image.Image { return a.img }

// Bytes returns the encoded source bytes. Callers must treat the slice
// as read-only; it backs the asset's hash and cache entries.
func (a *Asset) Bytes() []byte { return a.src }

// Format returns the decoded source format name ("png", "jpeg", ...).
func (a *Asset) Format() string { return a.format }

// Hash returns the hex SHA-256 of the encoded source bytes. It
// identifies the asset in cache keys.
func (a *Asset) Hash() string { return a.hash }

// Bounds returns the decoded image dimensions.
func (a *Asset) Bounds() image.Rectangle { return a.img.Bounds() }

// FromBytes decodes raw image bytes into an Asset. Undecodable data
// fails with INVALID_LOGO.
func FromBytes(data []byte) (*Asset, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidLogo, err, "decode logo image")
	}

	sum := sha256.Sum256(data)
	return &Asset{
		img:    img,
		src:    data,
		format: format,
		hash:   hex.EncodeToString(sum[:]),
	}, nil
}

// FromReader reads r to the end and decodes the result.
func FromReader(r io.Reader) (*Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidLogo, err, "read logo data")
	}
	return FromBytes(data)
}

// FromFile loads and decodes the image at path.
func FromFile(path string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, qrerrors.New(qrerrors.ErrCodeFileNotFound, "logo file not found: %s", path)
		}
		return nil, qrerrors.Wrap(qrerrors.ErrCodeInvalidLogo, err, "read logo file %s", path)
	}
	return FromBytes(data)
}
