package style

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// ParseHex parses a hex RGB triple into an opaque color. Accepted forms
// are "#RRGGBB" and the shorthand "#RGB", case-insensitive, with the
// leading "#" optional. Failures return an INVALID_COLOR error.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3:
		var expanded strings.Builder
		for _, r := range hex {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		hex = expanded.String()
	case 6:
	default:
		return color.RGBA{}, qrerrors.New(qrerrors.ErrCodeInvalidColor,
			"invalid color %q: want #RGB or #RRGGBB", s)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.RGBA{}, qrerrors.New(qrerrors.ErrCodeInvalidColor,
				"invalid color %q: not a hex triple", s)
		}
		channels[i] = uint8(v)
	}

	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 0xff}, nil
}

// FormatHex returns the lowercase "#rrggbb" form of a color. Alpha is
// dropped; it is used for cache keys and diagnostics, not compositing.
func FormatHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Lerp linearly interpolates every channel from a to b by t. Values of t
// outside [0, 1] are clamped, and channels round to the nearest step.
func Lerp(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return color.RGBA{
		R: lerpChannel(a.R, b.R, t),
		G: lerpChannel(a.G, b.G, t),
		B: lerpChannel(a.B, b.B, t),
		A: lerpChannel(a.A, b.A, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
