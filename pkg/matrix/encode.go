package matrix

import (
	"strings"

	skip2 "github.com/skip2/go-qrcode"
	yeqown "github.com/yeqown/go-qrcode/v2"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// ECLevel is a QR error correction level.
type ECLevel int

// Error correction levels in increasing order of redundancy.
const (
	LevelLow      ECLevel = iota // recovers ~7% of codewords
	LevelMedium                  // recovers ~15% of codewords
	LevelQuartile                // recovers ~25% of codewords
	LevelHigh                    // recovers ~30% of codewords
)

// ParseLevel converts a level name ("L", "M", "Q", "H", or the long
// forms "low", "medium", "quartile", "high") into an ECLevel.
func ParseLevel(s string) (ECLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return LevelLow, nil
	case "m", "medium":
		return LevelMedium, nil
	case "q", "quartile":
		return LevelQuartile, nil
	case "h", "high", "highest":
		return LevelHigh, nil
	}
	return LevelMedium, qrerrors.New(qrerrors.ErrCodeInvalidInput,
		"unknown error correction level %q (want L, M, Q, or H)", s)
}

// String returns the single-letter level name.
func (l ECLevel) String() string {
	switch l {
	case LevelLow:
		return "L"
	case LevelQuartile:
		return "Q"
	case LevelHigh:
		return "H"
	default:
		return "M"
	}
}

// RecoveryRatio returns the fraction of codewords the level can restore.
// Occlusion planning uses it to budget how much of the symbol a logo may
// safely cover.
func (l ECLevel) RecoveryRatio() float64 {
	switch l {
	case LevelLow:
		return 0.07
	case LevelQuartile:
		return 0.25
	case LevelHigh:
		return 0.30
	default:
		return 0.15
	}
}

// Encoder backends.
const (
	// EncoderYeqown selects yeqown/go-qrcode, the default backend.
	EncoderYeqown = "yeqown"
	// EncoderSkip2 selects skip2/go-qrcode, the only backend that
	// supports forcing a symbol version.
	EncoderSkip2 = "skip2"
)

// EncodeOptions configures Encode.
type EncodeOptions struct {
	// Level is the error correction level. The zero value is LevelLow.
	Level ECLevel

	// Encoder selects the backend, EncoderYeqown or EncoderSkip2.
	// Empty selects EncoderYeqown unless a version bound is set, in
	// which case EncoderSkip2 is used.
	Encoder string

	// MinVersion and MaxVersion bound the symbol version (1-40). Zero
	// means unbounded. Setting either requires the skip2 backend.
	MinVersion int
	MaxVersion int

	// QuietZone is the quiet-zone width in modules recorded on the
	// resulting Matrix. Defaults to DefaultQuietZone; set to a
	// negative value to request zero.
	QuietZone int
}

func (o *EncodeOptions) setDefaults() {
	if o.QuietZone == 0 {
		o.QuietZone = DefaultQuietZone
	} else if o.QuietZone < 0 {
		o.QuietZone = 0
	}
	if o.Encoder == "" {
		if o.MinVersion > 0 || o.MaxVersion > 0 {
			o.Encoder = EncoderSkip2
		} else {
			o.Encoder = EncoderYeqown
		}
	}
}

func (o *EncodeOptions) validate() error {
	if o.Encoder != EncoderYeqown && o.Encoder != EncoderSkip2 {
		return qrerrors.New(qrerrors.ErrCodeInvalidEncoder,
			"unknown encoder %q (want %s or %s)", o.Encoder, EncoderYeqown, EncoderSkip2)
	}
	if o.Level < LevelLow || o.Level > LevelHigh {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"error correction level out of range: %d", int(o.Level))
	}
	if o.MinVersion < 0 || o.MinVersion > maxVersion {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"minimum version %d out of range [1, %d]", o.MinVersion, maxVersion)
	}
	if o.MaxVersion < 0 || o.MaxVersion > maxVersion {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"maximum version %d out of range [1, %d]", o.MaxVersion, maxVersion)
	}
	if o.MinVersion > 0 && o.MaxVersion > 0 && o.MinVersion > o.MaxVersion {
		return qrerrors.New(qrerrors.ErrCodeInvalidInput,
			"minimum version %d exceeds maximum version %d", o.MinVersion, o.MaxVersion)
	}
	if (o.MinVersion > 0 || o.MaxVersion > 0) && o.Encoder == EncoderYeqown {
		return qrerrors.New(qrerrors.ErrCodeInvalidEncoder,
			"encoder %s does not support version bounds, use %s", EncoderYeqown, EncoderSkip2)
	}
	return nil
}

// Encode builds a normalized Matrix from a text payload.
//
// The content must be non-empty and fit a version 40 symbol. Failures
// from the backend surface as ENCODE_FAILED errors with the backend
// error preserved as the cause.
func Encode(content string, opts EncodeOptions) (*Matrix, error) {
	if err := qrerrors.ValidateContent(content); err != nil {
		return nil, err
	}
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Encoder == EncoderSkip2 {
		return encodeSkip2(content, opts)
	}
	return encodeYeqown(content, opts)
}

// ===========================================================================
// yeqown backend
// ===========================================================================

// gridSink captures the finalized module grid through the encoder's
// writer contract instead of letting it rasterize an image.
type gridSink struct {
	grid [][]bool
}

func (s *gridSink) Write(mat yeqown.Matrix) error {
	n := mat.Width()
	s.grid = make([][]bool, n)
	for r := range s.grid {
		s.grid[r] = make([]bool, n)
	}
	mat.Iterate(yeqown.IterDirection_ROW, func(x, y int, v yeqown.QRValue) {
		if y >= 0 && y < n && x >= 0 && x < n {
			s.grid[y][x] = v.IsSet()
		}
	})
	return nil
}

func (s *gridSink) Close() error { return nil }

var _ yeqown.Writer = (*gridSink)(nil)

func encodeYeqown(content string, opts EncodeOptions) (*Matrix, error) {
	qrc, err := yeqown.NewWith(content,
		yeqown.WithEncodingMode(yeqown.EncModeByte),
		yeqownLevel(opts.Level),
	)
	if err != nil {
		return nil, qrerrors.Wrap(qrerrors.ErrCodeEncodeFailed, err,
			"encode %d bytes", len(content))
	}
	sink := &gridSink{}
	if err := qrc.Save(sink); err != nil {
		return nil, qrerrors.Wrap(qrerrors.ErrCodeEncodeFailed, err, "extract module grid")
	}
	return New(sink.grid, opts.QuietZone, WithLevel(opts.Level))
}

// yeqownLevel returns the option applying the backend's level, as the
// backend's level type itself is unexported.
func yeqownLevel(l ECLevel) yeqown.EncodeOption {
	switch l {
	case LevelLow:
		return yeqown.WithErrorCorrectionLevel(yeqown.ErrorCorrectionLow)
	case LevelQuartile:
		return yeqown.WithErrorCorrectionLevel(yeqown.ErrorCorrectionQuart)
	case LevelHigh:
		return yeqown.WithErrorCorrectionLevel(yeqown.ErrorCorrectionHighest)
	default:
		return yeqown.WithErrorCorrectionLevel(yeqown.ErrorCorrectionMedium)
	}
}

// ===========================================================================
// skip2 backend
// ===========================================================================

func encodeSkip2(content string, opts EncodeOptions) (*Matrix, error) {
	qr, err := newSkip2(content, opts)
	if err != nil {
		return nil, err
	}
	qr.DisableBorder = true
	return New(qr.Bitmap(), opts.QuietZone,
		WithLevel(opts.Level), WithVersion(qr.VersionNumber))
}

func newSkip2(content string, opts EncodeOptions) (*skip2.QRCode, error) {
	if opts.MinVersion == 0 && opts.MaxVersion == 0 {
		qr, err := skip2.New(content, skip2Level(opts.Level))
		if err != nil {
			return nil, qrerrors.Wrap(qrerrors.ErrCodeEncodeFailed, err,
				"encode %d bytes", len(content))
		}
		return qr, nil
	}

	lo, hi := opts.MinVersion, opts.MaxVersion
	if lo == 0 {
		lo = minVersion
	}
	if hi == 0 {
		hi = maxVersion
	}
	var lastErr error
	for v := lo; v <= hi; v++ {
		qr, err := skip2.NewWithForcedVersion(content, v, skip2Level(opts.Level))
		if err == nil {
			return qr, nil
		}
		lastErr = err
	}
	return nil, qrerrors.Wrap(qrerrors.ErrCodeEncodeFailed, lastErr,
		"content does not fit versions %d-%d at level %s", lo, hi, opts.Level)
}

// skip2Level maps to skip2's scale, where High is 25% and Highest 30%.
func skip2Level(l ECLevel) skip2.RecoveryLevel {
	switch l {
	case LevelLow:
		return skip2.Low
	case LevelQuartile:
		return skip2.High
	case LevelHigh:
		return skip2.Highest
	default:
		return skip2.Medium
	}
}
