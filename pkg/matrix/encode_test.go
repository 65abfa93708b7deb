package matrix

import (
	"testing"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ECLevel
		wantErr bool
	}{
		{"ShortLow", "L", LevelLow, false},
		{"ShortMedium", "m", LevelMedium, false},
		{"ShortQuartile", "Q", LevelQuartile, false},
		{"ShortHigh", "h", LevelHigh, false},
		{"LongLow", "low", LevelLow, false},
		{"LongQuartile", "quartile", LevelQuartile, false},
		{"LongHighest", "highest", LevelHigh, false},
		{"Padded", "  H  ", LevelHigh, false},
		{"Unknown", "ultra", 0, true},
		{"Empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseLevel(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestECLevelString(t *testing.T) {
	tests := []struct {
		level ECLevel
		want  string
	}{
		{LevelLow, "L"},
		{LevelMedium, "M"},
		{LevelQuartile, "Q"},
		{LevelHigh, "H"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRecoveryRatio(t *testing.T) {
	tests := []struct {
		level ECLevel
		want  float64
	}{
		{LevelLow, 0.07},
		{LevelMedium, 0.15},
		{LevelQuartile, 0.25},
		{LevelHigh, 0.30},
	}

	for _, tt := range tests {
		if got := tt.level.RecoveryRatio(); got != tt.want {
			t.Errorf("%v.RecoveryRatio() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestEncodeOptionsDefaults(t *testing.T) {
	tests := []struct {
		name          string
		opts          EncodeOptions
		wantEncoder   string
		wantQuietZone int
	}{
		{"Empty", EncodeOptions{}, EncoderYeqown, DefaultQuietZone},
		{"VersionBoundSelectsSkip2", EncodeOptions{MinVersion: 2}, EncoderSkip2, DefaultQuietZone},
		{"ExplicitEncoderKept", EncodeOptions{Encoder: EncoderSkip2}, EncoderSkip2, DefaultQuietZone},
		{"NegativeQuietZoneMeansZero", EncodeOptions{QuietZone: -1}, EncoderYeqown, 0},
		{"CustomQuietZone", EncodeOptions{QuietZone: 2}, EncoderYeqown, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.setDefaults()
			if opts.Encoder != tt.wantEncoder {
				t.Errorf("Encoder = %q, want %q", opts.Encoder, tt.wantEncoder)
			}
			if opts.QuietZone != tt.wantQuietZone {
				t.Errorf("QuietZone = %d, want %d", opts.QuietZone, tt.wantQuietZone)
			}
		})
	}
}

func TestEncodeOptionsValidate(t *testing.T) {
	tests := []struct {
		name     string
		opts     EncodeOptions
		wantCode qrerrors.Code
	}{
		{
			name:     "UnknownEncoder",
			opts:     EncodeOptions{Encoder: "zbar", Level: LevelMedium, QuietZone: 4},
			wantCode: qrerrors.ErrCodeInvalidEncoder,
		},
		{
			name:     "MinAboveMax",
			opts:     EncodeOptions{Encoder: EncoderSkip2, MinVersion: 10, MaxVersion: 5, QuietZone: 4},
			wantCode: qrerrors.ErrCodeInvalidInput,
		},
		{
			name:     "VersionBoundWithYeqown",
			opts:     EncodeOptions{Encoder: EncoderYeqown, MaxVersion: 10, QuietZone: 4},
			wantCode: qrerrors.ErrCodeInvalidEncoder,
		},
		{
			name:     "MinVersionTooLarge",
			opts:     EncodeOptions{Encoder: EncoderSkip2, MinVersion: 41, QuietZone: 4},
			wantCode: qrerrors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := qrerrors.GetCode(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

// checkSymbol asserts the structural invariants every encoded matrix
// must satisfy, including the three finder patterns.
func checkSymbol(t *testing.T, m *Matrix) {
	t.Helper()

	n := m.Size()
	if n < 21 || (n-17)%4 != 0 {
		t.Fatalf("Size() = %d, not a legal symbol size", n)
	}
	if want := 4*m.Version() + 17; n != want {
		t.Errorf("Size() = %d, want %d for version %d", n, want, m.Version())
	}

	// Finder pattern corners are always dark.
	corners := [][2]int{{0, 0}, {0, n - 1}, {n - 1, 0}}
	for _, c := range corners {
		if !m.Dark(c[0], c[1]) {
			t.Errorf("Dark(%d, %d) = false, want finder corner dark", c[0], c[1])
		}
	}
	// Finder pattern centers are always dark.
	centers := [][2]int{{3, 3}, {3, n - 4}, {n - 4, 3}}
	for _, c := range centers {
		if !m.Dark(c[0], c[1]) {
			t.Errorf("Dark(%d, %d) = false, want finder center dark", c[0], c[1])
		}
	}
}

func TestEncodeYeqown(t *testing.T) {
	m, err := Encode("https://example.com/qrsmith", EncodeOptions{Level: LevelHigh})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	checkSymbol(t, m)

	if m.QuietZone() != DefaultQuietZone {
		t.Errorf("QuietZone() = %d, want %d", m.QuietZone(), DefaultQuietZone)
	}
	if m.Level() != LevelHigh {
		t.Errorf("Level() = %v, want LevelHigh", m.Level())
	}
}

func TestEncodeSkip2(t *testing.T) {
	m, err := Encode("https://example.com/qrsmith", EncodeOptions{
		Encoder: EncoderSkip2,
		Level:   LevelQuartile,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	checkSymbol(t, m)

	if m.Level() != LevelQuartile {
		t.Errorf("Level() = %v, want LevelQuartile", m.Level())
	}
}

func TestEncodeForcedVersion(t *testing.T) {
	m, err := Encode("forced", EncodeOptions{
		MinVersion: 5,
		MaxVersion: 5,
		Level:      LevelMedium,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if m.Version() != 5 {
		t.Errorf("Version() = %d, want 5", m.Version())
	}
	if m.Size() != 37 {
		t.Errorf("Size() = %d, want 37", m.Size())
	}
}

func TestEncodeVersionRange(t *testing.T) {
	// Version 1 at level H holds at most 7 byte-mode characters, so a
	// longer payload must land on a later version within the range.
	m, err := Encode("this payload needs more than version one", EncodeOptions{
		MinVersion: 1,
		MaxVersion: 10,
		Level:      LevelHigh,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if m.Version() < 2 || m.Version() > 10 {
		t.Errorf("Version() = %d, want within [2, 10]", m.Version())
	}
	checkSymbol(t, m)
}

func TestEncodeDeterministic(t *testing.T) {
	opts := EncodeOptions{Level: LevelMedium}

	a, err := Encode("deterministic", opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode("deterministic", opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if a.Size() != b.Size() {
		t.Fatalf("sizes differ: %d vs %d", a.Size(), b.Size())
	}
	for r := 0; r < a.Size(); r++ {
		for c := 0; c < a.Size(); c++ {
			if a.Dark(r, c) != b.Dark(r, c) {
				t.Fatalf("module (%d, %d) differs between encodes", r, c)
			}
		}
	}
}

func TestEncodeInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Empty", ""},
		{"NullByte", "abc\x00def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.content, EncodeOptions{})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := qrerrors.GetCode(err); got != qrerrors.ErrCodeInvalidInput {
				t.Errorf("code = %v, want %v", got, qrerrors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestEncodeContentTooLong(t *testing.T) {
	content := make([]byte, 3000)
	for i := range content {
		content[i] = 'a'
	}

	_, err := Encode(string(content), EncodeOptions{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
