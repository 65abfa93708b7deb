package errors

import (
	"strings"
	"unicode"
)

// maxContentBytes is the byte-mode capacity of a version 40 low-ECL symbol.
// Payloads beyond this cannot fit any QR code.
const maxContentBytes = 2953

// ValidateContent validates a QR payload before it reaches an encoder.
//
// The validation rules are intentionally conservative:
//   - No empty payloads
//   - No null bytes
//   - Maximum length of 2953 bytes (version 40, byte mode, ECL low)
//
// Encoder-specific capacity checks (version and ECL combinations) are done
// by the encoder itself; this only rejects payloads no symbol could hold.
func ValidateContent(content string) error {
	if content == "" {
		return New(ErrCodeInvalidInput, "content cannot be empty")
	}

	if len(content) > maxContentBytes {
		return New(ErrCodeInvalidInput, "content too long: %d bytes (max %d)", len(content), maxContentBytes)
	}

	if strings.ContainsRune(content, '\x00') {
		return New(ErrCodeInvalidInput, "content contains null bytes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidatePresetFilename validates a style preset filename for safety.
// It ensures the filename is a simple basename without path components and
// carries a .toml extension.
func ValidatePresetFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPreset, "preset filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPreset, "preset filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPreset, "preset filename cannot be a hidden file")
	}

	if !strings.HasSuffix(filename, ".toml") {
		return New(ErrCodeInvalidPreset, "preset filename must end in .toml")
	}

	return nil
}

// ValidateOutputPath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "output path cannot contain path traversal sequences (..)")
	}

	return nil
}
