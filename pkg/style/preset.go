package style

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	qrerrors "github.com/pixelglyph/qrsmith/pkg/errors"
)

// LoadPreset reads a TOML preset file into a Config. Keys match the
// Config field tags:
//
//	module_color = "#1a1a2e"
//	background_color = "#f5f5f5"
//	logo_shape = "circle"
//	logo_background = "gradient-halo"
//	logo_size_ratio = 0.2
//	border_width = -1
//
// Unknown keys are rejected so typos surface instead of silently falling
// back to defaults. The returned Config still goes through Resolve.
func LoadPreset(path string) (Config, error) {
	if err := qrerrors.ValidatePresetFilename(filepath.Base(path)); err != nil {
		return Config{}, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Config{}, qrerrors.New(qrerrors.ErrCodeFileNotFound,
			"preset file not found: %s", path)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, qrerrors.Wrap(qrerrors.ErrCodeInvalidPreset, err,
			"parse preset %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, qrerrors.New(qrerrors.ErrCodeInvalidPreset,
			"preset %s has unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}
