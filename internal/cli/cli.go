// Package cli implements the qrsmith command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pixelglyph/qrsmith/pkg/buildinfo"
	"github.com/pixelglyph/qrsmith/pkg/cache"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "qrsmith"

	// redisURLEnv names the environment variable holding the Redis cache URL.
	redisURLEnv = "QRSMITH_REDIS_URL"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "qrsmith",
		Short:        "Qrsmith renders QR codes with embedded logos",
		Long:         `Qrsmith encodes text into QR symbols and rasterizes them with styled colors, embedded logos, and halo fading that keeps the occluded area within what error correction can recover.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend: Redis when QRSMITH_REDIS_URL is set,
// the XDG file cache otherwise, and the null cache when caching is off or
// no directory is available.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := os.Getenv(redisURLEnv); url != "" {
		store, err := cache.NewRedisCache(context.Background(), url)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, falling back to file cache", "err", err)
		} else {
			return store, nil
		}
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/qrsmith/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the configuration directory using XDG standard
// (~/.config/qrsmith/). Style presets live under presets/ inside it.
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// =============================================================================
// Style Helpers
// =============================================================================

// loadPreset resolves a --preset value into a style config. A value with a
// path separator or .toml suffix is treated as a file path; a bare name is
// looked up under the XDG config presets directory.
func loadPreset(name string) (style.Config, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.HasSuffix(name, ".toml") {
		return style.LoadPreset(name)
	}
	dir, err := configDir()
	if err != nil {
		return style.Config{}, err
	}
	return style.LoadPreset(filepath.Join(dir, "presets", name+".toml"))
}

// mergeStyle overlays explicitly set flag values onto a preset base.
// Zero values in overlay leave the base untouched.
func mergeStyle(base, overlay style.Config) style.Config {
	if overlay.ModuleColor != "" {
		base.ModuleColor = overlay.ModuleColor
	}
	if overlay.BackgroundColor != "" {
		base.BackgroundColor = overlay.BackgroundColor
	}
	if overlay.ModulePixelSize != 0 {
		base.ModulePixelSize = overlay.ModulePixelSize
	}
	if overlay.LogoShape != "" {
		base.LogoShape = overlay.LogoShape
	}
	if overlay.LogoBackground != "" {
		base.LogoBackground = overlay.LogoBackground
	}
	if overlay.LogoSizeRatio != 0 {
		base.LogoSizeRatio = overlay.LogoSizeRatio
	}
	if overlay.BorderWidth != 0 {
		base.BorderWidth = overlay.BorderWidth
	}
	if overlay.BorderColor != "" {
		base.BorderColor = overlay.BorderColor
	}
	return base
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	return strings.Split(s, ",")
}
