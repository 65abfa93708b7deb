package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	qrio "github.com/pixelglyph/qrsmith/pkg/io"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// renderCommand creates the render command for producing styled QR images.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		preset     string
		fromMatrix string
		noCache    bool
		flagStyle  style.Config
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [text]",
		Short: "Render a styled QR code to PNG or JPEG",
		Long: `Render a styled QR code to PNG or JPEG.

The text argument is encoded into a QR symbol and rasterized with the
configured colors, an optional embedded logo, and a halo fade around the
logo region. Alternatively, --from-matrix renders a symbol previously
exported with 'inspect --json'.

Results are cached locally for faster subsequent runs.

Examples:
  qrsmith render "https://example.com" -o qr.png
  qrsmith render "https://example.com" --logo logo.png --shape circle
  qrsmith render "https://example.com" --logo-url https://cdn.example.com/logo.png
  qrsmith render --from-matrix symbol.json --preset brand -o out.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Content = args[0]
			}
			if fromMatrix != "" {
				m, err := qrio.ImportJSON(fromMatrix)
				if err != nil {
					return err
				}
				opts.Matrix = m
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}

			cfg, err := buildStyle(cmd, preset, flagStyle, opts.HasLogo())
			if err != nil {
				return err
			}
			opts.Style = cfg

			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	// Output flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), jpeg (comma-separated)")
	cmd.Flags().IntVar(&opts.JPEGQuality, "jpeg-quality", 0, "JPEG quality 1-100 (default 90)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached results")

	// Encode flags
	cmd.Flags().StringVar(&opts.Level, "level", "", "error correction level: l, m, q, h (default h)")
	cmd.Flags().StringVar(&opts.Encoder, "encoder", "", "encoder backend: yeqown (default), skip2")
	cmd.Flags().IntVar(&opts.MinVersion, "min-version", 0, "minimum symbol version 1-40")
	cmd.Flags().IntVar(&opts.MaxVersion, "max-version", 0, "maximum symbol version 1-40")
	cmd.Flags().IntVar(&opts.QuietZone, "quiet-zone", 0, "quiet zone width in modules (default 4)")
	cmd.Flags().StringVar(&fromMatrix, "from-matrix", "", "render from a matrix JSON file instead of encoding text")

	// Logo flags
	cmd.Flags().StringVar(&opts.LogoPath, "logo", "", "logo image file (png, jpeg, or gif)")
	cmd.Flags().StringVar(&opts.LogoURL, "logo-url", "", "logo image URL, fetched with retries")
	cmd.Flags().StringVar(&opts.LogoFit, "logo-fit", "", "logo fit mode: cover (default), stretch")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail instead of warning when the logo occludes too much")

	// Style flags
	cmd.Flags().StringVar(&preset, "preset", "", "style preset name or .toml file")
	cmd.Flags().StringVar(&flagStyle.ModuleColor, "module-color", "", "module color as hex (default #000000)")
	cmd.Flags().StringVar(&flagStyle.BackgroundColor, "background-color", "", "background color as hex (default #ffffff)")
	cmd.Flags().IntVar(&flagStyle.ModulePixelSize, "module-size", 0, "pixels per module, 1-64 (default 15)")
	cmd.Flags().StringVar(&flagStyle.LogoShape, "shape", "", "logo region shape: square (default), circle, rounded-rect")
	cmd.Flags().StringVar(&flagStyle.LogoBackground, "logo-background", "", "region background: solid (default), gradient-halo, radial-gradient")
	cmd.Flags().Float64Var(&flagStyle.LogoSizeRatio, "logo-ratio", 0, "logo size as fraction of symbol width (default 0.25, max 0.35)")
	cmd.Flags().IntVar(&flagStyle.BorderWidth, "border-width", 0, "logo border stroke in pixels, -1 for proportional")
	cmd.Flags().StringVar(&flagStyle.BorderColor, "border-color", "", "logo border color as hex")

	return cmd
}

// buildStyle combines the preset base with explicitly set flags. A logo
// render without any border setting gets the proportional border.
func buildStyle(cmd *cobra.Command, preset string, flagStyle style.Config, hasLogo bool) (style.Config, error) {
	base := style.Config{}
	if preset != "" {
		loaded, err := loadPreset(preset)
		if err != nil {
			return style.Config{}, err
		}
		base = loaded
	}

	merged := mergeStyle(base, flagStyle)
	if cmd.Flags().Changed("border-width") {
		// Explicit values win, including 0 to disable the border.
		merged.BorderWidth = flagStyle.BorderWidth
	} else if hasLogo && merged.BorderWidth == 0 {
		merged.BorderWidth = style.BorderAuto
	}
	return merged, nil
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering QR code...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, w := range result.Warnings {
		printWarning("%s", w)
	}

	printSuccess("Render complete")
	if err := writeArtifacts(result, opts.Formats, output); err != nil {
		return err
	}
	printStats(result.Stats.Version, result.Stats.SymbolSize, result.Stats.WidthPx, result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each rendered format to its derived output path.
func writeArtifacts(result *pipeline.Result, formats []string, output string) error {
	multi := len(formats) > 1
	for _, format := range formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(output, format, multi)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath derives the artifact path for a format. An empty output
// falls back to qr.<format>; with multiple formats the output's extension
// is replaced per format.
func outputPath(output, format string, multi bool) string {
	if output == "" {
		return "qr." + format
	}
	ext := filepath.Ext(output)
	if !multi && ext != "" {
		return output
	}
	return strings.TrimSuffix(output, ext) + "." + format
}
