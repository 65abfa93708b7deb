package cli

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/halo"
	"github.com/pixelglyph/qrsmith/pkg/logo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
	"github.com/pixelglyph/qrsmith/pkg/raster"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// Preview styles
var (
	previewStatusStyle = lipgloss.NewStyle().Foreground(colorWhite)
	previewDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// Shape and background cycling order for the preview keys.
var (
	previewShapes = []string{
		string(style.ShapeSquare),
		string(style.ShapeCircle),
		string(style.ShapeRoundedRect),
	}
	previewBackgrounds = []string{
		string(style.BackgroundSolid),
		string(style.BackgroundGradientHalo),
		string(style.BackgroundRadialGradient),
	}
)

const (
	previewRatioStep = 0.05
	previewRatioMin  = 0.05
)

// =============================================================================
// Preview Command
// =============================================================================

func (c *CLI) previewCommand() *cobra.Command {
	var (
		logoPath  string
		output    string
		preset    string
		level     string
		encoder   string
		flagStyle style.Config
	)

	cmd := &cobra.Command{
		Use:   "preview <text>",
		Short: "Tune logo placement interactively",
		Long: `Encode the text once, then explore shapes, background styles, and
logo sizes against a live block rendering of the symbol. Faded blocks
mark modules inside the halo ring; blank ones are fully suppressed.

Keys:
  left/right   cycle logo shape
  b            cycle background style
  +/-          grow or shrink the logo
  s            save a PNG with the current style
  q            quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildStyle(cmd, preset, flagStyle, true)
			if err != nil {
				return err
			}

			m, err := pipeline.EncodeMatrix(pipeline.Options{
				Content: args[0],
				Level:   level,
				Encoder: encoder,
			})
			if err != nil {
				return err
			}

			model := NewPreviewModel(m, cfg, logoPath, output)
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				return err
			}

			if pm, ok := final.(PreviewModel); ok && pm.SavedPath != "" {
				printSuccess("Preview saved")
				printFile(pm.SavedPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logoPath, "logo", "", "logo image file to composite")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path for saved previews (default qr-preview.png)")
	cmd.Flags().StringVar(&preset, "preset", "", "style preset name or TOML file")
	cmd.Flags().StringVar(&level, "level", "", "error correction level: l, m, q, or h (default h)")
	cmd.Flags().StringVar(&encoder, "encoder", "", "encoder backend (default yeqown)")
	cmd.Flags().StringVar(&flagStyle.ModuleColor, "module-color", "", "module color as hex (default #000000)")
	cmd.Flags().StringVar(&flagStyle.BackgroundColor, "background-color", "", "background color as hex (default #ffffff)")
	cmd.Flags().IntVar(&flagStyle.ModulePixelSize, "module-size", 0, "pixels per module for saved previews (default 15)")
	cmd.Flags().StringVar(&flagStyle.LogoShape, "shape", "", "initial logo shape: square, circle, or rounded-rect")
	cmd.Flags().StringVar(&flagStyle.LogoBackground, "logo-background", "", "initial background style: solid, gradient-halo, or radial-gradient")
	cmd.Flags().Float64Var(&flagStyle.LogoSizeRatio, "logo-ratio", 0, "initial logo size as a fraction of symbol width (default 0.25)")
	cmd.Flags().IntVar(&flagStyle.BorderWidth, "border-width", 0, "logo border stroke in pixels, -1 for proportional")
	cmd.Flags().StringVar(&flagStyle.BorderColor, "border-color", "", "border color as hex (default module color)")

	return cmd
}

// =============================================================================
// PreviewModel - Interactive occlusion tuning
// =============================================================================

// saveResultMsg reports the outcome of an async preview save.
type saveResultMsg struct {
	path string
	err  error
}

// PreviewModel is the bubbletea model for interactive style tuning. The
// matrix is encoded once; every keypress only replans the occlusion.
type PreviewModel struct {
	Matrix   *matrix.Matrix
	Base     style.Config
	LogoPath string
	Output   string

	ShapeIdx int
	BgIdx    int
	Ratio    float64

	// SavedPath is the last successful save target, shown after quit.
	SavedPath string

	status string
}

// NewPreviewModel creates a preview model starting from the given style.
func NewPreviewModel(m *matrix.Matrix, cfg style.Config, logoPath, output string) PreviewModel {
	pm := PreviewModel{
		Matrix:   m,
		Base:     cfg,
		LogoPath: logoPath,
		Output:   output,
		Ratio:    style.DefaultLogoSizeRatio,
	}
	if cfg.LogoSizeRatio > 0 {
		pm.Ratio = clampRatio(cfg.LogoSizeRatio)
	}
	if shape, err := style.ParseShape(cfg.LogoShape); err == nil {
		for i, s := range previewShapes {
			if s == string(shape) {
				pm.ShapeIdx = i
			}
		}
	}
	if bg, err := style.ParseBackgroundStyle(cfg.LogoBackground); err == nil {
		for i, s := range previewBackgrounds {
			if s == string(bg) {
				pm.BgIdx = i
			}
		}
	}
	return pm
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.ShapeIdx = (m.ShapeIdx + len(previewShapes) - 1) % len(previewShapes)
			m.status = ""
		case "right", "l":
			m.ShapeIdx = (m.ShapeIdx + 1) % len(previewShapes)
			m.status = ""
		case "b":
			m.BgIdx = (m.BgIdx + 1) % len(previewBackgrounds)
			m.status = ""
		case "+", "=":
			m.Ratio = clampRatio(m.Ratio + previewRatioStep)
			m.status = ""
		case "-", "_":
			m.Ratio = clampRatio(m.Ratio - previewRatioStep)
			m.status = ""
		case "s":
			m.status = previewDimStyle.Render("saving...")
			return m, m.saveCmd()
		}
	case saveResultMsg:
		if msg.err != nil {
			m.status = StyleWarning.Render("save failed: " + msg.err.Error())
		} else {
			m.SavedPath = msg.path
			m.status = StyleSuccess.Render("saved " + msg.path)
		}
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Preview"))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("←/→ shape  b background  +/- logo size  s save  q quit"))
	b.WriteString("\n\n")

	resolved, err := style.Resolve(m.cfg())
	if err != nil {
		b.WriteString(StyleWarning.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	region := geometry.ComputeRegion(m.Matrix, resolved)
	plan := halo.Build(m.Matrix, region, resolved)

	b.WriteString(asciiArt(m.Matrix, plan))
	b.WriteString("\n")

	parts := []string{
		previewStatusStyle.Render(previewShapes[m.ShapeIdx]),
		previewStatusStyle.Render(previewBackgrounds[m.BgIdx]),
		previewStatusStyle.Render(fmt.Sprintf("%.0f%% of width", m.Ratio*100)),
	}
	b.WriteString("  " + strings.Join(parts, previewDimStyle.Render(" · ")))
	b.WriteString("\n")

	if halo.ExceedsBudget(m.Matrix, region) {
		b.WriteString("  " + StyleWarning.Render(fmt.Sprintf(
			"! occlusion exceeds what level %s can recover", m.Matrix.Level())))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString("  " + m.status)
		b.WriteString("\n")
	}

	return b.String()
}

// cfg applies the interactive selections on top of the base style.
func (m PreviewModel) cfg() style.Config {
	cfg := m.Base
	cfg.LogoShape = previewShapes[m.ShapeIdx]
	cfg.LogoBackground = previewBackgrounds[m.BgIdx]
	cfg.LogoSizeRatio = m.Ratio
	return cfg
}

// saveCmd renders the current style to a PNG off the update loop.
func (m PreviewModel) saveCmd() tea.Cmd {
	mat, cfg := m.Matrix, m.cfg()
	logoPath, output := m.LogoPath, m.Output
	return func() tea.Msg {
		path, err := savePreview(mat, cfg, logoPath, output)
		if err != nil {
			return saveResultMsg{err: err}
		}
		return saveResultMsg{path: path}
	}
}

// savePreview rasterizes the symbol with the chosen style and writes a
// PNG. Unlike the render pipeline it always carves the logo region, so
// the file matches what the preview shows even without a logo.
func savePreview(m *matrix.Matrix, cfg style.Config, logoPath, output string) (string, error) {
	resolved, err := style.Resolve(cfg)
	if err != nil {
		return "", err
	}
	region := geometry.ComputeRegion(m, resolved)
	plan := halo.Build(m, region, resolved)

	prepared, err := loadPreviewLogo(logoPath, region)
	if err != nil {
		return "", err
	}

	im, err := raster.Render(m, resolved, &region, plan, prepared)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, im); err != nil {
		return "", err
	}

	if output == "" {
		output = "qr-preview.png"
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return output, nil
}

func loadPreviewLogo(path string, region geometry.Region) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	asset, err := logo.FromFile(path)
	if err != nil {
		return nil, err
	}
	size := int(math.Round(region.Size()))
	if size < 1 {
		size = 1
	}
	return logo.Prepare(asset, size, logo.FitCover)
}

func clampRatio(r float64) float64 {
	if r < previewRatioMin {
		return previewRatioMin
	}
	if r > style.MaxLogoSizeRatio {
		return style.MaxLogoSizeRatio
	}
	return r
}
