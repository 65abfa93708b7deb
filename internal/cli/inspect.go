package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pixelglyph/qrsmith/pkg/halo"
	qrio "github.com/pixelglyph/qrsmith/pkg/io"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/pipeline"
)

// inspectCommand creates the inspect command for examining encoded symbols.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		jsonPath string
		ascii    bool
		noCache  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [text]",
		Short: "Encode text and print matrix statistics",
		Long: `Encode text and print statistics about the resulting QR symbol:
version, module count, error correction level, mask, and dark module ratio.

With --ascii the symbol is printed as terminal block art. With --json the
normalized matrix is written to a file that 'render --from-matrix' can
rasterize later.

Examples:
  qrsmith inspect "https://example.com"
  qrsmith inspect "https://example.com" --ascii
  qrsmith inspect "https://example.com" --json symbol.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Content = args[0]
			return c.runInspect(cmd.Context(), opts, jsonPath, ascii, noCache)
		},
	}

	cmd.Flags().StringVar(&opts.Level, "level", "", "error correction level: l, m, q, h (default h)")
	cmd.Flags().StringVar(&opts.Encoder, "encoder", "", "encoder backend: yeqown (default), skip2")
	cmd.Flags().IntVar(&opts.MinVersion, "min-version", 0, "minimum symbol version 1-40")
	cmd.Flags().IntVar(&opts.MaxVersion, "max-version", 0, "maximum symbol version 1-40")
	cmd.Flags().IntVar(&opts.QuietZone, "quiet-zone", 0, "quiet zone width in modules (default 4)")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "print the symbol as terminal block art")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the matrix JSON interchange file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached results")

	return cmd
}

// runInspect encodes the content and reports on the symbol.
func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, jsonPath string, ascii, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	m, cacheHit, err := runner.EncodeWithCacheInfo(ctx, opts)
	if err != nil {
		return err
	}

	if jsonPath != "" {
		if err := qrio.ExportJSON(m, jsonPath); err != nil {
			return err
		}
		printSuccess("Exported matrix")
		printFile(jsonPath)
		printNewline()
		printNextStep("Render", "qrsmith render --from-matrix "+jsonPath)
		return nil
	}

	if ascii {
		fmt.Print(asciiArt(m, nil))
		return nil
	}

	total := m.Size() * m.Size()
	dark := m.DarkCount()

	printKeyValue("Version", strconv.Itoa(m.Version()))
	printKeyValue("Modules", fmt.Sprintf("%dx%d", m.Size(), m.Size()))
	printKeyValue("Level", m.Level().String())
	mask := "unreported"
	if m.Mask() != matrix.MaskUnknown {
		mask = strconv.Itoa(m.Mask())
	}
	printKeyValue("Mask", mask)
	printKeyValue("Quiet zone", fmt.Sprintf("%d modules", m.QuietZone()))
	printKeyValue("Dark modules", fmt.Sprintf("%d of %d (%.1f%%)", dark, total, 100*float64(dark)/float64(total)))
	printKeyValue("Recoverable", fmt.Sprintf("%.0f modules at level %s", m.Level().RecoveryRatio()*float64(total), m.Level()))
	printStats(m.Version(), m.Size(), 0, cacheHit)
	return nil
}

// asciiArt renders the symbol as terminal block art, two characters per
// module. A non-nil plan blanks suppressed modules and dims faded ones,
// mirroring what the rasterizer will do around the logo region.
func asciiArt(m *matrix.Matrix, p *halo.Plan) string {
	var b strings.Builder
	b.Grow(m.Size() * (2*m.Size() + 1))
	for row := 0; row < m.Size(); row++ {
		for col := 0; col < m.Size(); col++ {
			op := p.Opacity(row, col)
			switch {
			case op == 0 || !m.Dark(row, col):
				b.WriteString("  ")
			case op < 1:
				b.WriteString("░░")
			default:
				b.WriteString("██")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
