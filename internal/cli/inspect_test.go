package cli

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pixelglyph/qrsmith/pkg/geometry"
	"github.com/pixelglyph/qrsmith/pkg/halo"
	"github.com/pixelglyph/qrsmith/pkg/matrix"
	"github.com/pixelglyph/qrsmith/pkg/style"
)

// checkerboard builds a version 1 symbol with alternating modules, which
// makes suppressed and faded cells easy to locate.
func checkerboard(t *testing.T) *matrix.Matrix {
	t.Helper()
	grid := make([][]bool, 21)
	for r := range grid {
		grid[r] = make([]bool, 21)
		for c := range grid[r] {
			grid[r][c] = (r+c)%2 == 0
		}
	}
	m, err := matrix.New(grid, 4, matrix.WithLevel(matrix.LevelHigh))
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	return m
}

func TestAsciiArtPlain(t *testing.T) {
	m := checkerboard(t)
	art := asciiArt(m, nil)

	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 21 {
		t.Fatalf("got %d lines, want 21", len(lines))
	}
	for i, line := range lines {
		if got := utf8.RuneCountInString(line); got != 42 {
			t.Errorf("line %d has %d cells-worth of runes, want 42", i, got)
		}
	}

	if !strings.HasPrefix(lines[0], "██  ██") {
		t.Errorf("row 0 should alternate starting dark, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  ██  ") {
		t.Errorf("row 1 should alternate starting light, got %q", lines[1])
	}
	if strings.Contains(art, "░░") {
		t.Error("art without a plan should have no faded cells")
	}
}

func TestAsciiArtWithPlan(t *testing.T) {
	m := checkerboard(t)
	resolved, err := style.Resolve(style.Config{LogoBackground: "gradient-halo"})
	if err != nil {
		t.Fatalf("resolve style: %v", err)
	}
	region := geometry.ComputeRegion(m, resolved)
	plan := halo.Build(m, region, resolved)

	plain := asciiArt(m, nil)
	planned := asciiArt(m, plan)

	if planned == plain {
		t.Fatal("plan should alter the art")
	}
	if !strings.Contains(planned, "░░") {
		t.Error("gradient halo should produce faded cells")
	}

	// The center module is dark on the checkerboard but sits under the
	// logo region, so it must render blank.
	lines := strings.Split(planned, "\n")
	center := []rune(lines[10])
	if center[20] != ' ' || center[21] != ' ' {
		t.Errorf("center module should be suppressed, got %q", string(center[20:22]))
	}
}

func TestAsciiArtSolidBackgroundHasNoFade(t *testing.T) {
	m := checkerboard(t)
	resolved, err := style.Resolve(style.Config{LogoBackground: "solid"})
	if err != nil {
		t.Fatalf("resolve style: %v", err)
	}
	region := geometry.ComputeRegion(m, resolved)
	plan := halo.Build(m, region, resolved)

	art := asciiArt(m, plan)
	if strings.Contains(art, "░░") {
		t.Error("solid background should suppress without fading")
	}
	if art == asciiArt(m, nil) {
		t.Error("solid background should still blank the logo region")
	}
}
