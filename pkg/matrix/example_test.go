package matrix_test

import (
	"fmt"

	"github.com/pixelglyph/qrsmith/pkg/matrix"
)

func ExampleNew() {
	// Wrap a hand-built version 1 grid (21x21) with a 4-module quiet zone
	grid := make([][]bool, 21)
	for r := range grid {
		grid[r] = make([]bool, 21)
		for c := range grid[r] {
			grid[r][c] = (r+c)%2 == 0
		}
	}

	m, err := matrix.New(grid, 4)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Size:", m.Size())
	fmt.Println("Version:", m.Version())
	fmt.Println("Quiet zone:", m.QuietZone())
	fmt.Println("Image width:", m.TotalPixels(10))
	// Output:
	// Size: 21
	// Version: 1
	// Quiet zone: 4
	// Image width: 290
}

func ExampleNew_invalidSize() {
	// QR symbols are 4*version + 17 modules on a side, so 20 is rejected
	grid := make([][]bool, 20)
	for r := range grid {
		grid[r] = make([]bool, 20)
	}

	_, err := matrix.New(grid, 4)
	fmt.Println(err)
	// Output:
	// INVALID_MATRIX: 20 modules is not a valid QR symbol size
}

func ExampleParseLevel() {
	// Level names are case-insensitive; single letters and long forms work
	level, _ := matrix.ParseLevel("h")

	fmt.Println("Level:", level)
	fmt.Println("Recovers:", level.RecoveryRatio())
	// Output:
	// Level: H
	// Recovers: 0.3
}
