package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalfBlock = "▀"

// renderPreview draws img using one cell per two vertical pixels: the
// upper half block takes the top pixel as foreground and the bottom pixel
// as background. The image is sampled nearest-neighbour down to cols wide.
func renderPreview(img image.Image, cols int) string {
	b := img.Bounds()
	if cols <= 0 || b.Dx() <= 0 || b.Dy() <= 0 {
		return ""
	}
	if cols > b.Dx() {
		cols = b.Dx()
	}
	// Cells are roughly twice as tall as wide, so two pixel rows per cell
	// keeps the aspect ratio.
	rows := b.Dy() * cols / b.Dx() / 2
	if rows == 0 {
		rows = 1
	}

	sample := func(col, row int) color.Color {
		x := b.Min.X + col*b.Dx()/cols
		y := b.Min.Y + row*b.Dy()/(rows*2)
		return img.At(x, y)
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			top, bottom := sample(col, row*2), sample(col, row*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render(upperHalfBlock))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// hexColor flattens c onto black.
func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
}

// previewColumns picks a preview width for the terminal.
func previewColumns(cfgWidth, termWidth int) int {
	const maxCols = 80
	if cfgWidth > 0 {
		return cfgWidth
	}
	cols := termWidth - 4
	if cols > maxCols {
		cols = maxCols
	}
	if cols < 10 {
		cols = 10
	}
	return cols
}
