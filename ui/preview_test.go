package ui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"
)

func TestRenderPreviewDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	out := renderPreview(img, 40)

	lines := strings.Split(out, "\n")
	if len(lines) != 20 {
		t.Fatalf("rendered %d rows, want 20", len(lines))
	}
	for i, l := range lines {
		if w := ansi.PrintableRuneWidth(l); w != 40 {
			t.Errorf("row %d width = %d, want 40", i, w)
		}
	}
}

func TestRenderPreviewClampsToImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := renderPreview(img, 100)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 || ansi.PrintableRuneWidth(lines[0]) != 4 {
		t.Errorf("preview = %q", out)
	}
}

func TestRenderPreviewEmpty(t *testing.T) {
	if out := renderPreview(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10); out != "" {
		t.Errorf("renderPreview(empty) = %q", out)
	}
	if out := renderPreview(image.NewRGBA(image.Rect(0, 0, 4, 4)), 0); out != "" {
		t.Errorf("renderPreview(cols=0) = %q", out)
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		c        color.Color
		expected string
	}{
		{color.Black, "#000000"},
		{color.White, "#FFFFFF"},
		{color.RGBA{R: 0x12, G: 0xAB, B: 0x0F, A: 0xFF}, "#12AB0F"},
	}
	for _, tt := range tests {
		if got := string(hexColor(tt.c)); got != tt.expected {
			t.Errorf("hexColor(%v) = %q, want %q", tt.c, got, tt.expected)
		}
	}
}

func TestPreviewColumns(t *testing.T) {
	tests := []struct {
		cfg, term, expected int
	}{
		{30, 200, 30},
		{0, 200, 80},
		{0, 50, 46},
		{0, 5, 10},
	}
	for _, tt := range tests {
		if got := previewColumns(tt.cfg, tt.term); got != tt.expected {
			t.Errorf("previewColumns(%d, %d) = %d, want %d", tt.cfg, tt.term, got, tt.expected)
		}
	}
}
