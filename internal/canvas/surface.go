// Package canvas provides the fixed-size 2D drawing surface memes are
// composited on, and an implementation backed by *image.RGBA.
package canvas

import (
	"image"
	"image/color"
)

// Surface is a fixed-size 2D drawing target.
type Surface interface {
	// Bounds returns the full drawable area.
	Bounds() image.Rectangle

	// Clear resets the region to fully transparent pixels.
	Clear(r image.Rectangle)

	// FillRect paints the region with a solid color.
	FillRect(r image.Rectangle, c color.Color)

	// DrawImage draws img scaled into dst. dst may have fractional
	// coordinates.
	DrawImage(img image.Image, dst Rect)

	// DrawText draws s with its baseline at y. x is interpreted according to
	// style.Align.
	DrawText(s string, x, y float64, style TextStyle)
}

// Rect is a rectangle with fractional coordinates.
type Rect struct {
	X, Y float64
	W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Align controls horizontal text placement relative to the x coordinate.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the CSS-like name of the alignment.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "unknown"
	}
}

// TextStyle describes how DrawText renders a string.
type TextStyle struct {
	Size  float64 // font size in pixels
	Color color.Color
	Align Align

	// Outline draws a stroke of the given width (pixels) behind the glyphs.
	// Zero disables it.
	Outline      float64
	OutlineColor color.Color
}
