// Package compose renders a meme: background, letterboxed image and the two
// captions, onto a canvas.Surface.
package compose

import (
	"image"
	"image/color"

	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/fit"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Captions are the two user-entered text lines, kept as typed.
type Captions struct {
	Top    string
	Bottom string
}

// Speech returns the text read aloud for the captions: both lines joined by
// a single space, with no trimming.
func (c Captions) Speech() string {
	return c.Top + " " + c.Bottom
}

// Style is the fixed caption and background configuration.
type Style struct {
	Background color.Color
	TextColor  color.Color

	// FontRatio is the caption size as a fraction of the canvas height.
	FontRatio float64

	// Outline is the caption stroke width in pixels. Zero disables it.
	Outline      float64
	OutlineColor color.Color
}

// DefaultStyle matches the classic look: white captions over black
// letterboxing, 40px text on a 400px canvas.
func DefaultStyle() Style {
	return Style{
		Background:   color.Black,
		TextColor:    color.White,
		FontRatio:    0.1,
		OutlineColor: color.Black,
	}
}

// Compositor draws memes with a fixed Style.
type Compositor struct {
	style Style
	upper cases.Caser
}

// New returns a Compositor using style. Zero fields fall back to
// DefaultStyle.
func New(style Style) *Compositor {
	def := DefaultStyle()
	if style.Background == nil {
		style.Background = def.Background
	}
	if style.TextColor == nil {
		style.TextColor = def.TextColor
	}
	if style.FontRatio <= 0 {
		style.FontRatio = def.FontRatio
	}
	if style.OutlineColor == nil {
		style.OutlineColor = def.OutlineColor
	}
	return &Compositor{
		style: style,
		upper: cases.Upper(language.Und),
	}
}

// Style returns the compositor's style.
func (c *Compositor) Style() Style {
	return c.style
}

// Compose redraws the whole surface: clear, fill the background, draw img
// into the fitted rectangle and overlay both captions. A nil img skips the
// image step. Compose is idempotent for identical inputs.
func (c *Compositor) Compose(s canvas.Surface, r fit.Result, img image.Image, captions Captions) {
	b := s.Bounds()

	s.Clear(b)
	s.FillRect(b, c.style.Background)

	if img != nil {
		s.DrawImage(img, canvas.Rect{X: r.StartX, Y: r.StartY, W: r.Width, H: r.Height})
	}

	c.drawCaptions(s, captions)
}

// Clear wipes the surface to transparent.
func (c *Compositor) Clear(s canvas.Surface) {
	s.Clear(s.Bounds())
}

// TextStyle returns the caption style for a surface of the given bounds.
func (c *Compositor) TextStyle(b image.Rectangle) canvas.TextStyle {
	return canvas.TextStyle{
		Size:         float64(b.Dy()) * c.style.FontRatio,
		Color:        c.style.TextColor,
		Align:        canvas.AlignCenter,
		Outline:      c.style.Outline,
		OutlineColor: c.style.OutlineColor,
	}
}

// Baselines returns the y coordinates of the top and bottom captions.
func (c *Compositor) Baselines(b image.Rectangle) (top, bottom float64) {
	size := float64(b.Dy()) * c.style.FontRatio
	return float64(b.Min.Y) + size, float64(b.Max.Y) - size/2
}

func (c *Compositor) drawCaptions(s canvas.Surface, captions Captions) {
	b := s.Bounds()
	style := c.TextStyle(b)
	x := float64(b.Min.X) + float64(b.Dx())/2
	top, bottom := c.Baselines(b)

	s.DrawText(c.upper.String(captions.Top), x, top, style)
	s.DrawText(c.upper.String(captions.Bottom), x, bottom, style)
}
