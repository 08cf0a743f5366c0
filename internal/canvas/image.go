package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var (
	displayFont     *opentype.Font
	displayFontErr  error
	displayFontOnce sync.Once
)

// loadDisplayFont parses the embedded bold face used for captions.
func loadDisplayFont() (*opentype.Font, error) {
	displayFontOnce.Do(func() {
		displayFont, displayFontErr = opentype.Parse(gobold.TTF)
	})
	return displayFont, displayFontErr
}

// Image is a Surface backed by an *image.RGBA. It is not safe for concurrent
// use.
type Image struct {
	rgba  *image.RGBA
	faces map[float64]font.Face
}

// New returns a transparent width×height surface.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", width, height)
	}
	if _, err := loadDisplayFont(); err != nil {
		return nil, fmt.Errorf("unable to load caption font: %w", err)
	}
	return &Image{
		rgba:  image.NewRGBA(image.Rect(0, 0, width, height)),
		faces: make(map[float64]font.Face),
	}, nil
}

// Bounds implements Surface.
func (c *Image) Bounds() image.Rectangle {
	return c.rgba.Bounds()
}

// Clear implements Surface.
func (c *Image) Clear(r image.Rectangle) {
	draw.Draw(c.rgba, r.Intersect(c.rgba.Bounds()), image.Transparent, image.Point{}, draw.Src)
}

// FillRect implements Surface.
func (c *Image) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.rgba, r.Intersect(c.rgba.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

// DrawImage implements Surface. The source is resampled with Catmull-Rom so
// that fractional destinations do not snap to the pixel grid.
func (c *Image) DrawImage(img image.Image, dst Rect) {
	sb := img.Bounds()
	if dst.Empty() || sb.Empty() {
		return
	}

	sx := dst.W / float64(sb.Dx())
	sy := dst.H / float64(sb.Dy())
	s2d := f64.Aff3{
		sx, 0, dst.X - float64(sb.Min.X)*sx,
		0, sy, dst.Y - float64(sb.Min.Y)*sy,
	}
	xdraw.CatmullRom.Transform(c.rgba, s2d, img, sb, xdraw.Over, nil)
}

// DrawText implements Surface.
func (c *Image) DrawText(s string, x, y float64, style TextStyle) {
	if s == "" || style.Size <= 0 {
		return
	}
	face, err := c.face(style.Size)
	if err != nil {
		return
	}

	width := font.MeasureString(face, s)
	dot := fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
	switch style.Align {
	case AlignCenter:
		dot.X -= width / 2
	case AlignRight:
		dot.X -= width
	}

	if style.Outline > 0 {
		oc := style.OutlineColor
		if oc == nil {
			oc = color.Black
		}
		for _, off := range outlineOffsets(style.Outline) {
			d := font.Drawer{Dst: c.rgba, Src: image.NewUniform(oc), Face: face, Dot: dot.Add(off)}
			d.DrawString(s)
		}
	}

	fill := style.Color
	if fill == nil {
		fill = color.White
	}
	d := font.Drawer{Dst: c.rgba, Src: image.NewUniform(fill), Face: face, Dot: dot}
	d.DrawString(s)
}

// MeasureText returns the advance width of s in pixels at the given size.
func (c *Image) MeasureText(s string, size float64) (float64, error) {
	face, err := c.face(size)
	if err != nil {
		return 0, err
	}
	return float64(font.MeasureString(face, s)) / 64, nil
}

// RGBA returns the backing image. Callers must not retain it across draws
// they do not own.
func (c *Image) RGBA() *image.RGBA {
	return c.rgba
}

// Snapshot returns a copy of the current pixels.
func (c *Image) Snapshot() *image.RGBA {
	cp := image.NewRGBA(c.rgba.Bounds())
	copy(cp.Pix, c.rgba.Pix)
	return cp
}

// EncodePNG writes the canvas as PNG.
func (c *Image) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.rgba); err != nil {
		return fmt.Errorf("unable to encode png: %w", err)
	}
	return nil
}

// Save writes the canvas to path as PNG.
func (c *Image) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if err := c.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close output file: %w", err)
	}
	return nil
}

// Close releases the cached font faces.
func (c *Image) Close() error {
	for size, face := range c.faces {
		_ = face.Close()
		delete(c.faces, size)
	}
	return nil
}

func (c *Image) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := loadDisplayFont()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create font face: %w", err)
	}
	c.faces[size] = face
	return face, nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// outlineOffsets returns dot offsets on a ring of radius w, eight per pixel
// of radius.
func outlineOffsets(w float64) []fixed.Point26_6 {
	n := int(math.Ceil(w)) * 8
	offs := make([]fixed.Point26_6, 0, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		offs = append(offs, fixed.Point26_6{X: toFixed(w * math.Cos(a)), Y: toFixed(w * math.Sin(a))})
	}
	return offs
}

var _ Surface = (*Image)(nil)
