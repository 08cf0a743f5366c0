package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/dgnsrekt/memegen/internal/canvas"
	"github.com/dgnsrekt/memegen/internal/fit"
)

// recorder is a canvas.Surface that logs calls instead of drawing.
type recorder struct {
	bounds image.Rectangle
	calls  []string
	texts  []recordedText
}

type recordedText struct {
	s     string
	x, y  float64
	style canvas.TextStyle
}

func (r *recorder) Bounds() image.Rectangle { return r.bounds }

func (r *recorder) Clear(rect image.Rectangle) {
	r.calls = append(r.calls, fmt.Sprintf("clear %v", rect))
}

func (r *recorder) FillRect(rect image.Rectangle, c color.Color) {
	cr, cg, cb, ca := c.RGBA()
	r.calls = append(r.calls, fmt.Sprintf("fill %v %d,%d,%d,%d", rect, cr>>8, cg>>8, cb>>8, ca>>8))
}

func (r *recorder) DrawImage(_ image.Image, dst canvas.Rect) {
	r.calls = append(r.calls, fmt.Sprintf("image %v,%v %vx%v", dst.X, dst.Y, dst.W, dst.H))
}

func (r *recorder) DrawText(s string, x, y float64, style canvas.TextStyle) {
	r.calls = append(r.calls, "text "+s)
	r.texts = append(r.texts, recordedText{s, x, y, style})
}

func TestComposeOrder(t *testing.T) {
	rec := &recorder{bounds: image.Rect(0, 0, 400, 400)}
	c := New(Style{})

	r := fit.Result{Width: 400, Height: 100, StartX: 0, StartY: 150}
	img := image.NewRGBA(image.Rect(0, 0, 800, 200))
	c.Compose(rec, r, img, Captions{Top: "hello", Bottom: "World"})

	expected := []string{
		"clear (0,0)-(400,400)",
		"fill (0,0)-(400,400) 0,0,0,255",
		"image 0,150 400x100",
		"text HELLO",
		"text WORLD",
	}
	if strings.Join(rec.calls, "\n") != strings.Join(expected, "\n") {
		t.Fatalf("calls =\n%s\nwant\n%s", strings.Join(rec.calls, "\n"), strings.Join(expected, "\n"))
	}

	top, bottom := rec.texts[0], rec.texts[1]
	if top.x != 200 || bottom.x != 200 {
		t.Errorf("captions not centered: x = %v, %v", top.x, bottom.x)
	}
	if top.y != 40 || bottom.y != 380 {
		t.Errorf("baselines = %v, %v, want 40, 380", top.y, bottom.y)
	}
	if top.style.Size != 40 || top.style.Align != canvas.AlignCenter {
		t.Errorf("caption style = %+v", top.style)
	}
}

func TestComposeWithoutImage(t *testing.T) {
	rec := &recorder{bounds: image.Rect(0, 0, 100, 100)}
	New(DefaultStyle()).Compose(rec, fit.Result{}, nil, Captions{})

	for _, call := range rec.calls {
		if strings.HasPrefix(call, "image") {
			t.Fatalf("image drawn without a source image: %v", rec.calls)
		}
	}
	if len(rec.texts) != 2 {
		t.Errorf("expected both (empty) captions to be drawn, got %d", len(rec.texts))
	}
}

func TestComposeKeepsCaptionsAsTyped(t *testing.T) {
	rec := &recorder{bounds: image.Rect(0, 0, 100, 100)}
	captions := Captions{Top: "straße", Bottom: "mixed Case"}
	New(DefaultStyle()).Compose(rec, fit.Result{}, nil, captions)

	if captions.Top != "straße" || captions.Bottom != "mixed Case" {
		t.Errorf("captions mutated: %+v", captions)
	}
	if rec.texts[0].s != "STRASSE" || rec.texts[1].s != "MIXED CASE" {
		t.Errorf("rendered = %q, %q", rec.texts[0].s, rec.texts[1].s)
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	surface, err := canvas.New(120, 120)
	if err != nil {
		t.Fatalf("canvas.New() error = %v", err)
	}
	src := image.NewRGBA(image.Rect(0, 0, 30, 90))
	for y := 0; y < 90; y++ {
		for x := 0; x < 30; x++ {
			src.SetRGBA(x, y, color.RGBA{uint8(x * 8), uint8(y * 2), 100, 255})
		}
	}
	r, err := fit.ComputeRect(surface.Bounds(), src.Bounds())
	if err != nil {
		t.Fatalf("fit.ComputeRect() error = %v", err)
	}

	c := New(DefaultStyle())
	captions := Captions{Top: "one does not", Bottom: "simply"}

	c.Compose(surface, r, src, captions)
	first := surface.Snapshot()
	c.Compose(surface, r, src, captions)
	second := surface.Snapshot()

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("second Compose produced different pixels")
	}

	// Letterbox columns stay background black.
	if got := second.RGBAAt(2, 60); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("letterbox pixel = %v, want opaque black", got)
	}
}

func TestClear(t *testing.T) {
	surface, err := canvas.New(20, 20)
	if err != nil {
		t.Fatalf("canvas.New() error = %v", err)
	}
	c := New(DefaultStyle())
	c.Compose(surface, fit.Result{}, nil, Captions{})
	c.Clear(surface)

	for _, p := range surface.RGBA().Pix {
		if p != 0 {
			t.Fatal("Clear left non-transparent pixels")
		}
	}
}

func TestCaptionsSpeech(t *testing.T) {
	tests := []struct {
		captions Captions
		expected string
	}{
		{Captions{"HELLO", "WORLD"}, "HELLO WORLD"},
		{Captions{"", "WORLD"}, " WORLD"},
		{Captions{"HELLO", ""}, "HELLO "},
		{Captions{}, " "},
	}
	for _, tt := range tests {
		if got := tt.captions.Speech(); got != tt.expected {
			t.Errorf("Speech() = %q, want %q", got, tt.expected)
		}
	}
}
