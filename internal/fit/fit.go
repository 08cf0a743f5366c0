// Package fit computes where a source image lands on a fixed-size canvas.
//
// The image is scaled uniformly so that it fills the canvas along one axis
// and is centered along the other (letterboxing). Coordinates are not
// rounded; callers rasterize with fractional positions.
package fit

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalidDimension is returned when a size passed to Compute is not a
// positive finite number. It usually means the source image has not been
// decoded yet.
var ErrInvalidDimension = errors.New("invalid dimension")

// DimensionError reports which argument of Compute was rejected.
type DimensionError struct {
	Name  string
	Value float64
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s must be positive and finite, got %v", ErrInvalidDimension, e.Name, e.Value)
}

// Is makes errors.Is(err, ErrInvalidDimension) hold for every DimensionError.
func (e *DimensionError) Is(target error) bool {
	return target == ErrInvalidDimension
}

// Result is the scaled size of the image and the offset of its top-left
// corner on the canvas.
type Result struct {
	Width  float64
	Height float64
	StartX float64
	StartY float64
}

// Compute scales an imageWidth×imageHeight image into a
// canvasWidth×canvasHeight canvas, preserving its aspect ratio.
//
// Images taller than wide take the full canvas height and are centered
// horizontally. Everything else, squares included, takes the full canvas
// width and is centered vertically.
func Compute(canvasWidth, canvasHeight, imageWidth, imageHeight float64) (Result, error) {
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"canvas width", canvasWidth},
		{"canvas height", canvasHeight},
		{"image width", imageWidth},
		{"image height", imageHeight},
	} {
		if !valid(d.value) {
			return Result{}, &DimensionError{Name: d.name, Value: d.value}
		}
	}

	aspectRatio := imageWidth / imageHeight

	var r Result
	if aspectRatio < 1 {
		r.Height = canvasHeight
		r.Width = canvasHeight * aspectRatio
		r.StartY = 0
		r.StartX = (canvasWidth - r.Width) / 2
	} else {
		r.Width = canvasWidth
		r.Height = canvasWidth / aspectRatio
		r.StartX = 0
		r.StartY = (canvasHeight - r.Height) / 2
	}
	return r, nil
}

// ComputeRect is Compute for integer rectangles, as handed out by
// image.Image.Bounds.
func ComputeRect(canvas, img image.Rectangle) (Result, error) {
	return Compute(
		float64(canvas.Dx()), float64(canvas.Dy()),
		float64(img.Dx()), float64(img.Dy()),
	)
}

// AspectRatio returns Width/Height of the fitted image.
func (r Result) AspectRatio() float64 {
	if r.Height == 0 {
		return 0
	}
	return r.Width / r.Height
}

// Scale returns the factor applied to a source image of the given width.
func (r Result) Scale(imageWidth float64) float64 {
	if imageWidth == 0 {
		return 0
	}
	return r.Width / imageWidth
}

// Bounds returns the smallest integer rectangle covering the fitted image.
func (r Result) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.StartX)),
		int(math.Floor(r.StartY)),
		int(math.Ceil(r.StartX+r.Width)),
		int(math.Ceil(r.StartY+r.Height)),
	)
}

func valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
