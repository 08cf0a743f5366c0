// Package decode turns user-supplied image files into decoded images.
//
// PNG, JPEG and GIF come from the standard library; BMP, TIFF and WebP are
// registered from golang.org/x/image.
package decode

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// ErrDecode matches every DecodeError.
var ErrDecode = errors.New("unable to decode image")

// DecodeError reports an unsupported, corrupt or empty image.
type DecodeError struct {
	Path  string
	Cause error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", ErrDecode, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %v", ErrDecode, e.Cause)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrDecode) hold.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// Extensions lists the file extensions the decoder understands.
var Extensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp",
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Image is a decoded source image.
type Image struct {
	image.Image
	Path   string
	Format string
	Size   int64 // bytes read from the source
}

// Width returns the natural width in pixels.
func (i *Image) Width() int { return i.Bounds().Dx() }

// Height returns the natural height in pixels.
func (i *Image) Height() int { return i.Bounds().Dy() }

// Reader decodes an image from r.
func Reader(r io.Reader) (*Image, error) {
	cr := &countingReader{r: r}
	img, format, err := image.Decode(cr)
	if err != nil {
		return nil, &DecodeError{Cause: err}
	}
	if img.Bounds().Empty() {
		return nil, &DecodeError{Cause: errors.New("image has no pixels")}
	}
	return &Image{Image: img, Format: format, Size: cr.n}, nil
}

// File decodes the image stored at path.
func File(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Cause: err}
	}
	defer f.Close() //nolint:errcheck

	img, err := Reader(f)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Path = path
		}
		return nil, err
	}
	img.Path = path
	log.Debug("decoded image", "path", path, "format", img.Format,
		"width", img.Width(), "height", img.Height())
	return img, nil
}

// Result is delivered by Load once decoding finishes.
type Result struct {
	Image *Image
	Err   error
}

// Load decodes path in the background. The channel receives exactly one
// Result and is then closed. If ctx is done first, the Result carries the
// context error.
func Load(ctx context.Context, path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		done := make(chan Result, 1)
		go func() {
			img, err := File(path)
			done <- Result{Image: img, Err: err}
		}()
		select {
		case res := <-done:
			ch <- res
		case <-ctx.Done():
			ch <- Result{Err: &DecodeError{Path: path, Cause: ctx.Err()}}
		}
	}()
	return ch
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
