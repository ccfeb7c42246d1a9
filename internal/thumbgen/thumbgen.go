// Package thumbgen decodes a source image, fits it inside a square box and
// encodes the result as PNG.
package thumbgen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"os"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// maxSourceBytes caps how much of a source file is fed to the decoder.
const maxSourceBytes = 256 << 20

// ErrDecode wraps every failure to open or decode a source image.
var ErrDecode = errors.New("decode source image")

// ErrInvalidSize is returned for non-positive target sizes.
var ErrInvalidSize = errors.New("invalid thumbnail size")

// Filter selects the resampling kernel.
type Filter string

const (
	FilterCatmullRom Filter = "catmullrom"
	FilterLanczos    Filter = "lanczos"
	FilterBiLinear   Filter = "bilinear"
)

// ParseFilter maps a config value to a Filter. Empty selects the default.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterCatmullRom:
		return FilterCatmullRom, nil
	case FilterLanczos, FilterBiLinear:
		return Filter(s), nil
	}
	return "", fmt.Errorf("unknown resample filter %q", s)
}

// Generator produces thumbnail bytes. The zero value uses CatmullRom.
type Generator struct {
	Filter Filter
}

// Generate reads srcPath and returns a PNG no larger than size×size.
func (g Generator) Generate(srcPath string, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	img, err := Decode(srcPath)
	if err != nil {
		return nil, err
	}
	thumb := g.Scale(img, size)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Scale fits img inside a size×size box, preserving aspect ratio.
func (g Generator) Scale(img image.Image, size int) image.Image {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), size)

	switch g.Filter {
	case FilterLanczos:
		return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
	case FilterBiLinear:
		return scaleWith(draw.BiLinear, img, w, h)
	default:
		return scaleWith(draw.CatmullRom, img, w, h)
	}
}

func scaleWith(s draw.Scaler, img image.Image, w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// Fit returns the largest dimensions with the aspect ratio of w×h that fit
// inside a box×box square. Images that already fit are returned at their
// own size; small sources are never enlarged to fill the box, unlike a plain
// aspect-preserving scale.
func Fit(w, h, box int) (int, int) {
	if w <= 0 || h <= 0 || box <= 0 {
		return max(box, 1), max(box, 1)
	}
	if w <= box && h <= box {
		return w, h
	}
	if w >= h {
		return box, max(1, h*box/w)
	}
	return max(1, w*box/h), box
}

// Decode opens and decodes any registered image format. Failures wrap
// ErrDecode.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	img, _, err := image.Decode(io.LimitReader(f, maxSourceBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return img, nil
}
