// Package raster turns section fragments into bitmaps and sizes them for the
// page.
//
// Rasterizer is the rendering primitive; Painter is the built-in
// implementation that paints boxes, text, images, links and form controls
// onto an RGBA canvas. Fit wraps any Rasterizer with the page-fitting rule:
// a section taller than a page's content area is rendered again, from the
// fragment, at a proportionally smaller scale.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
)

// DefaultScale is the canvas multiplier used for print-quality output.
const DefaultScale = 2.0

// maxPixels bounds the canvas of a single section.
const maxPixels = 120_000_000

// ErrTooLarge reports a canvas that would exceed maxPixels.
var ErrTooLarge = errors.New("raster: canvas too large")

// Options control one rasterization.
type Options struct {
	Scale      float64     // canvas pixels per source pixel
	Background color.Color // fill behind the content; nil means white
}

func (o Options) background() color.Color {
	if o.Background == nil {
		return color.White
	}
	return o.Background
}

// Bitmap is a rendered section.
type Bitmap struct {
	Image *image.RGBA
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.Image.Bounds().Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.Image.Bounds().Dy() }

// Rasterizer renders a fragment to a bitmap. Implementations must produce
// the same dimensions for the same fragment and scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, f *fragment.Fragment, opts Options) (*Bitmap, error)
}

// CanvasSize returns the bitmap dimensions for a fragment at scale.
func CanvasSize(f *fragment.Fragment, scale float64) (w, h int) {
	b := f.Bounds()
	return int(math.Ceil(b.W*scale - geom.Tolerance)), int(math.Ceil(b.H*scale - geom.Tolerance))
}

// Section is a rasterized section sized for the page.
type Section struct {
	Bitmap *Bitmap

	// Scale is the canvas multiplier the final bitmap was rendered at.
	Scale float64
	// ScaleFactor converts bitmap pixels to page units.
	ScaleFactor float64
	// LinkScale converts source pixels (the fragment's coordinate space) to
	// page units.
	LinkScale float64

	// Width and Height are the placed size in page units.
	Width, Height float64

	// Oversized is set when the natural height exceeded the page's content
	// height and the section was rendered again at Scale*FitScale.
	Oversized bool
	FitScale  float64
}

// Fit rasterizes f for a page. The bitmap spans the printable width; when
// that makes it taller than the page's content height, f is rasterized again
// at the reduced scale and placed exactly MaxContentHeight tall with its
// aspect ratio kept.
func Fit(ctx context.Context, r Rasterizer, f *fragment.Fragment, opts Options, page geom.Page) (*Section, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("raster: scale %g must be positive", opts.Scale)
	}
	srcW := f.Bounds().W
	if srcW <= 0 {
		return nil, fmt.Errorf("%w: section has no width", fragment.ErrInvalid)
	}
	bm, err := r.Rasterize(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	if bm.Width() == 0 || bm.Height() == 0 {
		return nil, fmt.Errorf("raster: empty bitmap %dx%d", bm.Width(), bm.Height())
	}

	pw := page.PrintableWidth()
	maxH := page.MaxContentHeight()
	sf := pw / float64(bm.Width())
	h := float64(bm.Height()) * sf
	if h <= maxH+geom.Tolerance {
		return &Section{
			Bitmap:      bm,
			Scale:       opts.Scale,
			ScaleFactor: sf,
			LinkScale:   pw / srcW,
			Width:       pw,
			Height:      h,
			FitScale:    1,
		}, nil
	}

	fit := maxH / h
	reduced := opts
	reduced.Scale = opts.Scale * fit
	bm, err = r.Rasterize(ctx, f, reduced)
	if err != nil {
		return nil, err
	}
	if bm.Width() == 0 || bm.Height() == 0 {
		return nil, fmt.Errorf("raster: empty bitmap %dx%d at scale %g", bm.Width(), bm.Height(), reduced.Scale)
	}
	w := pw * fit
	return &Section{
		Bitmap:      bm,
		Scale:       reduced.Scale,
		ScaleFactor: w / float64(bm.Width()),
		LinkScale:   w / srcW,
		Width:       w,
		Height:      maxH,
		Oversized:   true,
		FitScale:    fit,
	}, nil
}
