// Package geom holds the physical page model shared by every stage of flyer
// generation: page size, margins, the gap between sections and the
// conversions between on-screen pixels and PDF points.
//
// All page measurements are in points (1/72 inch) with the origin at the
// top-left corner of the page and y growing downwards, which is the
// coordinate system gofpdf uses for placement.
package geom

import (
	"fmt"
	"math"
)

// Default values for a flyer page.
const (
	LetterWidth  = 612.0 // US Letter, points
	LetterHeight = 792.0
	A4Width      = 595.28
	A4Height     = 841.89

	DefaultMargin = 40.0
	DefaultGap    = 20.0

	// PointsPerPixel converts CSS pixels (96 dpi) to points (72 dpi).
	PointsPerPixel = 72.0 / 96.0
)

// Tolerance is the slack allowed when comparing derived float measurements.
const Tolerance = 1e-6

// Point is a position in some coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{r.X, r.Y} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Offset returns r translated so that origin becomes (0,0).
func (r Rect) Offset(origin Point) Rect {
	return Rect{X: r.X - origin.X, Y: r.Y - origin.Y, W: r.W, H: r.H}
}

// Scale multiplies every component of r by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

// Translate moves r by p.
func (r Rect) Translate(p Point) Rect {
	return Rect{X: r.X + p.X, Y: r.Y + p.Y, W: r.W, H: r.H}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.W, r.H)
}

// Page describes the physical page: its size, a uniform margin and the
// vertical gap inserted after every placed section. It carries no mutable
// state; every method is a pure function of the four values.
type Page struct {
	Width  float64
	Height float64
	Margin float64
	Gap    float64
}

// Letter returns the default flyer page: US Letter, 40pt margins, 20pt gap.
func Letter() Page {
	return Page{Width: LetterWidth, Height: LetterHeight, Margin: DefaultMargin, Gap: DefaultGap}
}

// PageSize returns a page with the named size ("letter", "a4", "legal")
// and default margin and gap.
func PageSize(name string) (Page, error) {
	p := Letter()
	switch name {
	case "", "letter", "Letter":
	case "a4", "A4":
		p.Width, p.Height = A4Width, A4Height
	case "legal", "Legal":
		p.Width, p.Height = 612, 1008
	default:
		return Page{}, fmt.Errorf("geom: unknown page size %q", name)
	}
	return p, nil
}

// Validate checks that the page leaves room for content.
func (p Page) Validate() error {
	for _, v := range [...]float64{p.Width, p.Height, p.Margin, p.Gap} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("geom: page %gx%g margin %g gap %g must be finite", p.Width, p.Height, p.Margin, p.Gap)
		}
	}
	switch {
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("geom: page size %gx%g must be positive", p.Width, p.Height)
	case p.Margin < 0 || p.Gap < 0:
		return fmt.Errorf("geom: margin %g and gap %g must not be negative", p.Margin, p.Gap)
	case p.PrintableWidth() <= 0 || p.MaxContentHeight() <= 0:
		return fmt.Errorf("geom: margin %g leaves no printable area on a %gx%g page", p.Margin, p.Width, p.Height)
	}
	return nil
}

// PrintableWidth is W - 2M.
func (p Page) PrintableWidth() float64 { return p.Width - 2*p.Margin }

// Top is where the cursor starts on every page.
func (p Page) Top() float64 { return p.Margin }

// Left is the x coordinate every section is placed at.
func (p Page) Left() float64 { return p.Margin }

// BottomBoundary is the hard lower limit H - M that no placed section may
// cross.
func (p Page) BottomBoundary() float64 { return p.Height - p.Margin }

// MaxContentHeight is the tallest section that fits between the top margin
// and the bottom boundary, H - 2M.
func (p Page) MaxContentHeight() float64 { return p.BottomBoundary() - p.Top() }

// Fits reports whether a block of height h starting at y stays above the
// bottom boundary.
func (p Page) Fits(y, h float64) bool {
	return y+h <= p.BottomBoundary()+Tolerance
}

// PixelsToPoints converts CSS pixels to points.
func PixelsToPoints(px float64) float64 { return px * PointsPerPixel }

// PointsToPixels converts points to CSS pixels.
func PointsToPixels(pt float64) float64 { return pt / PointsPerPixel }

// NearlyEqual compares two measurements within Tolerance.
func NearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= Tolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
