package pdfdoc

import (
	"fmt"

	"github.com/jung-kurt/gofpdf/contrib/barcode"

	"github.com/lvillar/flyerpdf/geom"
)

// Stamp geometry, in points.
const (
	stampHeight  = 18.0
	stampColumns = 4
	stampLevel   = 2
)

// Stamp draws a PDF417 barcode encoding code in the bottom margin of every
// page, right-aligned. The stamp does not change the layout. A section placed
// mid-page under layout.OversizeInPlace can run past H - M; pages with such
// overflow are left unstamped rather than drawn over.
func (d *Document) Stamp(code string) error {
	if d.closed {
		return ErrClosed
	}
	if code == "" {
		return nil
	}
	if d.page.Margin < stampHeight {
		return fmt.Errorf("pdfdoc: margin %g too small for a reference stamp", d.page.Margin)
	}
	key := barcode.RegisterPdf417(d.pdf, code, stampColumns, stampLevel)
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdfdoc: encoding stamp: %w", err)
	}
	w, h := barcode.GetUnscaledBarcodeDimensions(d.pdf, key)
	if h <= 0 || w <= 0 {
		return fmt.Errorf("pdfdoc: stamp barcode has no area")
	}
	sw := w * stampHeight / h
	if max := d.page.PrintableWidth() / 2; sw > max {
		sw = max
	}
	x := d.page.Width - d.page.Margin - sw
	y := d.page.BottomBoundary() + (d.page.Margin-stampHeight)/2

	for i := range d.pages {
		if d.overflows(i) {
			continue
		}
		d.pdf.SetPage(i + 1)
		barcode.Barcode(d.pdf, key, x, y, sw, stampHeight, false)
		if err := d.pdf.Error(); err != nil {
			return fmt.Errorf("pdfdoc: stamping page %d: %w", i+1, err)
		}
		d.pages[i].Stamped = true
	}
	d.pdf.SetPage(len(d.pages))
	return nil
}

// overflows reports whether an image on page i crosses the bottom boundary.
func (d *Document) overflows(i int) bool {
	for _, img := range d.pages[i].Images {
		if img.Rect.Bottom() > d.page.BottomBoundary()+geom.Tolerance {
			return true
		}
	}
	return false
}
