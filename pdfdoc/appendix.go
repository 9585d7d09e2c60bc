package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
	realgofpdi "github.com/phpdave11/gofpdi"
)

// AppendPDF copies every page of the PDF in data to the end of the document,
// each on its own page, scaled to fit inside the margins and centered. It
// returns the number of pages added.
func (d *Document) AppendPDF(data []byte) (n int, err error) {
	if d.closed {
		return 0, ErrClosed
	}
	// gofpdi reports malformed input by panicking.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfdoc: importing appendix: %v", r)
		}
	}()

	count, err := countPages(data)
	if err != nil {
		return 0, err
	}

	var rs io.ReadSeeker = bytes.NewReader(data)
	imp := gofpdi.NewImporter()
	for i := 1; i <= count; i++ {
		tpl := imp.ImportPageFromStream(d.pdf, &rs, i, "/MediaBox")
		w, h := pageSize(imp.GetPageSizes(), i)
		if err := d.AddPage(); err != nil {
			return n, err
		}
		x, y, sw, sh := d.fitBox(w, h)
		imp.UseImportedTemplate(d.pdf, tpl, x, y, sw, sh)
		if err := d.pdf.Error(); err != nil {
			return n, fmt.Errorf("pdfdoc: importing appendix page %d: %w", i, err)
		}
		d.pages[len(d.pages)-1].Imported = true
		n++
	}
	return n, nil
}

// AppendPDFFile is AppendPDF for a file on disk.
func (d *Document) AppendPDFFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdfdoc: reading appendix: %w", err)
	}
	return d.AppendPDF(data)
}

func countPages(data []byte) (int, error) {
	var rs io.ReadSeeker = bytes.NewReader(data)
	imp := realgofpdi.NewImporter()
	imp.SetSourceStream(&rs)
	n := imp.GetNumPages()
	if n < 1 {
		return 0, fmt.Errorf("pdfdoc: appendix has no pages")
	}
	return n, nil
}

func pageSize(sizes map[int]map[string]map[string]float64, page int) (w, h float64) {
	if box, ok := sizes[page]["/MediaBox"]; ok {
		return box["w"], box["h"]
	}
	return 0, 0
}

// fitBox scales a w x h page into the printable area, keeping its aspect
// ratio.
func (d *Document) fitBox(w, h float64) (x, y, sw, sh float64) {
	pw, ph := d.page.PrintableWidth(), d.page.MaxContentHeight()
	if w <= 0 || h <= 0 {
		return d.page.Left(), d.page.Top(), pw, ph
	}
	s := math.Min(pw/w, ph/h)
	sw, sh = w*s, h*s
	return d.page.Left() + (pw-sw)/2, d.page.Top() + (ph-sh)/2, sw, sh
}
