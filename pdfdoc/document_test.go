package pdfdoc_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/links"
	"github.com/lvillar/flyerpdf/pdfdoc"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	return img
}

func newDoc(t *testing.T) *pdfdoc.Document {
	t.Helper()
	d, err := pdfdoc.New(pdfdoc.Options{Page: geom.Letter()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDocumentRecordsContent(t *testing.T) {
	d := newDoc(t)
	if _, err := d.PlaceImage(solid(10, 10), geom.Rect{X: 40, Y: 40, W: 100, H: 100}); !errors.Is(err, pdfdoc.ErrNoPage) {
		t.Fatalf("PlaceImage before AddPage: err = %v, want ErrNoPage", err)
	}
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	name, err := d.PlaceImage(solid(20, 10), geom.Rect{X: 40, Y: 40, W: 532, H: 266})
	if err != nil {
		t.Fatalf("PlaceImage: %v", err)
	}
	if err := d.AddLink(geom.Rect{X: 50, Y: 60, W: 20, H: 10}, "https://example.com"); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := d.AddLink(geom.Rect{X: 50, Y: 60, W: 20, H: 10}, ""); err == nil {
		t.Error("AddLink accepted an empty destination")
	}

	want := pdfdoc.Snapshot{Pages: []pdfdoc.Page{{
		Number:        1,
		Images:        []pdfdoc.Image{{Name: name, Rect: geom.Rect{X: 40, Y: 40, W: 532, H: 266}}},
		Links:         []links.Region{{Rect: geom.Rect{X: 50, Y: 60, W: 20, H: 10}, Href: "https://example.com"}},
		ContentHeight: 266,
	}}}
	if diff := cmp.Diff(want, d.Snapshot()); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
	if got := d.Snapshot().LinkCount(); got != 1 {
		t.Errorf("LinkCount = %d", got)
	}
}

func TestFinalizeOnce(t *testing.T) {
	d := newDoc(t)
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	data, err := d.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:8])
	}
	if _, err := d.Finalize(); !errors.Is(err, pdfdoc.ErrClosed) {
		t.Errorf("second Finalize: err = %v, want ErrClosed", err)
	}
	if err := d.AddPage(); !errors.Is(err, pdfdoc.ErrClosed) {
		t.Errorf("AddPage after Finalize: err = %v, want ErrClosed", err)
	}
	if !bytes.Equal(d.Bytes(), data) {
		t.Error("Bytes differs from Finalize output")
	}
}

func TestOutputIsDeterministic(t *testing.T) {
	render := func() []byte {
		d := newDoc(t)
		if err := d.AddPage(); err != nil {
			t.Fatal(err)
		}
		if _, err := d.PlaceImage(solid(8, 8), geom.Rect{X: 40, Y: 40, W: 100, H: 100}); err != nil {
			t.Fatal(err)
		}
		if err := d.AddLink(geom.Rect{X: 40, Y: 40, W: 10, H: 10}, "https://example.com"); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if _, err := d.WriteTo(&buf); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}
	if !bytes.Equal(render(), render()) {
		t.Error("identical documents rendered to different bytes")
	}
}

func TestEmptyDocumentHasOneBlankPage(t *testing.T) {
	d := newDoc(t)
	if _, err := d.Finalize(); err != nil {
		t.Fatal(err)
	}
	if got := len(d.Snapshot().Pages); got != 1 {
		t.Errorf("pages = %d, want 1", got)
	}
}

func TestSave(t *testing.T) {
	d := newDoc(t)
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "flyer.pdf")
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, d.Bytes()) {
		t.Error("saved file differs from rendered bytes")
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the saved file", len(entries))
	}
	if err := d.Save(path); !errors.Is(err, pdfdoc.ErrClosed) {
		t.Errorf("second Save: err = %v, want ErrClosed", err)
	}
}

func TestStamp(t *testing.T) {
	d := newDoc(t)
	for i := 0; i < 2; i++ {
		if err := d.AddPage(); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.Stamp("FLYER-123-MAIN-ST"); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if _, err := d.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	for _, p := range d.Snapshot().Pages {
		if !p.Stamped {
			t.Errorf("page %d not stamped", p.Number)
		}
	}

	narrow, err := pdfdoc.New(pdfdoc.Options{Page: geom.Page{Width: 612, Height: 792, Margin: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if err := narrow.Stamp("X"); err == nil {
		t.Error("expected error for a margin too small to hold the stamp")
	}
}

func TestStampSkipsOverflowingPage(t *testing.T) {
	d := newDoc(t)
	page := geom.Letter()
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	// An oversized block placed mid-page, as OversizeInPlace does.
	tall := geom.Rect{X: page.Left(), Y: 200, W: page.PrintableWidth(), H: page.MaxContentHeight()}
	if _, err := d.PlaceImage(solid(10, 10), tall); err != nil {
		t.Fatal(err)
	}
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.PlaceImage(solid(10, 10), geom.Rect{X: page.Left(), Y: page.Top(), W: page.PrintableWidth(), H: 100}); err != nil {
		t.Fatal(err)
	}
	if err := d.Stamp("FLYER-123-MAIN-ST"); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	pages := d.Snapshot().Pages
	if pages[0].Stamped {
		t.Error("stamp drawn over the overflowing page")
	}
	if !pages[1].Stamped {
		t.Error("page 2 not stamped")
	}
}

func sourcePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFillColor(200, 30, 30)
		pdf.Rect(50, 50, 200, 100, "F")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestAppendPDF(t *testing.T) {
	d := newDoc(t)
	if err := d.AddPage(); err != nil {
		t.Fatal(err)
	}
	n, err := d.AppendPDF(sourcePDF(t, 2))
	if err != nil {
		t.Fatalf("AppendPDF: %v", err)
	}
	if n != 2 || d.PageCount() != 3 {
		t.Fatalf("added %d pages, document has %d; want 2 and 3", n, d.PageCount())
	}
	snap := d.Snapshot()
	if snap.Pages[0].Imported || !snap.Pages[1].Imported || !snap.Pages[2].Imported {
		t.Errorf("imported flags = %v %v %v", snap.Pages[0].Imported, snap.Pages[1].Imported, snap.Pages[2].Imported)
	}
	if _, err := d.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}

func TestAppendPDFRejectsGarbage(t *testing.T) {
	d := newDoc(t)
	if _, err := d.AppendPDF([]byte("not a pdf")); err == nil {
		t.Fatal("expected error")
	}
}
