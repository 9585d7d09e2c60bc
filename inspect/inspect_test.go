package inspect_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/inspect"
)

func render(t *testing.T, build func(pdf *gofpdf.Fpdf)) []byte {
	t.Helper()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: 612, Ht: 792}})
	pdf.SetTitle("Deal: 123 Main St", true)
	build(pdf)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output: %v", err)
	}
	return buf.Bytes()
}

func near(a, b geom.Rect) bool {
	const eps = 0.01
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.W-b.W) <= eps && math.Abs(a.H-b.H) <= eps
}

func TestParseLinks(t *testing.T) {
	data := render(t, func(pdf *gofpdf.Fpdf) {
		pdf.AddPage()
		pdf.LinkString(53.3, 618.6, 133, 21.28, "https://example.com/listing?id=(1)")
		pdf.AddPage()
		pdf.AddPage()
		pdf.LinkString(40, 40, 100, 10, "mailto:deals@example.com")
	})
	doc, err := inspect.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(doc.Pages))
	}
	if doc.Pages[0].Width != 612 || doc.Pages[0].Height != 792 {
		t.Errorf("page size = %gx%g", doc.Pages[0].Width, doc.Pages[0].Height)
	}
	if doc.LinkCount() != 2 || len(doc.Pages[1].Links) != 0 {
		t.Fatalf("links per page = %d/%d/%d", len(doc.Pages[0].Links), len(doc.Pages[1].Links), len(doc.Pages[2].Links))
	}
	l := doc.Pages[0].Links[0]
	if l.URI != "https://example.com/listing?id=(1)" {
		t.Errorf("URI = %q", l.URI)
	}
	if want := (geom.Rect{X: 53.3, Y: 618.6, W: 133, H: 21.28}); !near(l.Rect, want) {
		t.Errorf("rect = %v, want %v", l.Rect, want)
	}
	if want := (geom.Rect{X: 40, Y: 40, W: 100, H: 10}); !near(doc.Pages[2].Links[0].Rect, want) {
		t.Errorf("rect = %v, want %v", doc.Pages[2].Links[0].Rect, want)
	}
	if got := doc.Info["Title"]; got != "Deal: 123 Main St" {
		t.Errorf("Title = %q", got)
	}
	if doc.Version == "" {
		t.Error("missing version")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range [][]byte{nil, []byte("hello"), []byte("%PDF-1.4\nno xref here")} {
		if _, err := inspect.Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded", in)
		}
	}
}
