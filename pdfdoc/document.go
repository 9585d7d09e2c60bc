// Package pdfdoc owns the output PDF of one generation run.
//
// A Document accumulates pages, section images and link annotations on top
// of gofpdf and is finalized exactly once. Everything that touches the
// underlying gofpdf value goes through Document, so the paginator and the
// link projector share one owner.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/links"
)

var (
	// ErrClosed is returned by every mutating call after Finalize.
	ErrClosed = errors.New("pdfdoc: document already finalized")
	// ErrNoPage is returned when content is added before the first page.
	ErrNoPage = errors.New("pdfdoc: no current page")
)

// Metadata is written to the PDF info dictionary.
type Metadata struct {
	Title    string `json:"title,omitempty" yaml:"title"`
	Author   string `json:"author,omitempty" yaml:"author"`
	Subject  string `json:"subject,omitempty" yaml:"subject"`
	Creator  string `json:"creator,omitempty" yaml:"creator"`
	Keywords string `json:"keywords,omitempty" yaml:"keywords"`
}

// Options configure a new Document.
type Options struct {
	Page geom.Page
	// CreationDate is stamped as both creation and modification date. The
	// zero value uses the Unix epoch so identical input yields identical
	// bytes.
	CreationDate time.Time
	Metadata     Metadata
	// Uncompressed disables stream compression.
	Uncompressed bool
}

// Image is a placed section bitmap as recorded in a Snapshot.
type Image struct {
	Name string    `json:"name"`
	Rect geom.Rect `json:"rect"`
}

// Page is the recorded content of one page.
type Page struct {
	Number int            `json:"number"`
	Images []Image        `json:"images,omitempty"`
	Links  []links.Region `json:"links,omitempty"`
	// ContentHeight is the distance from the top margin to the bottom of the
	// lowest image on the page.
	ContentHeight float64 `json:"contentHeight"`
	// Imported is set for pages copied from another PDF.
	Imported bool `json:"imported,omitempty"`
	// Stamped is set for pages carrying the reference stamp.
	Stamped bool `json:"stamped,omitempty"`
}

// Snapshot is the structure of a document, independent of its bytes.
type Snapshot struct {
	Pages []Page `json:"pages"`
}

// LinkCount returns the number of link regions across all pages.
func (s Snapshot) LinkCount() int {
	n := 0
	for _, p := range s.Pages {
		n += len(p.Links)
	}
	return n
}

// Document is a PDF under construction. It is not safe for concurrent use.
type Document struct {
	pdf    *gofpdf.Fpdf
	page   geom.Page
	pages  []Page
	images int
	out    []byte
	closed bool
}

// New starts an empty document. No page exists until AddPage.
func New(opts Options) (*Document, error) {
	if err := opts.Page.Validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opts.Page.Width, Ht: opts.Page.Height},
	})
	pdf.SetMargins(opts.Page.Margin, opts.Page.Margin, opts.Page.Margin)
	pdf.SetAutoPageBreak(false, opts.Page.Margin)
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetCatalogSort(true)

	created := opts.CreationDate
	if created.IsZero() {
		created = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)

	m := opts.Metadata
	if m.Creator == "" {
		m.Creator = "flyerpdf"
	}
	pdf.SetTitle(m.Title, true)
	pdf.SetAuthor(m.Author, true)
	pdf.SetSubject(m.Subject, true)
	pdf.SetCreator(m.Creator, true)
	pdf.SetKeywords(m.Keywords, true)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdfdoc: initializing document: %w", err)
	}
	return &Document{pdf: pdf, page: opts.Page}, nil
}

// Page returns the page geometry.
func (d *Document) Page() geom.Page { return d.page }

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int { return len(d.pages) }

// AddPage starts a new page and makes it current.
func (d *Document) AddPage() error {
	if d.closed {
		return ErrClosed
	}
	d.pdf.AddPage()
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdfdoc: adding page: %w", err)
	}
	d.pages = append(d.pages, Page{Number: len(d.pages) + 1})
	return nil
}

// EnsurePage adds pages until the document has n of them.
func (d *Document) EnsurePage(n int) error {
	for len(d.pages) < n {
		if err := d.AddPage(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) current() (*Page, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if len(d.pages) == 0 {
		return nil, ErrNoPage
	}
	return &d.pages[len(d.pages)-1], nil
}

// PlaceImage draws img on the current page stretched to r and returns the
// name it was registered under.
func (d *Document) PlaceImage(img image.Image, r geom.Rect) (string, error) {
	p, err := d.current()
	if err != nil {
		return "", err
	}
	if r.Empty() {
		return "", fmt.Errorf("pdfdoc: image rect %v has no area", r)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("pdfdoc: encoding image: %w", err)
	}
	d.images++
	name := fmt.Sprintf("section-%d", d.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	d.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return "", fmt.Errorf("pdfdoc: placing %s: %w", name, err)
	}
	p.Images = append(p.Images, Image{Name: name, Rect: r})
	if h := r.Bottom() - d.page.Top(); h > p.ContentHeight {
		p.ContentHeight = h
	}
	return name, nil
}

// AddLink registers a clickable region on the current page. Nothing is
// drawn.
func (d *Document) AddLink(r geom.Rect, href string) error {
	p, err := d.current()
	if err != nil {
		return err
	}
	if href == "" {
		return fmt.Errorf("pdfdoc: link at %v has no destination", r)
	}
	d.pdf.LinkString(r.X, r.Y, r.W, r.H, href)
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("pdfdoc: adding link: %w", err)
	}
	p.Links = append(p.Links, links.Region{Rect: r, Href: href})
	return nil
}

// Snapshot returns a deep copy of the document's structure.
func (d *Document) Snapshot() Snapshot {
	s := Snapshot{Pages: make([]Page, len(d.pages))}
	for i, p := range d.pages {
		p.Images = append([]Image(nil), p.Images...)
		p.Links = append([]links.Region(nil), p.Links...)
		s.Pages[i] = p
	}
	return s
}

// Finalized reports whether Finalize has run.
func (d *Document) Finalized() bool { return d.closed }

// Finalize closes the document and renders it. It succeeds once; later calls
// return ErrClosed. A document without pages is written with one blank page.
func (d *Document) Finalize() ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	d.closed = true
	if len(d.pages) == 0 {
		// gofpdf adds the page itself on close.
		d.pages = append(d.pages, Page{Number: 1})
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdfdoc: rendering: %w", err)
	}
	d.out = buf.Bytes()
	return d.out, nil
}

// Bytes returns the rendered document, or nil before Finalize.
func (d *Document) Bytes() []byte { return d.out }

// WriteTo finalizes the document and writes it to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	data, err := d.Finalize()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Save finalizes the document and writes it to path. The file appears only
// once fully written.
func (d *Document) Save(path string) error {
	data, err := d.Finalize()
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// WriteFile writes data to path through a temporary file in the same
// directory and a rename.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("pdfdoc: creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("pdfdoc: writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pdfdoc: writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("pdfdoc: writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pdfdoc: saving %s: %w", path, err)
	}
	return nil
}
