// Package inspect reads back the structure of PDFs written by flyerpdf: the
// page list, page sizes, link annotations and the info dictionary.
//
// It is not a general PDF reader. It understands classic cross-reference
// tables and uncompressed page dictionaries, which is what gofpdf produces,
// and reports link rectangles in the same top-left page coordinates the
// generator placed them in.
package inspect

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"unicode/utf16"

	"github.com/lvillar/flyerpdf/geom"
)

// Link is a URI link annotation.
type Link struct {
	Rect geom.Rect `json:"rect"`
	URI  string    `json:"uri"`
}

// Page is one page of a document.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Links  []Link  `json:"links,omitempty"`
}

// Document is the inspected structure of a PDF.
type Document struct {
	Version string            `json:"version"`
	Pages   []Page            `json:"pages"`
	Info    map[string]string `json:"info,omitempty"`
	Images  int               `json:"images"`
}

// LinkCount returns the number of link annotations in the document.
func (d *Document) LinkCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Links)
	}
	return n
}

// Open inspects the PDF file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inspect: opening %s: %w", path, err)
	}
	return Parse(data)
}

// Read inspects a PDF read from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inspect: reading input: %w", err)
	}
	return Parse(data)
}

type file struct {
	data  []byte
	xref  xref
	cache map[int]object
}

// Parse inspects a PDF held in memory.
func Parse(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, fmt.Errorf("inspect: missing %%PDF header")
	}
	off, err := startXRef(data)
	if err != nil {
		return nil, err
	}
	table, trailer, err := readXRef(data, off)
	if err != nil {
		return nil, err
	}
	f := &file{data: data, xref: table, cache: make(map[int]object)}
	if _, ok := trailer["Encrypt"]; ok {
		return nil, fmt.Errorf("inspect: encrypted documents are not supported")
	}

	doc := &Document{Version: version(data)}
	root, err := f.resolveDict(trailer["Root"])
	if err != nil {
		return nil, fmt.Errorf("inspect: catalog: %w", err)
	}
	pages, err := f.resolveDict(root["Pages"])
	if err != nil {
		return nil, fmt.Errorf("inspect: page tree: %w", err)
	}
	if err := f.walkPages(doc, pages, nil, 0); err != nil {
		return nil, err
	}
	if info, err := f.resolveDict(trailer["Info"]); err == nil {
		doc.Info = infoStrings(info)
	}
	doc.Images = f.countImages()
	return doc, nil
}

func version(data []byte) string {
	line := data[len("%PDF-"):min(len(data), 16)]
	if i := bytes.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	return string(line)
}

func (f *file) resolve(o object) (object, error) {
	r, ok := o.(ref)
	if !ok {
		return o, nil
	}
	if v, ok := f.cache[r.num]; ok {
		return v, nil
	}
	off, ok := f.xref[r.num]
	if !ok {
		return null{}, nil
	}
	if off < 0 || off >= int64(len(f.data)) {
		return nil, fmt.Errorf("inspect: object %d offset %d out of range", r.num, off)
	}
	v, err := newParser(f.data[off:]).indirect()
	if err != nil {
		return nil, err
	}
	f.cache[r.num] = v
	return v, nil
}

func (f *file) resolveDict(o object) (dict, error) {
	v, err := f.resolve(o)
	if err != nil {
		return nil, err
	}
	switch d := v.(type) {
	case dict:
		return d, nil
	case stream:
		return d.dict, nil
	}
	return nil, fmt.Errorf("inspect: expected a dictionary, got %T", v)
}

// walkPages collects leaf pages, inheriting /MediaBox from ancestors.
func (f *file) walkPages(doc *Document, node dict, mediaBox object, depth int) error {
	if depth > 32 {
		return fmt.Errorf("inspect: page tree too deep")
	}
	if mb, ok := node["MediaBox"]; ok {
		mediaBox = mb
	}
	if node.name("Type") == "Page" {
		return f.addPage(doc, node, mediaBox)
	}
	kids, err := f.resolve(node["Kids"])
	if err != nil {
		return err
	}
	list, _ := kids.(array)
	for _, k := range list {
		kid, err := f.resolveDict(k)
		if err != nil {
			return fmt.Errorf("inspect: page tree kid: %w", err)
		}
		if err := f.walkPages(doc, kid, mediaBox, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (f *file) addPage(doc *Document, node dict, mediaBox object) error {
	pg := Page{Number: len(doc.Pages) + 1}
	mb, err := f.resolve(mediaBox)
	if err != nil {
		return err
	}
	r, err := box(mb)
	if err != nil {
		return fmt.Errorf("inspect: page %d media box: %w", pg.Number, err)
	}
	pg.Width, pg.Height = r[2]-r[0], r[3]-r[1]

	annots, err := f.resolve(node["Annots"])
	if err != nil {
		return err
	}
	list, _ := annots.(array)
	for _, a := range list {
		ad, err := f.resolveDict(a)
		if err != nil || ad.name("Subtype") != "Link" {
			continue
		}
		action, err := f.resolveDict(ad["A"])
		if err != nil || action.name("S") != "URI" {
			continue
		}
		uri, _ := action["URI"].(str)
		rect, err := box(ad["Rect"])
		if err != nil {
			return fmt.Errorf("inspect: page %d link: %w", pg.Number, err)
		}
		pg.Links = append(pg.Links, Link{Rect: topLeft(rect, r[3]), URI: string(uri)})
	}
	doc.Pages = append(doc.Pages, pg)
	return nil
}

// topLeft converts a PDF rectangle, whose corners may come in any order,
// to a top-left origin rectangle on a page whose top edge is at top.
func topLeft(r [4]float64, top float64) geom.Rect {
	x0, x1 := math.Min(r[0], r[2]), math.Max(r[0], r[2])
	y0, y1 := math.Min(r[1], r[3]), math.Max(r[1], r[3])
	return geom.Rect{X: x0, Y: top - y1, W: x1 - x0, H: y1 - y0}
}

// countImages counts image XObjects, leaving out soft masks.
func (f *file) countImages() int {
	images := make(map[int]bool)
	masks := make(map[int]bool)
	for num := range f.xref {
		v, err := f.resolve(ref{num: num})
		if err != nil {
			continue
		}
		s, ok := v.(stream)
		if !ok || s.dict.name("Subtype") != "Image" {
			continue
		}
		images[num] = true
		if m, ok := s.dict["SMask"].(ref); ok {
			masks[m.num] = true
		}
	}
	n := 0
	for num := range images {
		if !masks[num] {
			n++
		}
	}
	return n
}

func infoStrings(info dict) map[string]string {
	out := make(map[string]string)
	for _, key := range []name{"Title", "Author", "Subject", "Keywords", "Creator", "Producer"} {
		if s, ok := info[key].(str); ok && len(s) > 0 {
			out[string(key)] = decodeText(s)
		}
	}
	return out
}

// decodeText decodes a PDF text string: UTF-16BE with a byte order mark, or
// PDFDocEncoding, treated here as Latin-1.
func decodeText(s str) string {
	if len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff {
		u := make([]uint16, 0, (len(s)-2)/2)
		for i := 2; i+1 < len(s); i += 2 {
			u = append(u, uint16(s[i])<<8|uint16(s[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(s))
	for i, b := range s {
		r[i] = rune(b)
	}
	return string(r)
}
