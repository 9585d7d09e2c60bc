// Package flyer lays out the nine flyer sections of a property record as
// measured fragments, ready for pagination.
//
// Text is measured with the same faces the rasterizer paints with, so a
// fragment's bounds match what ends up on the bitmap. A section whose
// fields are all blank renders as a lone "N/A" placeholder, the way the
// web form shows an untouched card.
package flyer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/raster"
	"github.com/lvillar/flyerpdf/section"
)

// Layout metrics in CSS pixels.
const (
	Width   = 800.0
	Padding = 32.0

	titleSize   = 28.0
	headingSize = 22.0
	labelWidth  = 200.0
	columnGap   = 16.0
	blockGap    = 10.0
	photoGap    = 16.0
	qrSize      = 140.0
)

// Placeholder is printed for blank fields.
const Placeholder = "N/A"

const (
	background = "#ffffff"
	accent     = "#1f4e79"
	muted      = "#5a5a5a"
)

// ErrNoProperty is returned when Build is called without a record.
var ErrNoProperty = errors.New("flyer: no property record")

// Builder lays out sections. It is not safe for concurrent use.
type Builder struct {
	fonts *raster.Fonts
}

// NewBuilder returns a Builder measuring text with fonts. Passing the
// painter's own Fonts shares its face cache.
func NewBuilder(fonts *raster.Fonts) *Builder {
	return &Builder{fonts: fonts}
}

// Build lays out every section of p with a fresh font cache.
func Build(p *property.Property) ([]section.Section, error) {
	fonts, err := raster.NewFonts()
	if err != nil {
		return nil, fmt.Errorf("flyer: loading fonts: %w", err)
	}
	return NewBuilder(fonts).Build(p)
}

// Build returns the sections of p in canonical order.
func (b *Builder) Build(p *property.Property) ([]section.Section, error) {
	if p == nil {
		return nil, ErrNoProperty
	}
	out := make([]section.Section, 0, len(section.Keys()))
	for _, k := range section.Keys() {
		f, err := b.Section(k, p)
		if err != nil {
			return nil, err
		}
		out = append(out, section.Section{Key: k, Fragment: f})
	}
	return out, nil
}

// Section lays out a single section of p.
func (b *Builder) Section(k section.Key, p *property.Property) (*fragment.Fragment, error) {
	switch k {
	case section.Property:
		return b.header(p), nil
	case section.Financial:
		f := p.Financials
		return b.card(k, rows{
			{"Purchase Price", f.PurchasePrice},
			{"ARV", f.ARV},
			{"Rehab Estimate", f.RehabEstimate},
			{"Assignment Fee", f.AssignmentFee},
		}, f.Notes), nil
	case section.PropertyDetails:
		d := p.Details
		return b.card(k, rows{
			{"Property Type", d.PropertyType},
			{"Bedrooms", d.Bedrooms},
			{"Bathrooms", d.Bathrooms},
			{"Square Feet", d.SquareFeet},
			{"Lot Size", d.LotSize},
			{"Year Built", d.YearBuilt},
		}, d.Description), nil
	case section.Comps:
		return b.comps(p.Comps), nil
	case section.Occupancy:
		o := p.Occupancy
		return b.card(k, rows{
			{"Status", o.Status},
			{"Lease Terms", o.LeaseTerms},
			{"Monthly Rent", o.MonthlyRent},
		}, ""), nil
	case section.Access:
		a := p.Access
		return b.card(k, rows{
			{"Instructions", a.Instructions},
			{"Lockbox", a.Lockbox},
			{"Showing Window", a.ShowingWindow},
		}, ""), nil
	case section.EMDClosing:
		e := p.EMD
		return b.card(k, rows{
			{"EMD Amount", e.Amount},
			{"Closing Date", e.ClosingDate},
			{"Title Company", e.TitleCompany},
		}, ""), nil
	case section.ExitStrategy:
		return b.exit(p.Exit), nil
	case section.Contact:
		return b.contact(p)
	}
	return nil, fmt.Errorf("flyer: unknown section %v", k)
}

type row struct {
	label, value string
}

type rows []row

func (rs rows) blank() bool {
	for _, r := range rs {
		if !property.Blank(r.value) {
			return false
		}
	}
	return true
}

// sheet accumulates the nodes of one section top to bottom.
type sheet struct {
	b     *Builder
	y     float64
	nodes []*fragment.Node
}

func (b *Builder) sheet() *sheet {
	return &sheet{b: b, y: Padding}
}

func (s *sheet) contentWidth() float64 { return Width - 2*Padding }

func (s *sheet) add(nodes []*fragment.Node, h float64) {
	s.nodes = append(s.nodes, nodes...)
	s.y += h + blockGap
}

func (s *sheet) heading(title string) {
	nodes, h := s.b.flow([]word{{text: title, bold: true}}, Padding, s.y, s.contentWidth(), headingSize)
	for _, n := range nodes {
		n.Style.Color = accent
	}
	rule := fragment.Box(geom.Rect{X: Padding, Y: s.y + h + 2, W: s.contentWidth(), H: 2})
	rule.Style.Background = accent
	s.add(append(nodes, rule), h+4)
}

func (s *sheet) paragraph(ws []word, size float64) {
	nodes, h := s.b.flow(ws, Padding, s.y, s.contentWidth(), size)
	s.add(nodes, h)
}

func (s *sheet) markdown(src string) {
	for _, bl := range parseMarkdown(src) {
		if bl.heading {
			for i := range bl.words {
				bl.words[i].bold = true
			}
		}
		s.paragraph(bl.words, raster.DefaultFontSize)
	}
}

// row lays a bold label beside its value.
func (s *sheet) row(label string, value []word) {
	if len(value) == 0 {
		value = []word{{text: Placeholder}}
	}
	size := raster.DefaultFontSize
	labels, lh := s.b.flow([]word{{text: label, bold: true}}, Padding, s.y, labelWidth, size)
	for _, n := range labels {
		n.Style.Color = muted
	}
	x := Padding + labelWidth + columnGap
	values, vh := s.b.flow(value, x, s.y, s.contentWidth()-labelWidth-columnGap, size)
	s.add(append(labels, values...), max(lh, vh))
}

func (s *sheet) photos(srcs []string) {
	cols := 2.0
	w := (s.contentWidth() - photoGap*(cols-1)) / cols
	h := w * 3 / 4
	var nodes []*fragment.Node
	i := 0
	for _, src := range srcs {
		if property.Blank(src) {
			continue
		}
		col, line := float64(i%2), float64(i/2)
		r := geom.Rect{X: Padding + col*(w+photoGap), Y: s.y + line*(h+photoGap), W: w, H: h}
		nodes = append(nodes, fragment.Image(r, strings.TrimSpace(src)))
		if web(src) {
			nodes = append(nodes, fragment.Link(r, strings.TrimSpace(src), ""))
		}
		i++
	}
	if i == 0 {
		return
	}
	lines := float64((i + 1) / 2)
	s.add(nodes, lines*h+(lines-1)*photoGap)
}

func (s *sheet) fragment() *fragment.Fragment {
	height := s.y - blockGap + Padding
	f := fragment.New(Width, height, s.nodes...)
	f.Root.Style.Background = background
	return f
}

// placeholder is the rendering of a section with nothing filled in.
func (b *Builder) placeholder() *fragment.Fragment {
	s := b.sheet()
	nodes, h := b.flow([]word{{text: Placeholder}}, Padding, s.y, s.contentWidth(), raster.DefaultFontSize)
	for _, n := range nodes {
		n.Bounds.X, n.Bounds.W = Padding, s.contentWidth()
		n.Style.Align = "center"
		n.Style.Color = muted
	}
	s.add(nodes, h)
	return s.fragment()
}

func (b *Builder) card(k section.Key, rs rows, narrative string) *fragment.Fragment {
	if rs.blank() && property.Blank(narrative) {
		return b.placeholder()
	}
	s := b.sheet()
	s.heading(k.Title())
	for _, r := range rs {
		s.row(r.label, plain(r.value))
	}
	if !property.Blank(narrative) {
		s.markdown(narrative)
	}
	return s.fragment()
}

func (b *Builder) header(p *property.Property) *fragment.Fragment {
	a := p.Address
	if property.Blank(a.Street) && property.Blank(a.City) && property.Blank(p.ListingURL) && allBlank(p.Photos) {
		return b.placeholder()
	}
	s := b.sheet()
	title := plain(a.Street)
	if len(title) == 0 {
		title = []word{{text: Placeholder}}
	}
	for i := range title {
		title[i].bold = true
	}
	s.paragraph(title, titleSize)

	city := property.Address{City: a.City, State: a.State, Zip: a.Zip}.String()
	if city != "" {
		s.paragraph(plain(city), headingSize*0.8)
	}
	if href := normalizeURL(p.ListingURL); href != "" {
		s.paragraph(linked("View full listing", href), raster.DefaultFontSize)
	}
	s.photos(p.Photos)
	return s.fragment()
}

func (b *Builder) comps(c property.Comps) *fragment.Fragment {
	if c.AllBlank() {
		return b.placeholder()
	}
	s := b.sheet()
	s.heading(section.Comps.Title())
	for _, cat := range c.Categories() {
		var ws []word
		for _, e := range cat.Entries {
			if property.Blank(e) {
				continue
			}
			if len(ws) > 0 {
				ws = append(ws, word{br: true})
			}
			e = strings.TrimSpace(e)
			if web(e) {
				ws = append(ws, linked(e, e)...)
			} else {
				ws = append(ws, plain(e)...)
			}
		}
		s.row(cat.Label, ws)
	}
	return s.fragment()
}

func (b *Builder) exit(e property.ExitStrategy) *fragment.Fragment {
	if property.Blank(e.Strategy) && property.Blank(e.RentalBackup) {
		return b.placeholder()
	}
	s := b.sheet()
	s.heading(section.ExitStrategy.Title())
	if property.Blank(e.Strategy) {
		s.paragraph([]word{{text: Placeholder}}, raster.DefaultFontSize)
	} else {
		s.markdown(e.Strategy)
	}
	s.row("Rental Backup", plain(e.RentalBackup))
	return s.fragment()
}

func (b *Builder) contact(p *property.Property) (*fragment.Fragment, error) {
	c := p.Contact
	rs := rows{
		{"Name", c.Name},
		{"Company", c.Company},
		{"Phone", c.Phone},
		{"Email", c.Email},
		{"Website", c.Website},
	}
	if rs.blank() {
		return b.placeholder(), nil
	}
	s := b.sheet()
	s.heading(section.Contact.Title())
	s.row("Name", plain(c.Name))
	s.row("Company", plain(c.Company))
	s.row("Phone", linkOrPlain(c.Phone, telURL(c.Phone)))
	s.row("Email", linkOrPlain(c.Email, mailtoURL(c.Email)))
	s.row("Website", linkOrPlain(c.Website, normalizeURL(c.Website)))

	target := normalizeURL(p.ListingURL)
	if target == "" {
		target = normalizeURL(c.Website)
	}
	if target != "" {
		src, err := qrCode(target)
		if err != nil {
			return nil, err
		}
		r := geom.Rect{X: Padding, Y: s.y, W: qrSize, H: qrSize}
		caption, _ := b.flow(linked("Scan to open the listing", target), Padding+qrSize+columnGap,
			s.y+qrSize/2-raster.LineHeight(raster.DefaultFontSize)/2, s.contentWidth()-qrSize-columnGap, raster.DefaultFontSize)
		s.add(append([]*fragment.Node{fragment.Image(r, src), fragment.Link(r, target, "")}, caption...), qrSize)
	}
	return s.fragment(), nil
}

func linkOrPlain(label, href string) []word {
	if href == "" {
		return plain(label)
	}
	return linked(label, href)
}

func allBlank(ss []string) bool {
	for _, s := range ss {
		if !property.Blank(s) {
			return false
		}
	}
	return true
}

// web reports whether s is an absolute http(s) URL.
func web(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// normalizeURL returns s as an absolute http(s) URL, adding https:// to a
// bare host, or "" when s is blank or not a web address.
func normalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if web(s) {
		return s
	}
	if strings.Contains(s, "://") || strings.ContainsAny(s, " @") || !strings.Contains(s, ".") {
		return ""
	}
	if web("https://" + s) {
		return "https://" + s
	}
	return ""
}

func mailtoURL(s string) string {
	s = strings.TrimSpace(s)
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t") {
		return ""
	}
	return "mailto:" + s
}

func telURL(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "+")
	if len(digits) < 7 {
		return ""
	}
	return "tel:" + b.String()
}
