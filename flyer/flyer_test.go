package flyer_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/lvillar/flyerpdf/classify"
	"github.com/lvillar/flyerpdf/flyer"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/section"
)

func deal() *property.Property {
	return &property.Property{
		Address:    property.Address{Street: "123 Main St", City: "Springfield", State: "IL", Zip: "62701"},
		ListingURL: "https://deals.example.com/123-main",
		Financials: property.Financials{
			PurchasePrice: "$120,000",
			ARV:           "$210,000",
			RehabEstimate: "$35,000",
			Notes:         "Seller **motivated**, see [the rehab bid](https://bids.example.com/42).",
		},
		Details: property.Details{
			PropertyType: "Single family",
			Bedrooms:     "3",
			Bathrooms:    "2",
			Description:  "Brick ranch on a quiet street.\n\nNew roof in 2021.",
		},
		Comps: property.Comps{
			Sold:   []string{"https://comps.example.com/sold/1", "456 Oak Ave sold for $205k"},
			Rental: []string{"  "},
		},
		Contact: property.Contact{
			Name:    "Dana Reyes",
			Phone:   "(555) 010-4477",
			Email:   "dana@example.com",
			Website: "reyes-deals.example.com",
		},
	}
}

func TestBuildCanonicalOrder(t *testing.T) {
	sections, err := flyer.Build(deal())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(sections) != len(section.Keys()) {
		t.Fatalf("got %d sections, want %d", len(sections), len(section.Keys()))
	}
	for i, s := range sections {
		if s.Key != section.Keys()[i] {
			t.Errorf("section %d key = %v, want %v", i, s.Key, section.Keys()[i])
		}
		if err := s.Fragment.Validate(); err != nil {
			t.Errorf("%v: %v", s.Key, err)
		}
		if w := s.Fragment.Bounds().W; w != flyer.Width {
			t.Errorf("%v width = %g, want %g", s.Key, w, flyer.Width)
		}
	}
}

func TestBuildBlankSectionsClassifyEmpty(t *testing.T) {
	p := deal()
	sections, err := flyer.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	empty := map[section.Key]bool{
		section.Occupancy:    true,
		section.Access:       true,
		section.EMDClosing:   true,
		section.ExitStrategy: true,
	}
	for _, s := range sections {
		v := classify.Section(s, p)
		if v.Empty != empty[s.Key] {
			t.Errorf("%v: empty = %v (%v), want %v", s.Key, v.Empty, v.Reason, empty[s.Key])
		}
	}
}

func TestBuildNothingFilledIn(t *testing.T) {
	sections, err := flyer.Build(&property.Property{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, s := range sections {
		if v := classify.Content(s.Fragment); !v.Empty {
			t.Errorf("%v: classified %v, text %q", s.Key, v.Reason, s.Fragment.VisibleText())
		}
	}
}

func TestBuildLinks(t *testing.T) {
	sections, err := flyer.Build(deal())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	hrefs := make(map[section.Key][]string)
	for _, s := range sections {
		for _, l := range s.Fragment.Links() {
			if l.Bounds.Empty() {
				t.Errorf("%v: link %q has no area", s.Key, l.Href)
			}
			hrefs[s.Key] = append(hrefs[s.Key], l.Href)
		}
	}
	want := map[section.Key][]string{
		section.Property:  {"https://deals.example.com/123-main"},
		section.Financial: {"https://bids.example.com/42"},
		section.Comps:     {"https://comps.example.com/sold/1"},
		section.Contact: {
			"tel:5550104477",
			"mailto:dana@example.com",
			"https://reyes-deals.example.com",
			"https://deals.example.com/123-main",
		},
	}
	for k, w := range want {
		for _, href := range w {
			if !slices.Contains(hrefs[k], href) {
				t.Errorf("%v: missing link %q in %q", k, href, hrefs[k])
			}
		}
	}
	if len(hrefs[section.PropertyDetails]) != 0 {
		t.Errorf("details links = %q, want none", hrefs[section.PropertyDetails])
	}
}

func TestBuildPlaceholdersForBlankRows(t *testing.T) {
	sections, err := flyer.Build(deal())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	text := sections[section.Financial].Fragment.VisibleText()
	for _, s := range []string{"Purchase Price", "$120,000", "Assignment Fee", flyer.Placeholder, "motivated"} {
		if !strings.Contains(text, s) {
			t.Errorf("financial text %q lacks %q", text, s)
		}
	}
}

func TestBuildPhotos(t *testing.T) {
	p := deal()
	p.Photos = []string{"https://img.example.com/1.jpg", "", "photos/2.png", "https://img.example.com/3.jpg"}
	sections, err := flyer.Build(p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	header := sections[section.Property].Fragment
	imgs := header.Images()
	if len(imgs) != 3 {
		t.Fatalf("images = %d, want 3", len(imgs))
	}
	if imgs[2].Bounds.Y <= imgs[0].Bounds.Y {
		t.Errorf("third photo at y=%g should start a second row below %g", imgs[2].Bounds.Y, imgs[0].Bounds.Y)
	}
	if header.Bounds().Bottom() < imgs[2].Bounds.Bottom() {
		t.Errorf("header height %g cuts off photos ending at %g", header.Bounds().H, imgs[2].Bounds.Bottom())
	}
	links := 0
	for _, l := range header.Links() {
		if strings.HasPrefix(l.Href, "https://img.example.com/") {
			links++
		}
	}
	if links != 2 {
		t.Errorf("photo links = %d, want 2", links)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := flyer.Build(deal())
	if err != nil {
		t.Fatal(err)
	}
	b, err := flyer.Build(deal())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Fragment.Bounds() != b[i].Fragment.Bounds() {
			t.Errorf("%v bounds differ: %v vs %v", a[i].Key, a[i].Fragment.Bounds(), b[i].Fragment.Bounds())
		}
	}
}

func TestBuildNil(t *testing.T) {
	if _, err := flyer.Build(nil); !errors.Is(err, flyer.ErrNoProperty) {
		t.Errorf("err = %v, want ErrNoProperty", err)
	}
}
