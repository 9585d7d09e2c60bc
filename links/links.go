// Package links carries hyperlinks through the raster transform by mapping
// each link's source rectangle onto the page where its section was drawn.
package links

import (
	"strings"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
)

// Region is a clickable area on a page, in page units.
type Region struct {
	Rect geom.Rect `json:"rect"`
	Href string    `json:"href"`
}

// Project maps links, whose bounds are relative to their section's top-left
// corner in source pixels, onto the page. origin is where the section was
// placed and scale is page units per source pixel. Links without a
// destination are dropped; the rest keep their order.
func Project(links []fragment.Hyperlink, origin geom.Point, scale float64) []Region {
	out := make([]Region, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l.Href) == "" {
			continue
		}
		out = append(out, Region{
			Rect: l.Bounds.Scale(scale).Translate(origin),
			Href: l.Href,
		})
	}
	return out
}

// Section projects every link in f for a section placed at origin.
func Section(f *fragment.Fragment, origin geom.Point, scale float64) []Region {
	return Project(f.Links(), origin, scale)
}

// Sink receives link regions for the page currently being assembled.
type Sink interface {
	AddLink(r geom.Rect, href string) error
}

// Apply registers regions on sink in order and stops at the first error.
func Apply(sink Sink, regions []Region) error {
	for _, r := range regions {
		if err := sink.AddLink(r.Rect, r.Href); err != nil {
			return err
		}
	}
	return nil
}
