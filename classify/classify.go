// Package classify decides which flyer sections carry content worth a place
// on the page.
//
// The decision combines two pure checks: Content inspects the rendered
// fragment, Data applies per-section rules to the structured record. A
// section is skipped when either says it is empty.
package classify

import (
	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/section"
	"golang.org/x/text/unicode/norm"
)

// Reason records which rule settled a verdict.
type Reason int

const (
	ReasonText    Reason = iota // meaningful visible text
	ReasonImage                 // at least one image
	ReasonControl               // a form control holds a value
	ReasonLink                  // at least one hyperlink
	ReasonNoContent             // none of the above
	ReasonData                  // the section's data rule found nothing to show
)

func (r Reason) String() string {
	switch r {
	case ReasonText:
		return "text"
	case ReasonImage:
		return "image"
	case ReasonControl:
		return "control"
	case ReasonLink:
		return "link"
	case ReasonNoContent:
		return "no-content"
	case ReasonData:
		return "data"
	}
	return "unknown"
}

// Verdict is the classifier's answer for one section.
type Verdict struct {
	Empty  bool
	Reason Reason
}

// placeholders render in blank form fields and do not count as text.
var placeholders = map[string]bool{
	"N/A": true,
	"-":   true,
}

// Content judges a fragment by what it shows.
func Content(f *fragment.Fragment) Verdict {
	text := norm.NFKC.String(f.VisibleText())
	text = fragment.CollapseSpace(text)
	if text != "" && !placeholders[text] {
		return Verdict{Reason: ReasonText}
	}
	if len(f.Images()) > 0 {
		return Verdict{Reason: ReasonImage}
	}
	for _, c := range f.Controls() {
		if !property.Blank(c.Value) {
			return Verdict{Reason: ReasonControl}
		}
	}
	if len(f.Anchors()) > 0 {
		return Verdict{Reason: ReasonLink}
	}
	return Verdict{Empty: true, Reason: ReasonNoContent}
}

// Data reports whether the record leaves section k with nothing to show.
// A nil record never marks a section empty.
func Data(k section.Key, p *property.Property) bool {
	if p == nil {
		return false
	}
	switch k {
	case section.Property:
		return property.Blank(p.Address.Street)
	case section.Financial:
		f := p.Financials
		return property.Blank(f.PurchasePrice) && property.Blank(f.ARV) && property.Blank(f.RehabEstimate)
	case section.Comps:
		return p.Comps.AllBlank()
	case section.ExitStrategy:
		return property.Blank(p.Exit.Strategy) && property.Blank(p.Exit.RentalBackup)
	case section.PropertyDetails, section.Occupancy, section.Access, section.EMDClosing, section.Contact:
		return false
	}
	return false
}

// Section classifies one section against an optional record.
func Section(s section.Section, p *property.Property) Verdict {
	v := Content(s.Fragment)
	if v.Empty {
		return v
	}
	if Data(s.Key, p) {
		return Verdict{Empty: true, Reason: ReasonData}
	}
	return v
}
