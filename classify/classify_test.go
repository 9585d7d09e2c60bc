package classify

import (
	"testing"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/section"
)

var r = geom.Rect{W: 100, H: 20}

func TestContent(t *testing.T) {
	tests := []struct {
		name   string
		frag   *fragment.Fragment
		empty  bool
		reason Reason
	}{
		{"whitespace only", fragment.New(100, 100, fragment.Text(r, " \n\t ")), true, ReasonNoContent},
		{"no children", fragment.New(100, 100), true, ReasonNoContent},
		{"real text", fragment.New(100, 100, fragment.Text(r, " 3 bed ")), false, ReasonText},
		{"placeholder N/A", fragment.New(100, 100, fragment.Text(r, "  N/A ")), true, ReasonNoContent},
		{"placeholder dash", fragment.New(100, 100, fragment.Text(r, "-")), true, ReasonNoContent},
		{"fullwidth N/A folds to placeholder", fragment.New(100, 100, fragment.Text(r, "Ｎ/Ａ")), true, ReasonNoContent},
		{"image", fragment.New(100, 100, fragment.Image(r, "data:,")), false, ReasonImage},
		{"blank control", fragment.New(100, 100, fragment.Control(r, fragment.ControlInput, "   ")), true, ReasonNoContent},
		{"populated select", fragment.New(100, 100, fragment.Control(r, fragment.ControlSelect, "Vacant")), false, ReasonControl},
		{"anchor without text", fragment.New(100, 100, fragment.Link(r, "https://example.com", "")), false, ReasonLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Content(tt.frag)
			if got.Empty != tt.empty || got.Reason != tt.reason {
				t.Errorf("Content = %+v, want empty=%v reason=%v", got, tt.empty, tt.reason)
			}
		})
	}
}

func TestPopulatedInputOverridesPlaceholderText(t *testing.T) {
	f := fragment.New(200, 60,
		fragment.Text(geom.Rect{W: 100, H: 20}, "N/A"),
		fragment.Control(geom.Rect{Y: 30, W: 100, H: 20}, fragment.ControlTextarea, " Tenant pays utilities "),
	)
	got := Content(f)
	if got.Empty {
		t.Fatal("a populated textarea must make the section non-empty")
	}
	if got.Reason != ReasonControl {
		t.Errorf("reason = %v, want control", got.Reason)
	}
}

func TestDataRules(t *testing.T) {
	full := &property.Property{
		Address:    property.Address{Street: "1 Main St"},
		Financials: property.Financials{RehabEstimate: "$20k"},
		Comps:      property.Comps{Rental: []string{"", "https://example.com/r/1"}},
		Exit:       property.ExitStrategy{RentalBackup: "Rent at $1,400"},
	}
	empty := &property.Property{
		Comps: property.Comps{Pending: []string{" "}, Sold: []string{""}, Rental: []string{"\t"}},
	}
	for _, k := range section.Keys() {
		if Data(k, full) {
			t.Errorf("%v: populated record should not be empty", k)
		}
		if Data(k, nil) {
			t.Errorf("%v: nil record must never mark a section empty", k)
		}
	}
	for _, k := range []section.Key{section.Property, section.Financial, section.Comps, section.ExitStrategy} {
		if !Data(k, empty) {
			t.Errorf("%v: blank record should be empty", k)
		}
	}
	for _, k := range []section.Key{section.PropertyDetails, section.Occupancy, section.Access, section.EMDClosing, section.Contact} {
		if Data(k, empty) {
			t.Errorf("%v has no data rule and should not be empty", k)
		}
	}
}

func TestSectionCombinesContentAndData(t *testing.T) {
	frag := fragment.New(100, 40, fragment.Text(r, "Comparables"))
	s := section.Section{Key: section.Comps, Fragment: frag}

	blank := &property.Property{}
	if v := Section(s, blank); !v.Empty || v.Reason != ReasonData {
		t.Errorf("headline-only comps with blank data: %+v, want empty by data", v)
	}
	withComp := &property.Property{Comps: property.Comps{Sold: []string{"12 Oak"}}}
	if v := Section(s, withComp); v.Empty {
		t.Errorf("comps with a sold entry: %+v, want non-empty", v)
	}
	if v := Section(s, nil); v.Empty {
		t.Errorf("no record: %+v, want content verdict", v)
	}
}
