package geom

import (
	"math"
	"testing"
)

func TestLetterDerivedValues(t *testing.T) {
	p := Letter()
	if got := p.PrintableWidth(); got != 532 {
		t.Errorf("PrintableWidth = %g, want 532", got)
	}
	if got := p.BottomBoundary(); got != 752 {
		t.Errorf("BottomBoundary = %g, want 752", got)
	}
	if got := p.MaxContentHeight(); got != 712 {
		t.Errorf("MaxContentHeight = %g, want 712", got)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFitsBoundary(t *testing.T) {
	p := Letter()
	if !p.Fits(40, 712) {
		t.Error("a block ending exactly on the bottom boundary must fit")
	}
	if p.Fits(40, 713) {
		t.Error("a block one point past the bottom boundary must not fit")
	}
}

func TestPageSize(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"", LetterWidth, LetterHeight},
		{"a4", A4Width, A4Height},
		{"Legal", 612, 1008},
	}
	for _, tt := range tests {
		p, err := PageSize(tt.name)
		if err != nil {
			t.Fatalf("PageSize(%q): %v", tt.name, err)
		}
		if p.Width != tt.w || p.Height != tt.h {
			t.Errorf("PageSize(%q) = %gx%g, want %gx%g", tt.name, p.Width, p.Height, tt.w, tt.h)
		}
	}
	if _, err := PageSize("tabloid-ish"); err == nil {
		t.Error("expected error for unknown size")
	}
}

func TestValidateRejectsOversizedMargin(t *testing.T) {
	p := Page{Width: 100, Height: 100, Margin: 60}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error when margins consume the page")
	}
}

func TestRectHelpers(t *testing.T) {
	r := Rect{X: 110, Y: 220, W: 30, H: 10}
	got := r.Offset(Point{100, 200}).Scale(2).Translate(Point{40, 60})
	want := Rect{X: 60, Y: 100, W: 60, H: 20}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	for _, p := range []Page{
		{Width: math.NaN(), Height: 792, Margin: 40},
		{Width: 612, Height: math.Inf(1), Margin: 40},
		{Width: 612, Height: 792, Margin: math.NaN()},
		{Width: 612, Height: 792, Margin: 40, Gap: math.NaN()},
	} {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", p)
		}
	}
}
