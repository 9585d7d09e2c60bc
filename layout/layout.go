// Package layout decides where each section goes on the page.
//
// Placement is a pure function of the page geometry, the block being placed
// and a Cursor value describing what has been placed so far. Sections are
// atomic: a block either fits below the cursor or starts a new page.
package layout

import (
	"fmt"

	"github.com/lvillar/flyerpdf/geom"
)

// Policy selects what happens to an oversized block (one already scaled to
// exactly the page's content height) when the cursor is below the top
// margin.
type Policy int

const (
	// OversizeNewPage starts a new page unless the cursor is already at the
	// top margin, so the block always lands inside the content area.
	OversizeNewPage Policy = iota
	// OversizeInPlace places the block at the cursor without checking the
	// bottom boundary. The block may run past the bottom margin.
	OversizeInPlace
)

func (p Policy) String() string {
	switch p {
	case OversizeNewPage:
		return "new-page"
	case OversizeInPlace:
		return "in-place"
	}
	return fmt.Sprintf("layout.Policy(%d)", int(p))
}

// ParsePolicy maps "new-page" and "in-place" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "new-page":
		return OversizeNewPage, nil
	case "in-place":
		return OversizeInPlace, nil
	}
	return 0, fmt.Errorf("layout: unknown oversize policy %q", s)
}

// Cursor is the paginator's position. The zero Page means nothing has been
// placed yet.
type Cursor struct {
	Page   int     // 1-based page the last block was placed on
	Y      float64 // top offset for the next block on Page
	Placed int     // blocks placed so far
}

// Start returns the cursor for an empty document.
func Start(page geom.Page) Cursor {
	return Cursor{Y: page.Top()}
}

// AtTop reports whether the next block would start at the top margin.
func (c Cursor) AtTop(page geom.Page) bool {
	return c.Placed == 0 || c.Y <= page.Top()+geom.Tolerance
}

// Block is a rasterized section's footprint in page units.
type Block struct {
	Width, Height float64
	Oversized     bool
}

// Placement says where a block goes.
type Placement struct {
	Page int
	// Break is set when the block starts a new page other than the first.
	// The first page is implicit and never reported as a break.
	Break bool
	Rect  geom.Rect
}

// Place positions b after c and returns the placement and the advanced
// cursor.
func Place(c Cursor, page geom.Page, b Block, policy Policy) (Placement, Cursor) {
	pl := Placement{Page: c.Page}
	y := c.Y
	switch {
	case c.Placed == 0:
		pl.Page = 1
		y = page.Top()
	case b.Oversized:
		if policy == OversizeNewPage && !c.AtTop(page) {
			pl.Page++
			pl.Break = true
			y = page.Top()
		}
	case !page.Fits(y, b.Height):
		pl.Page++
		pl.Break = true
		y = page.Top()
	}
	pl.Rect = geom.Rect{X: page.Left(), Y: y, W: b.Width, H: b.Height}
	next := Cursor{
		Page:   pl.Page,
		Y:      y + b.Height + page.Gap,
		Placed: c.Placed + 1,
	}
	return pl, next
}
