package layout

import (
	"fmt"

	"github.com/lvillar/flyerpdf/geom"
)

// State is the paginator's phase between calls. Placement itself happens
// within Place and is never observable.
type State int

const (
	// AwaitingSection: the last block fit on the page it found.
	AwaitingSection State = iota
	// PageBreak: the last block started a new page.
	PageBreak
	Finalizing
)

func (s State) String() string {
	switch s {
	case AwaitingSection:
		return "awaiting-section"
	case PageBreak:
		return "page-break"
	case Finalizing:
		return "finalizing"
	}
	return fmt.Sprintf("layout.State(%d)", int(s))
}

// Paginator threads a Cursor through successive placements and tracks the
// content height used on every page.
type Paginator struct {
	page    geom.Page
	policy  Policy
	cursor  Cursor
	state   State
	heights []float64 // per page: bottom of the lowest block minus the top margin
}

// NewPaginator returns a paginator for an empty document.
func NewPaginator(page geom.Page, policy Policy) *Paginator {
	return &Paginator{page: page, policy: policy, cursor: Start(page)}
}

// Place positions the next block. It panics after Finish.
func (p *Paginator) Place(b Block) Placement {
	if p.state == Finalizing {
		panic("layout: Place called after Finish")
	}
	pl, next := Place(p.cursor, p.page, b, p.policy)
	for len(p.heights) < pl.Page {
		p.heights = append(p.heights, 0)
	}
	p.heights[pl.Page-1] = pl.Rect.Bottom() - p.page.Top()
	p.cursor = next
	p.state = AwaitingSection
	if pl.Break {
		p.state = PageBreak
	}
	return pl
}

// Finish ends pagination. No trailing page is produced.
func (p *Paginator) Finish() Cursor {
	p.state = Finalizing
	return p.cursor
}

// State returns the current phase.
func (p *Paginator) State() State { return p.state }

// Cursor returns the current cursor.
func (p *Paginator) Cursor() Cursor { return p.cursor }

// Pages returns the number of pages started so far.
func (p *Paginator) Pages() int { return p.cursor.Page }

// ContentHeights returns, per page, the height used below the top margin.
func (p *Paginator) ContentHeights() []float64 {
	return append([]float64(nil), p.heights...)
}
