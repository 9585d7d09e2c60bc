package fragment

import (
	"strings"

	"github.com/lvillar/flyerpdf/geom"
)

// Walk visits the nodes of f in document order (depth first, parents before
// children). Returning false from fn stops the walk.
func (f *Fragment) Walk(fn func(*Node) bool) {
	if f == nil || f.Root == nil {
		return
	}
	walk(f.Root, fn)
}

func walk(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

// VisibleText returns the text content of the fragment with runs of
// whitespace collapsed to a single space and the ends trimmed. Control
// values are not part of the text content.
func (f *Fragment) VisibleText() string {
	var parts []string
	f.Walk(func(n *Node) bool {
		switch n.Kind {
		case KindText, KindLink:
			if n.Text != "" {
				parts = append(parts, n.Text)
			}
		}
		return true
	})
	return CollapseSpace(strings.Join(parts, " "))
}

// CollapseSpace replaces every run of whitespace with one space and trims
// the result.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Images returns the image nodes in document order.
func (f *Fragment) Images() []*Node { return f.collect(KindImage) }

// Controls returns the form control nodes in document order.
func (f *Fragment) Controls() []*Node { return f.collect(KindControl) }

// Anchors returns every link node in document order, including those without
// a destination.
func (f *Fragment) Anchors() []*Node { return f.collect(KindLink) }

func (f *Fragment) collect(k Kind) []*Node {
	var out []*Node
	f.Walk(func(n *Node) bool {
		if n.Kind == k {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Hyperlink is a link extracted from a fragment. Bounds are relative to the
// fragment's top-left corner, in source pixels.
type Hyperlink struct {
	Href   string
	Bounds geom.Rect
}

// Links returns the fragment's hyperlinks in document order with bounds
// relative to the section's top-left corner. Links whose destination is
// blank are omitted.
func (f *Fragment) Links() []Hyperlink {
	origin := f.Bounds().Min()
	var out []Hyperlink
	for _, n := range f.Anchors() {
		href := strings.TrimSpace(n.Href)
		if href == "" {
			continue
		}
		out = append(out, Hyperlink{Href: href, Bounds: n.Bounds.Offset(origin)})
	}
	return out
}
