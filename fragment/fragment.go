// Package fragment models a rendered section: a tree of visual nodes whose
// bounds have already been measured by a layout engine.
//
// Bounds are absolute, in CSS pixels, in the same coordinate space for
// every node of a fragment. The root node's bounds are the section's
// bounding box; everything else is measured relative to nothing but that
// shared space, the way a browser reports element rectangles.
//
// Example JSON:
//
//	{
//	  "root": {
//	    "kind": "box",
//	    "bounds": {"x": 0, "y": 0, "w": 800, "h": 120},
//	    "style": {"background": "#ffffff"},
//	    "children": [
//	      {"kind": "text", "bounds": {"x": 16, "y": 16, "w": 768, "h": 24}, "text": "123 Main St"},
//	      {"kind": "link", "bounds": {"x": 16, "y": 60, "w": 200, "h": 18},
//	       "href": "https://example.com/deal", "text": "View listing"}
//	    ]
//	  }
//	}
package fragment

import (
	"errors"
	"fmt"

	"github.com/lvillar/flyerpdf/geom"
)

// Kind identifies the type of a node.
type Kind string

const (
	KindBox     Kind = "box"
	KindText    Kind = "text"
	KindImage   Kind = "image"
	KindLink    Kind = "link"
	KindControl Kind = "control"
)

// Control types recognised for KindControl nodes.
const (
	ControlInput    = "input"
	ControlTextarea = "textarea"
	ControlSelect   = "select"
)

// Style carries the subset of visual properties the rasterizer paints.
type Style struct {
	Background string  `json:"background,omitempty"` // "#rrggbb", "#rgb" or "transparent"
	Color      string  `json:"color,omitempty"`
	Border     string  `json:"border,omitempty"` // border colour; empty means none
	FontSize   float64 `json:"fontSize,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Underline  bool    `json:"underline,omitempty"`
	Align      string  `json:"align,omitempty"` // left, center, right
}

// Node is one element of a fragment.
type Node struct {
	Kind     Kind      `json:"kind"`
	Bounds   geom.Rect `json:"bounds"`
	Text     string    `json:"text,omitempty"`
	Src      string    `json:"src,omitempty"`     // image source: data URI, http(s) URL or file path
	Href     string    `json:"href,omitempty"`    // link destination
	Control  string    `json:"control,omitempty"` // input, textarea or select
	Value    string    `json:"value,omitempty"`   // current control value
	Style    Style     `json:"style,omitzero"`
	Children []*Node   `json:"children,omitempty"`
}

// Fragment is the rendered content of one section.
type Fragment struct {
	Root *Node `json:"root"`
}

// ErrInvalid reports a structurally broken fragment.
var ErrInvalid = errors.New("fragment: invalid fragment")

// New returns a fragment whose root box is w x h pixels at the origin.
func New(w, h float64, children ...*Node) *Fragment {
	return &Fragment{Root: Box(geom.Rect{W: w, H: h}, children...)}
}

// Bounds returns the section's bounding box.
func (f *Fragment) Bounds() geom.Rect {
	if f == nil || f.Root == nil {
		return geom.Rect{}
	}
	return f.Root.Bounds
}

// Validate checks that the fragment has a root with a positive size and that
// every node has a known kind.
func (f *Fragment) Validate() error {
	if f == nil || f.Root == nil {
		return fmt.Errorf("%w: missing root", ErrInvalid)
	}
	if f.Root.Bounds.Empty() {
		return fmt.Errorf("%w: root bounds %v have no area", ErrInvalid, f.Root.Bounds)
	}
	var err error
	f.Walk(func(n *Node) bool {
		switch n.Kind {
		case KindBox, KindText, KindImage, KindLink:
		case KindControl:
			switch n.Control {
			case ControlInput, ControlTextarea, ControlSelect:
			default:
				err = fmt.Errorf("%w: unknown control %q", ErrInvalid, n.Control)
			}
		default:
			err = fmt.Errorf("%w: unknown node kind %q", ErrInvalid, n.Kind)
		}
		return err == nil
	})
	return err
}

// Box returns a container node.
func Box(r geom.Rect, children ...*Node) *Node {
	return &Node{Kind: KindBox, Bounds: r, Children: children}
}

// Text returns a text node.
func Text(r geom.Rect, s string) *Node {
	return &Node{Kind: KindText, Bounds: r, Text: s}
}

// Image returns an image node.
func Image(r geom.Rect, src string) *Node {
	return &Node{Kind: KindImage, Bounds: r, Src: src}
}

// Link returns a hyperlink node labelled with text.
func Link(r geom.Rect, href, text string) *Node {
	return &Node{Kind: KindLink, Bounds: r, Href: href, Text: text}
}

// Control returns a form control node holding value.
func Control(r geom.Rect, control, value string) *Node {
	return &Node{Kind: KindControl, Bounds: r, Control: control, Value: value}
}

// WithStyle sets the node's style and returns the node.
func (n *Node) WithStyle(s Style) *Node {
	n.Style = s
	return n
}
