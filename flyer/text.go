package flyer

import (
	"strings"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/raster"
)

// word is one unbreakable unit of inline text. A word with br set carries
// no text and forces a line break; a word with join set follows the
// previous one without a space.
type word struct {
	text string
	href string
	bold bool
	br   bool
	join bool
}

// plain splits s into words, keeping explicit newlines as breaks.
func plain(s string) []word {
	var out []word
	for i, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if i > 0 {
			out = append(out, word{br: true})
		}
		for _, f := range strings.Fields(line) {
			out = append(out, word{text: f})
		}
	}
	return out
}

// linked splits label into words that all point at href.
func linked(label, href string) []word {
	out := plain(label)
	for i := range out {
		out[i].href = href
	}
	return out
}

type placed struct {
	word
	x, w float64
}

// flow lays words out left to right inside a column of the given width,
// wrapping at spaces. Adjacent words sharing a destination and weight are
// merged into a single node per line, so each link keeps one clickable
// rectangle per line it spans. It returns the nodes and the height used.
func (b *Builder) flow(words []word, x, y, width, size float64) ([]*fragment.Node, float64) {
	lineH := raster.LineHeight(size)
	var (
		nodes []*fragment.Node
		line  []placed
		cx    float64
		cy    = y
	)
	flush := func() {
		nodes = append(nodes, b.runs(line, x, cy, size, lineH)...)
		line = nil
		cx = 0
		cy += lineH
	}
	for _, w := range words {
		if w.br {
			flush()
			continue
		}
		ww := b.fonts.Measure(w.text, size, w.bold)
		space := b.fonts.Measure(" ", size, w.bold)
		if w.join {
			space = 0
		}
		if len(line) > 0 && cx+space+ww > width {
			flush()
		}
		if len(line) > 0 {
			cx += space
		}
		line = append(line, placed{word: w, x: cx, w: ww})
		cx += ww
	}
	if len(line) > 0 {
		flush()
	}
	return nodes, cy - y
}

// runs merges one line of placed words into text and link nodes.
func (b *Builder) runs(line []placed, x, y, size, lineH float64) []*fragment.Node {
	var nodes []*fragment.Node
	for i := 0; i < len(line); {
		j := i + 1
		for j < len(line) && line[j].href == line[i].href && line[j].bold == line[i].bold {
			j++
		}
		var sb strings.Builder
		for k, p := range line[i:j] {
			if k > 0 && !p.join {
				sb.WriteByte(' ')
			}
			sb.WriteString(p.text)
		}
		x0 := line[i].x
		x1 := line[j-1].x + line[j-1].w
		// Glyph advances round differently at canvas scale; the slack keeps
		// the painter from wrapping a run that measured exactly to width.
		r := geom.Rect{X: x + x0, Y: y, W: x1 - x0 + size/2, H: lineH}
		text := sb.String()
		var n *fragment.Node
		if line[i].href != "" {
			n = fragment.Link(r, line[i].href, text)
		} else {
			n = fragment.Text(r, text)
		}
		n.Style = fragment.Style{FontSize: size, Bold: line[i].bold}
		nodes = append(nodes, n)
		i = j
	}
	return nodes
}
