package flyer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// block is one paragraph-level unit of a markdown narrative.
type block struct {
	words   []word
	heading bool
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// parseMarkdown flattens a markdown narrative into paragraphs of words.
// Inline links, autolinks and bare URLs keep their destinations; emphasis
// is reduced to bold for strong text and dropped otherwise. Raw HTML is
// ignored.
func parseMarkdown(src string) []block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	var out []block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		out = appendBlocks(out, n, source)
	}
	return out
}

func appendBlocks(out []block, n ast.Node, source []byte) []block {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if ws := inline(n, source, false); len(ws) > 0 {
			out = append(out, block{words: ws})
		}
	case *ast.Heading:
		if ws := inline(n, source, true); len(ws) > 0 {
			out = append(out, block{words: ws, heading: true})
		}
	case *ast.List:
		i := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "•"
			if n.IsOrdered() {
				marker = strconv.Itoa(i) + "."
				i++
			}
			var ws []word
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				for _, b := range appendBlocks(nil, c, source) {
					if len(ws) > 0 {
						ws = append(ws, word{br: true})
					}
					ws = append(ws, b.words...)
				}
			}
			out = append(out, block{words: append([]word{{text: marker}}, ws...)})
		}
	case *ast.Blockquote:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = appendBlocks(out, c, source)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		var ws []word
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			if i > 0 {
				ws = append(ws, word{br: true})
			}
			ws = append(ws, plain(string(seg.Value(source)))...)
		}
		if len(ws) > 0 {
			out = append(out, block{words: ws})
		}
	}
	return out
}

// inliner collects the words of one paragraph. gap records whether the
// text seen so far ended at a word boundary.
type inliner struct {
	source []byte
	words  []word
	gap    bool
}

func inline(n ast.Node, source []byte, bold bool) []word {
	in := &inliner{source: source, gap: true}
	in.walk(n, "", bold)
	return in.words
}

func (in *inliner) walk(n ast.Node, href string, bold bool) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			in.text(string(c.Segment.Value(in.source)), href, bold)
			if c.HardLineBreak() {
				in.words = append(in.words, word{br: true})
				in.gap = true
			} else if c.SoftLineBreak() {
				in.gap = true
			}
		case *ast.String:
			in.text(string(c.Value), href, bold)
		case *ast.Link:
			in.walk(c, string(c.Destination), bold)
		case *ast.AutoLink:
			in.text(string(c.Label(in.source)), string(c.URL(in.source)), bold)
		case *ast.Emphasis:
			in.walk(c, href, bold || c.Level >= 2)
		case *ast.RawHTML:
		default:
			in.walk(c, href, bold)
		}
	}
}

// text splits s into words. When s continues the previous word without
// whitespace, as punctuation after emphasis does, the first word is joined
// to it.
func (in *inliner) text(s, href string, bold bool) {
	if s == "" {
		return
	}
	for i, f := range strings.Fields(s) {
		w := word{text: f, href: href, bold: bold}
		if i == 0 && !in.gap && len(in.words) > 0 && !unicode.IsSpace(rune(s[0])) {
			w.join = true
		}
		in.words = append(in.words, w)
	}
	in.gap = unicode.IsSpace(rune(s[len(s)-1]))
}
