package flyer

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/flyerpdf/raster"
)

func TestParseMarkdown(t *testing.T) {
	src := "## Plan\n\nFlip after a **light** rehab, see [the bid](https://bids.example.com/7).\n\n" +
		"- Rent backup at $1,450\n- Owner finance <https://terms.example.com>\n"
	want := []block{
		{heading: true, words: []word{{text: "Plan", bold: true}}},
		{words: []word{
			{text: "Flip"}, {text: "after"}, {text: "a"},
			{text: "light", bold: true},
			{text: "rehab,"}, {text: "see"},
			{text: "the", href: "https://bids.example.com/7"},
			{text: "bid", href: "https://bids.example.com/7"},
			{text: ".", join: true},
		}},
		{words: []word{{text: "•"}, {text: "Rent"}, {text: "backup"}, {text: "at"}, {text: "$1,450"}}},
		{words: []word{{text: "•"}, {text: "Owner"}, {text: "finance"},
			{text: "https://terms.example.com", href: "https://terms.example.com"}}},
	}
	got := parseMarkdown(src)
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(block{}, word{})); diff != "" {
		t.Errorf("parseMarkdown mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMarkdownOrderedList(t *testing.T) {
	got := parseMarkdown("3. close\n4. assign\n")
	if len(got) != 2 || got[0].words[0].text != "3." || got[1].words[0].text != "4." {
		t.Errorf("markers = %+v", got)
	}
}

func TestFlowWrapsAndMergesRuns(t *testing.T) {
	fonts, err := raster.NewFonts()
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder(fonts)
	words := append(plain("one two three four five six seven eight nine ten"), linked("listing page", "https://x.example.com")...)
	nodes, h := b.flow(words, 10, 20, 120, raster.DefaultFontSize)
	lineH := raster.LineHeight(raster.DefaultFontSize)
	if h < 2*lineH {
		t.Fatalf("height = %g, want at least two lines of %g", h, lineH)
	}
	var links int
	for _, n := range nodes {
		if n.Bounds.X < 10 || n.Bounds.Y < 20 {
			t.Errorf("node %q at %v is outside the column", n.Text, n.Bounds)
		}
		if n.Href != "" {
			links++
		}
	}
	if links == 0 {
		t.Error("link words were not emitted as link nodes")
	}
	if last := nodes[len(nodes)-1]; last.Bounds.Bottom() > 20+h+0.001 {
		t.Errorf("last node ends at %g beyond height %g", last.Bounds.Bottom(), 20+h)
	}
}

func TestNormalizeURL(t *testing.T) {
	for in, want := range map[string]string{
		"https://a.example.com/x": "https://a.example.com/x",
		"  a.example.com ":        "https://a.example.com",
		"not a url":               "",
		"ftp://a.example.com":     "",
		"":                        "",
		"dana@example.com":        "",
	} {
		if got := normalizeURL(in); got != want {
			t.Errorf("normalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
	if got := telURL("+1 (555) 010-4477"); got != "tel:+15550104477" {
		t.Errorf("telURL = %q", got)
	}
	if got := mailtoURL("nobody"); got != "" {
		t.Errorf("mailtoURL = %q", got)
	}
}

func TestQRCode(t *testing.T) {
	uri, err := qrCode("https://deals.example.com/123-main")
	if err != nil {
		t.Fatal(err)
	}
	img, err := raster.NewLoader(nil).Load(context.Background(), uri)
	if err != nil {
		t.Fatalf("loading QR data URI: %v", err)
	}
	if b := img.Bounds(); b.Dx() != qrPixels || b.Dy() != qrPixels {
		t.Errorf("QR size = %v", b)
	}
}
