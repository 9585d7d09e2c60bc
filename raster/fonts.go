package raster

import (
	"math"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Default text metrics, in CSS pixels.
const (
	DefaultFontSize   = 14.0
	LineHeightFactor  = 1.3
	minRenderFontSize = 1.0
)

var (
	parseOnce   sync.Once
	regularFont *truetype.Font
	boldFont    *truetype.Font
	parseErr    error
)

func parseFonts() {
	regularFont, parseErr = truetype.Parse(goregular.TTF)
	if parseErr != nil {
		return
	}
	boldFont, parseErr = truetype.Parse(gobold.TTF)
}

// Fonts hands out font faces at arbitrary pixel sizes. The parsed Go fonts
// are shared; faces are cached per Fonts value, which is not safe for
// concurrent use.
type Fonts struct {
	faces map[faceKey]font.Face
}

type faceKey struct {
	size int64 // size in 1/64 px
	bold bool
}

// NewFonts returns a face cache over the embedded Go fonts.
func NewFonts() (*Fonts, error) {
	parseOnce.Do(parseFonts)
	if parseErr != nil {
		return nil, parseErr
	}
	return &Fonts{faces: make(map[faceKey]font.Face)}, nil
}

// Face returns a face rendering text size pixels tall.
func (f *Fonts) Face(size float64, bold bool) font.Face {
	if size < minRenderFontSize {
		size = minRenderFontSize
	}
	k := faceKey{size: int64(math.Round(size * 64)), bold: bold}
	if face, ok := f.faces[k]; ok {
		return face
	}
	ttf := regularFont
	if bold {
		ttf = boldFont
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(k.size) / 64,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	f.faces[k] = face
	return face
}

// Measure returns the advance width of s in pixels.
func (f *Fonts) Measure(s string, size float64, bold bool) float64 {
	return float64(font.MeasureString(f.Face(size, bold), s)) / 64
}

// LineHeight returns the distance between baselines for a font size.
func LineHeight(size float64) float64 {
	return size * LineHeightFactor
}

// Wrap breaks s into lines no wider than width. Explicit newlines are kept;
// a single word wider than width occupies a line of its own.
func (f *Fonts) Wrap(s string, size float64, bold bool, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if f.Measure(candidate, size, bold) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}
