package flyerpdf

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/layout"
	"github.com/lvillar/flyerpdf/pdfdoc"
	"github.com/lvillar/flyerpdf/raster"
)

// DefaultFileName is the artifact name used when none is configured.
const DefaultFileName = "flyer.pdf"

// Option is a functional option for configuring a Generator via New.
type Option func(*config)

type config struct {
	fileName       string
	background     color.Color
	scale          float64
	page           geom.Page
	links          bool
	logger         *zap.Logger
	rasterizer     raster.Rasterizer
	loader         raster.ImageLoader
	created        time.Time
	metadata       pdfdoc.Metadata
	appendix       []string
	stamp          string
	policy         layout.Policy
	requireContent bool

	err error // first invalid option
}

func defaultConfig() *config {
	return &config{
		fileName:   DefaultFileName,
		background: color.White,
		scale:      raster.DefaultScale,
		page:       geom.Letter(),
		links:      true,
		logger:     zap.NewNop(),
		policy:     layout.OversizeNewPage,
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (c *config) invalid(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf("%w: %s", ErrInvalidParam, fmt.Sprintf(format, args...))
	}
}

// WithFileName sets the artifact name. A missing ".pdf" extension is added.
func WithFileName(name string) Option {
	return func(c *config) {
		name = strings.TrimSpace(name)
		if name == "" || name != filepath.Base(name) {
			c.invalid("file name %q", name)
			return
		}
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			name += ".pdf"
		}
		c.fileName = name
	}
}

// WithBackgroundColor sets the fill drawn behind every section.
func WithBackgroundColor(bg color.Color) Option {
	return func(c *config) {
		if bg == nil {
			c.invalid("nil background color")
			return
		}
		c.background = bg
	}
}

// WithCanvasScale sets the rasterization multiplier. It must be at least 1.
func WithCanvasScale(scale float64) Option {
	return func(c *config) {
		if !finite(scale) || scale < 1 {
			c.invalid("canvas scale %g is below 1 or not finite", scale)
			return
		}
		c.scale = scale
	}
}

// WithMargins sets the uniform page margin in points.
func WithMargins(m float64) Option {
	return func(c *config) {
		if !finite(m) || m < 0 {
			c.invalid("margin %g", m)
			return
		}
		c.page.Margin = m
	}
}

// WithGap sets the vertical space after every placed section, in points.
func WithGap(g float64) Option {
	return func(c *config) {
		if !finite(g) || g < 0 {
			c.invalid("gap %g", g)
			return
		}
		c.page.Gap = g
	}
}

// WithLinks enables or disables clickable link regions.
func WithLinks(enabled bool) Option {
	return func(c *config) {
		c.links = enabled
	}
}

// WithPageSize sets a custom page size in points.
func WithPageSize(width, height float64) Option {
	return func(c *config) {
		if !finite(width) || !finite(height) || width <= 0 || height <= 0 {
			c.invalid("page size %gx%g", width, height)
			return
		}
		c.page.Width, c.page.Height = width, height
	}
}

// WithPaper sets the page size by name: "letter", "a4" or "legal".
func WithPaper(name string) Option {
	return func(c *config) {
		p, err := geom.PageSize(name)
		if err != nil {
			c.invalid("%v", err)
			return
		}
		c.page.Width, c.page.Height = p.Width, p.Height
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRasterizer replaces the built-in painter. The rasterizer is shared by
// every run of the Generator.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(c *config) {
		c.rasterizer = r
	}
}

// WithImageLoader sets how the built-in painter resolves image sources.
func WithImageLoader(l raster.ImageLoader) Option {
	return func(c *config) {
		c.loader = l
	}
}

// WithCreationDate stamps the document's creation and modification dates.
// Without it the dates are fixed so identical input gives identical bytes.
func WithCreationDate(t time.Time) Option {
	return func(c *config) {
		c.created = t
	}
}

// WithMetadata sets the document info dictionary.
func WithMetadata(m pdfdoc.Metadata) Option {
	return func(c *config) {
		c.metadata = m
	}
}

// WithAppendix appends the pages of existing PDF files after the flyer.
func WithAppendix(paths ...string) Option {
	return func(c *config) {
		c.appendix = append(c.appendix, paths...)
	}
}

// WithReferenceStamp prints code as a PDF417 barcode in the bottom margin of
// every flyer page.
func WithReferenceStamp(code string) Option {
	return func(c *config) {
		c.stamp = code
	}
}

// WithOversizePolicy chooses where a section clamped to the page's content
// height goes when the cursor is not at the top of the page.
func WithOversizePolicy(p layout.Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithRequireContent makes a run in which every section is empty fail with
// ErrEmptyDocument instead of producing a blank page.
func WithRequireContent(require bool) Option {
	return func(c *config) {
		c.requireContent = require
	}
}
