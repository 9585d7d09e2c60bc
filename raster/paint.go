package raster

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
)

var (
	defaultText    = color.RGBA{0x22, 0x22, 0x22, 0xff}
	defaultLink    = color.RGBA{0x0b, 0x5c, 0xad, 0xff}
	controlBorder  = color.RGBA{0x99, 0x99, 0x99, 0xff}
	controlPadding = 4.0 // source pixels
)

// Painter is the built-in Rasterizer. It is not safe for concurrent use.
type Painter struct {
	loader ImageLoader
	fonts  *Fonts
}

// NewPainter returns a Painter resolving images through loader. A nil loader
// uses NewLoader(nil).
func NewPainter(loader ImageLoader) (*Painter, error) {
	if loader == nil {
		loader = NewLoader(nil)
	}
	fonts, err := NewFonts()
	if err != nil {
		return nil, fmt.Errorf("raster: loading fonts: %w", err)
	}
	return &Painter{loader: loader, fonts: fonts}, nil
}

// Fonts exposes the painter's face cache so layout code measures text with
// the faces used to draw it.
func (p *Painter) Fonts() *Fonts { return p.fonts }

// Rasterize implements Rasterizer.
func (p *Painter) Rasterize(ctx context.Context, f *fragment.Fragment, opts Options) (*Bitmap, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("raster: scale %g must be positive", opts.Scale)
	}
	w, h := CanvasSize(f, opts.Scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: canvas %dx%d has no area", w, h)
	}
	if int64(w)*int64(h) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.background()), image.Point{}, draw.Src)

	c := &canvas{
		ctx:    ctx,
		dst:    img,
		origin: f.Bounds().Min(),
		scale:  opts.Scale,
		fonts:  p.fonts,
		loader: p.loader,
	}
	var err error
	f.Walk(func(n *fragment.Node) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		err = c.paint(n)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return &Bitmap{Image: img}, nil
}

type canvas struct {
	ctx    context.Context
	dst    *image.RGBA
	origin geom.Point
	scale  float64
	fonts  *Fonts
	loader ImageLoader
}

// rect maps source bounds onto canvas pixels, clipped to the canvas.
func (c *canvas) rect(r geom.Rect) image.Rectangle {
	r = r.Offset(c.origin).Scale(c.scale)
	px := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.Right())), int(math.Ceil(r.Bottom())),
	)
	return px.Intersect(c.dst.Bounds())
}

func (c *canvas) paint(n *fragment.Node) error {
	area := c.rect(n.Bounds)
	if area.Empty() {
		return nil
	}
	if err := c.fill(area, n.Style.Background); err != nil {
		return err
	}
	switch n.Kind {
	case fragment.KindBox:
		return c.border(area, n.Style.Border)
	case fragment.KindText:
		col, err := textColor(n.Style.Color, defaultText)
		if err != nil {
			return err
		}
		c.text(area, n.Text, n.Style, col, n.Style.Underline)
	case fragment.KindLink:
		col, err := textColor(n.Style.Color, defaultLink)
		if err != nil {
			return err
		}
		c.text(area, n.Text, n.Style, col, true)
	case fragment.KindImage:
		return c.image(area, n.Src)
	case fragment.KindControl:
		if err := c.border(area, n.Style.Border); err != nil {
			return err
		}
		if n.Style.Border == "" {
			c.stroke(area, controlBorder)
		}
		col, err := textColor(n.Style.Color, defaultText)
		if err != nil {
			return err
		}
		pad := int(math.Round(controlPadding * c.scale))
		c.text(area.Inset(pad), n.Value, n.Style, col, false)
	}
	return nil
}

func textColor(s string, def color.RGBA) (color.RGBA, error) {
	col, ok, err := fragment.ParseColor(s)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return col, nil
}

func (c *canvas) fill(area image.Rectangle, bg string) error {
	col, ok, err := fragment.ParseColor(bg)
	if err != nil {
		return err
	}
	if ok && col.A > 0 {
		draw.Draw(c.dst, area, image.NewUniform(col), image.Point{}, draw.Over)
	}
	return nil
}

func (c *canvas) border(area image.Rectangle, spec string) error {
	col, ok, err := fragment.ParseColor(spec)
	if err != nil {
		return err
	}
	if ok && col.A > 0 {
		c.stroke(area, col)
	}
	return nil
}

// stroke draws a one-source-pixel outline inside area.
func (c *canvas) stroke(area image.Rectangle, col color.Color) {
	t := int(math.Max(1, math.Round(c.scale)))
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		{area.Min, image.Pt(area.Max.X, area.Min.Y+t)},
		{image.Pt(area.Min.X, area.Max.Y-t), area.Max},
		{area.Min, image.Pt(area.Min.X+t, area.Max.Y)},
		{image.Pt(area.Max.X-t, area.Min.Y), area.Max},
	}
	for _, e := range edges {
		draw.Draw(c.dst, e.Intersect(area), src, image.Point{}, draw.Src)
	}
}

func (c *canvas) text(area image.Rectangle, s string, st fragment.Style, col color.Color, underline bool) {
	if s == "" || area.Empty() {
		return
	}
	size := st.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	px := size * c.scale
	face := c.fonts.Face(px, st.Bold)
	metrics := face.Metrics()
	lineH := LineHeight(px)

	clip := c.dst.SubImage(area).(*image.RGBA)
	d := &font.Drawer{Dst: clip, Src: image.NewUniform(col), Face: face}
	y := float64(area.Min.Y) + float64(metrics.Ascent)/64
	for _, line := range c.fonts.Wrap(s, px, st.Bold, float64(area.Dx())) {
		if y-float64(metrics.Ascent)/64 >= float64(area.Max.Y) {
			break
		}
		width := float64(font.MeasureString(face, line)) / 64
		x := float64(area.Min.X)
		switch st.Align {
		case "center":
			x += (float64(area.Dx()) - width) / 2
		case "right":
			x += float64(area.Dx()) - width
		}
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
		d.DrawString(line)
		if underline && width > 0 {
			t := int(math.Max(1, math.Round(c.scale)))
			uy := int(math.Round(y)) + t
			u := image.Rect(int(math.Round(x)), uy, int(math.Round(x+width)), uy+t)
			draw.Draw(clip, u.Intersect(area), image.NewUniform(col), image.Point{}, draw.Src)
		}
		y += lineH
	}
}

func (c *canvas) image(area image.Rectangle, src string) error {
	img, err := c.loader.Load(c.ctx, src)
	if err != nil {
		return err
	}
	draw.CatmullRom.Scale(c.dst, area, img, img.Bounds(), draw.Over, nil)
	return nil
}
