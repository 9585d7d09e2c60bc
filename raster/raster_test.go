package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/geom"
)

// recorder is a Rasterizer that paints nothing and records the scales it
// was asked for.
type recorder struct {
	scales []float64
	err    error
}

func (r *recorder) Rasterize(_ context.Context, f *fragment.Fragment, opts Options) (*Bitmap, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.scales = append(r.scales, opts.Scale)
	w, h := CanvasSize(f, opts.Scale)
	return &Bitmap{Image: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestFitNaturalHeight(t *testing.T) {
	rec := &recorder{}
	f := fragment.New(400, 100)
	s, err := Fit(context.Background(), rec, f, Options{Scale: 2}, geom.Letter())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(rec.scales) != 1 {
		t.Fatalf("rasterized %d times, want 1", len(rec.scales))
	}
	// 800x200 bitmap onto 532pt: factor 0.665, height 133.
	if !geom.NearlyEqual(s.ScaleFactor, 532.0/800) {
		t.Errorf("ScaleFactor = %g", s.ScaleFactor)
	}
	if want := 200 * (532.0 / 800); !geom.NearlyEqual(s.Height, want) {
		t.Errorf("Height = %g, want %g", s.Height, want)
	}
	if !geom.NearlyEqual(s.LinkScale, 532.0/400) {
		t.Errorf("LinkScale = %g, want %g", s.LinkScale, 532.0/400)
	}
	if s.Oversized || s.Width != 532 {
		t.Errorf("unexpected oversize result: %+v", s)
	}
}

func TestFitOversizeRerasterizes(t *testing.T) {
	rec := &recorder{}
	page := geom.Letter()
	// Natural height 2000 * 532/500 = 2128pt, far over 712pt.
	f := fragment.New(500, 2000)
	s, err := Fit(context.Background(), rec, f, Options{Scale: 2}, page)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if len(rec.scales) != 2 {
		t.Fatalf("rasterized %d times, want 2 (initial + re-render)", len(rec.scales))
	}
	fit := page.MaxContentHeight() / 2128
	if !geom.NearlyEqual(rec.scales[1], 2*fit) {
		t.Errorf("second scale = %g, want %g", rec.scales[1], 2*fit)
	}
	if !s.Oversized || !geom.NearlyEqual(s.FitScale, fit) {
		t.Errorf("Oversized=%v FitScale=%g, want true %g", s.Oversized, s.FitScale, fit)
	}
	if s.Height != page.MaxContentHeight() {
		t.Errorf("Height = %g, want exactly %g", s.Height, page.MaxContentHeight())
	}
	if !geom.NearlyEqual(s.Width, 532*fit) {
		t.Errorf("Width = %g, want %g", s.Width, 532*fit)
	}
	if !geom.NearlyEqual(s.LinkScale, s.Width/500) {
		t.Errorf("LinkScale = %g, want %g", s.LinkScale, s.Width/500)
	}
	if s.Bitmap.Width() >= 1000 {
		t.Errorf("bitmap width %d was not reduced", s.Bitmap.Width())
	}
}

func TestFitPropagatesFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Fit(context.Background(), &recorder{err: boom}, fragment.New(10, 10), Options{Scale: 2}, geom.Letter())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, err := Fit(context.Background(), &recorder{}, fragment.New(10, 10), Options{}, geom.Letter()); err == nil {
		t.Fatal("expected error for zero scale")
	}
}

func TestPainterDrawsContent(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	src := DataURI("image/png", pngBytes(t, 4, 4, red))
	f := fragment.New(100, 60,
		fragment.Image(geom.Rect{X: 0, Y: 0, W: 50, H: 50}, src),
		fragment.Text(geom.Rect{X: 55, Y: 0, W: 45, H: 20}, "Hi").WithStyle(fragment.Style{Bold: true}),
		fragment.Link(geom.Rect{X: 55, Y: 30, W: 45, H: 20}, "https://example.com", "go"),
	)
	p, err := NewPainter(NewLoader(nil))
	if err != nil {
		t.Fatalf("NewPainter: %v", err)
	}
	bm, err := p.Rasterize(context.Background(), f, Options{Scale: 2})
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if bm.Width() != 200 || bm.Height() != 120 {
		t.Fatalf("bitmap %dx%d, want 200x120", bm.Width(), bm.Height())
	}
	if got := bm.Image.RGBAAt(50, 50); got.R < 0xf0 || got.G > 0x10 || got.B > 0x10 {
		t.Errorf("image pixel = %v, want red", got)
	}
	if got := bm.Image.RGBAAt(199, 119); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel = %v, want white", got)
	}
	inked := false
	for y := 0; y < 40 && !inked; y++ {
		for x := 110; x < 200; x++ {
			if bm.Image.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("text area was left blank")
	}
}

func TestPainterIsDeterministic(t *testing.T) {
	f := fragment.New(120, 40, fragment.Text(geom.Rect{W: 120, H: 40}, "Same input, same pixels"))
	p, err := NewPainter(nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := p.Rasterize(context.Background(), f, Options{Scale: 2, Background: color.White})
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Rasterize(context.Background(), f, Options{Scale: 2, Background: color.White})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Image.Pix, b.Image.Pix) {
		t.Error("two renders of the same fragment differ")
	}
}

func TestPainterImageFailure(t *testing.T) {
	p, err := NewPainter(NewLoader(nil))
	if err != nil {
		t.Fatal(err)
	}
	f := fragment.New(10, 10, fragment.Image(geom.Rect{W: 10, H: 10}, "data:image/png;base64,!!!"))
	if _, err := p.Rasterize(context.Background(), f, Options{Scale: 1}); !errors.Is(err, ErrImage) {
		t.Fatalf("err = %v, want ErrImage", err)
	}
}

func TestLoaderFetchesRemoteOnce(t *testing.T) {
	body := pngBytes(t, 2, 2, color.Black)
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer srv.Close()

	l := NewLoader(srv.Client())
	for i := 0; i < 2; i++ {
		img, err := l.Load(context.Background(), srv.URL+"/photo.png")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if img.Bounds().Dx() != 2 {
			t.Errorf("width = %d", img.Bounds().Dx())
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestLoaderRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err := NewLoader(srv.Client()).Load(context.Background(), srv.URL+"/missing.jpg")
	if !errors.Is(err, ErrImage) {
		t.Fatalf("err = %v, want ErrImage", err)
	}
}

func TestWrap(t *testing.T) {
	fonts, err := NewFonts()
	if err != nil {
		t.Fatal(err)
	}
	w := fonts.Measure("alpha beta", 14, false)
	lines := fonts.Wrap("alpha beta gamma\ndelta", 14, false, w)
	want := []string{"alpha beta", "gamma", "delta"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
