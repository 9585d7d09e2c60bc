package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/flyerpdf"
	"github.com/lvillar/flyerpdf/geom"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flyerpdf.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := write(t, `
output:
  file_name: deal-sheet
  canvas_scale: 3
  appendix: [inspection.pdf]
page:
  paper: a4
  margins: 36
  oversize: in-place
metadata:
  title: 123 Main St
webhook:
  url: https://flyers.example.com/render
  timeout: 45s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Webhook.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Webhook.Timeout)
	}
	if !cfg.Output.Links || cfg.Page.Gap != 20 {
		t.Errorf("defaults lost: links=%v gap=%g", cfg.Output.Links, cfg.Page.Gap)
	}
	if want := []string{"inspection.pdf"}; !cmp.Equal(cfg.Output.Appendix, want) {
		t.Errorf("appendix = %q", cfg.Output.Appendix)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	g, err := flyerpdf.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.FileName() != "deal-sheet.pdf" {
		t.Errorf("file name = %q", g.FileName())
	}
	a4, _ := geom.PageSize("a4")
	want := geom.Page{Width: a4.Width, Height: a4.Height, Margin: 36, Gap: 20}
	if diff := cmp.Diff(want, g.Page()); diff != "" {
		t.Errorf("page (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := write(t, "output:\n  filename: typo.pdf\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "filename") {
		t.Errorf("err = %v, want unknown field error", err)
	}
}

func TestOptionsErrors(t *testing.T) {
	cfg := Default()
	cfg.Page.Oversize = "shrink"
	if _, err := cfg.Options(); err == nil {
		t.Error("unknown oversize policy accepted")
	}

	cfg = Default()
	cfg.Output.CanvasScale = 0.5
	opts, err := cfg.Options()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := flyerpdf.New(opts...); !errors.Is(err, flyerpdf.ErrInvalidParam) {
		t.Errorf("err = %v, want ErrInvalidParam", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg, cmp.AllowUnexported(Config{})); diff != "" {
		t.Errorf("missing file (-want +got):\n%s", diff)
	}
}

func TestWebhookClient(t *testing.T) {
	cfg := Default()
	if cfg.WebhookClient(nil) != nil {
		t.Fatal("client without a URL")
	}
	cfg.Webhook.URL = "https://flyers.example.com/render"
	cfg.Webhook.Timeout = 5 * time.Second
	wc := cfg.WebhookClient(nil)
	if wc == nil || wc.URL != cfg.Webhook.URL || wc.HTTP.Timeout != 5*time.Second {
		t.Fatalf("client = %+v", wc)
	}
}
