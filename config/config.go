// Package config loads flyerpdf settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/flyerpdf"
	"github.com/lvillar/flyerpdf/fragment"
	"github.com/lvillar/flyerpdf/layout"
	"github.com/lvillar/flyerpdf/pdfdoc"
	"github.com/lvillar/flyerpdf/webhook"
)

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = "flyerpdf.yaml"

// Config is the root configuration structure.
type Config struct {
	Output   OutputConfig    `yaml:"output"`
	Page     PageConfig      `yaml:"page"`
	Metadata pdfdoc.Metadata `yaml:"metadata"`
	Webhook  WebhookConfig   `yaml:"webhook"`
	Log      LogConfig       `yaml:"log"`

	dir string // directory of the loaded file, for relative paths
}

// OutputConfig holds what goes into the artifact.
type OutputConfig struct {
	FileName       string   `yaml:"file_name"`
	Background     string   `yaml:"background"` // "#rrggbb"
	CanvasScale    float64  `yaml:"canvas_scale"`
	Links          bool     `yaml:"links"`
	RequireContent bool     `yaml:"require_content"`
	Appendix       []string `yaml:"appendix"`
	Stamp          string   `yaml:"stamp"`
}

// PageConfig holds the page geometry. Width and Height override Paper when
// both are set.
type PageConfig struct {
	Paper    string  `yaml:"paper"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Margins  float64 `yaml:"margins"`
	Gap      float64 `yaml:"gap"`
	Oversize string  `yaml:"oversize"` // "new-page" or "in-place"
}

// WebhookConfig holds the flyer content service settings.
type WebhookConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			FileName:    flyerpdf.DefaultFileName,
			Background:  "#ffffff",
			CanvasScale: 2,
			Links:       true,
		},
		Page: PageConfig{
			Paper:    "letter",
			Margins:  40,
			Gap:      20,
			Oversize: layout.OversizeNewPage.String(),
		},
		Webhook: WebhookConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// Load loads configuration from a file. Keys the file leaves out keep their
// defaults; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default if path is
// empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Options converts the configuration to generator options. Appendix paths
// are resolved against the directory of the loaded file.
func (c *Config) Options() ([]flyerpdf.Option, error) {
	bg, _, err := fragment.ParseColor(c.Output.Background)
	if err != nil {
		return nil, fmt.Errorf("config: output.background: %w", err)
	}
	if c.Output.Background == "" {
		bg, _, _ = fragment.ParseColor("#ffffff")
	}
	policy, err := layout.ParsePolicy(c.Page.Oversize)
	if err != nil {
		return nil, fmt.Errorf("config: page.oversize: %w", err)
	}

	opts := []flyerpdf.Option{
		flyerpdf.WithBackgroundColor(bg),
		flyerpdf.WithCanvasScale(c.Output.CanvasScale),
		flyerpdf.WithLinks(c.Output.Links),
		flyerpdf.WithRequireContent(c.Output.RequireContent),
		flyerpdf.WithMargins(c.Page.Margins),
		flyerpdf.WithGap(c.Page.Gap),
		flyerpdf.WithOversizePolicy(policy),
		flyerpdf.WithMetadata(c.Metadata),
	}
	if c.Output.FileName != "" {
		opts = append(opts, flyerpdf.WithFileName(c.Output.FileName))
	}
	switch {
	case c.Page.Width > 0 && c.Page.Height > 0:
		opts = append(opts, flyerpdf.WithPageSize(c.Page.Width, c.Page.Height))
	case c.Page.Paper != "":
		opts = append(opts, flyerpdf.WithPaper(c.Page.Paper))
	}
	if c.Output.Stamp != "" {
		opts = append(opts, flyerpdf.WithReferenceStamp(c.Output.Stamp))
	}
	for _, p := range c.Output.Appendix {
		if !filepath.IsAbs(p) && c.dir != "" {
			p = filepath.Join(c.dir, p)
		}
		opts = append(opts, flyerpdf.WithAppendix(p))
	}
	return opts, nil
}

// Logger builds the logger selected by the log section, or a development
// logger when verbose is set. Both write to stderr.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Log.Development || verbose {
		zc = zap.NewDevelopmentConfig()
	}
	return zc.Build()
}

// WebhookClient returns a client for the configured flyer content service,
// or nil when no URL is set.
func (c *Config) WebhookClient(log *zap.Logger) *webhook.Client {
	if c.Webhook.URL == "" {
		return nil
	}
	wc := webhook.NewClient(c.Webhook.URL, log)
	if c.Webhook.Timeout > 0 {
		wc.HTTP.Timeout = c.Webhook.Timeout
	}
	return wc
}
