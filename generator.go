package flyerpdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lvillar/flyerpdf/classify"
	"github.com/lvillar/flyerpdf/flyer"
	"github.com/lvillar/flyerpdf/geom"
	"github.com/lvillar/flyerpdf/layout"
	"github.com/lvillar/flyerpdf/links"
	"github.com/lvillar/flyerpdf/pdfdoc"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/raster"
	"github.com/lvillar/flyerpdf/section"
)

// Generator turns sections into a paginated PDF. A Generator is safe for
// concurrent use unless it was given a Rasterizer that is not.
type Generator struct {
	cfg config
}

// New returns a Generator configured by opts.
func New(opts ...Option) (*Generator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	if err := cfg.page.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}
	return &Generator{cfg: *cfg}, nil
}

// FileName returns the configured artifact name.
func (g *Generator) FileName() string { return g.cfg.fileName }

// Page returns the configured page geometry.
func (g *Generator) Page() geom.Page { return g.cfg.page }

// SectionReport describes what happened to one input section.
type SectionReport struct {
	Key       section.Key `json:"key"`
	Empty     bool        `json:"empty"`
	Reason    string      `json:"reason"`
	Page      int         `json:"page,omitempty"`
	Rect      geom.Rect   `json:"rect,omitzero"`
	Oversized bool        `json:"oversized,omitempty"`
	Links     int         `json:"links,omitempty"`
}

// Result is a finished generation.
type Result struct {
	RunID    string          `json:"runId"`
	FileName string          `json:"fileName"`
	Sections []SectionReport `json:"sections"`
	Snapshot pdfdoc.Snapshot `json:"snapshot"`
	PDF      []byte          `json:"-"`
}

// Placed returns the number of sections that were drawn.
func (r *Result) Placed() int {
	n := 0
	for _, s := range r.Sections {
		if !s.Empty {
			n++
		}
	}
	return n
}

// WriteTo writes the PDF to w.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.PDF)
	return int64(n), err
}

// Generate lays out sections, in order, into a new document and finalizes
// it. p supplies the data rules of the emptiness check and may be nil.
// Sections are processed one at a time; ctx is checked between them. On
// failure the returned error is a *GenerateError and no artifact exists.
func (g *Generator) Generate(ctx context.Context, sections []section.Section, p *property.Property) (*Result, error) {
	runID := uuid.NewString()
	log := g.cfg.logger.With(zap.String("run", runID))
	log.Info("generating flyer",
		zap.Int("sections", len(sections)),
		zap.Float64("scale", g.cfg.scale),
		zap.Stringer("oversize", g.cfg.policy),
	)
	res, err := g.run(ctx, log, sections, p)
	if err != nil {
		var gerr *GenerateError
		if !errors.As(err, &gerr) {
			gerr = newGenerateError("Generate", err)
		}
		log.Error("flyer generation failed", zap.String("op", gerr.Op), zap.Error(gerr.Err))
		return nil, gerr
	}
	res.RunID = runID
	log.Info("flyer generated",
		zap.Int("pages", len(res.Snapshot.Pages)),
		zap.Int("placed", res.Placed()),
		zap.Int("links", res.Snapshot.LinkCount()),
		zap.Int("bytes", len(res.PDF)),
	)
	return res, nil
}

// GenerateProperty builds the standard flyer sections for p and generates
// them.
func (g *Generator) GenerateProperty(ctx context.Context, p *property.Property) (*Result, error) {
	sections, err := flyer.Build(p)
	if err != nil {
		g.cfg.logger.Error("building flyer sections failed", zap.Error(err))
		return nil, newGenerateError("Build", err)
	}
	return g.Generate(ctx, sections, p)
}

// GenerateFile runs Generate and saves the artifact under dir with the
// configured file name. It returns the path written.
func (g *Generator) GenerateFile(ctx context.Context, dir string, sections []section.Section, p *property.Property) (string, error) {
	res, err := g.Generate(ctx, sections, p)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, res.FileName)
	if err := pdfdoc.WriteFile(path, res.PDF); err != nil {
		g.cfg.logger.Error("saving flyer failed", zap.String("run", res.RunID), zap.Error(err))
		return "", newGenerateError("Save", fmt.Errorf("%w: %w", ErrSave, err))
	}
	return path, nil
}

func (g *Generator) rasterizer() (raster.Rasterizer, error) {
	if g.cfg.rasterizer != nil {
		return g.cfg.rasterizer, nil
	}
	return raster.NewPainter(g.cfg.loader)
}

func (g *Generator) run(ctx context.Context, log *zap.Logger, sections []section.Section, p *property.Property) (*Result, error) {
	r, err := g.rasterizer()
	if err != nil {
		return nil, newGenerateError("Rasterize", fmt.Errorf("%w: %w", ErrRasterize, err))
	}
	page := g.cfg.page
	doc, err := pdfdoc.New(pdfdoc.Options{
		Page:         page,
		CreationDate: g.cfg.created,
		Metadata:     g.cfg.metadata,
	})
	if err != nil {
		return nil, newGenerateError("New", err)
	}
	pager := layout.NewPaginator(page, g.cfg.policy)
	ropts := raster.Options{Scale: g.cfg.scale, Background: g.cfg.background}

	reports := make([]SectionReport, 0, len(sections))
	for _, s := range sections {
		if err := ctx.Err(); err != nil {
			return nil, newGenerateError("Generate", err)
		}
		if s.Fragment == nil {
			return nil, newGenerateError("Classify", fmt.Errorf("%w: section %s has no content", ErrInvalidParam, s.Key))
		}
		verdict := classify.Section(s, p)
		rep := SectionReport{Key: s.Key, Empty: verdict.Empty, Reason: verdict.Reason.String()}
		if verdict.Empty {
			log.Debug("section skipped", zap.Stringer("key", s.Key), zap.Stringer("reason", verdict.Reason))
			reports = append(reports, rep)
			continue
		}

		rs, err := raster.Fit(ctx, r, s.Fragment, ropts, page)
		if err != nil {
			return nil, newGenerateError("Rasterize", fmt.Errorf("%w: %s: %w", ErrRasterize, s.Key, err))
		}
		pl := pager.Place(layout.Block{Width: rs.Width, Height: rs.Height, Oversized: rs.Oversized})
		if err := doc.EnsurePage(pl.Page); err != nil {
			return nil, newGenerateError("AddPage", err)
		}
		if _, err := doc.PlaceImage(rs.Bitmap.Image, pl.Rect); err != nil {
			return nil, newGenerateError("PlaceImage", err)
		}
		if g.cfg.links {
			regions := links.Section(s.Fragment, pl.Rect.Min(), rs.LinkScale)
			if err := links.Apply(doc, regions); err != nil {
				return nil, newGenerateError("AddLink", fmt.Errorf("%w: %s: %w", ErrLink, s.Key, err))
			}
			rep.Links = len(regions)
		}
		rep.Page, rep.Rect, rep.Oversized = pl.Page, pl.Rect, rs.Oversized
		reports = append(reports, rep)
		log.Debug("section placed",
			zap.Stringer("key", s.Key),
			zap.Int("page", pl.Page),
			zap.Bool("break", pl.Break),
			zap.Float64("y", pl.Rect.Y),
			zap.Float64("height", rs.Height),
			zap.Bool("oversized", rs.Oversized),
			zap.Int("links", rep.Links),
		)
	}
	cursor := pager.Finish()

	if cursor.Placed == 0 {
		if g.cfg.requireContent {
			return nil, newGenerateError("Generate", ErrEmptyDocument)
		}
		log.Warn("every section was empty; writing a blank page")
	}
	if g.cfg.stamp != "" && cursor.Placed > 0 {
		if err := doc.Stamp(g.cfg.stamp); err != nil {
			return nil, newGenerateError("Stamp", err)
		}
	}
	for _, path := range g.cfg.appendix {
		n, err := doc.AppendPDFFile(path)
		if err != nil {
			return nil, newGenerateError("Appendix", err)
		}
		log.Debug("appendix imported", zap.String("path", path), zap.Int("pages", n))
	}

	data, err := doc.Finalize()
	if err != nil {
		return nil, newGenerateError("Save", fmt.Errorf("%w: %w", ErrSave, err))
	}
	return &Result{
		FileName: g.cfg.fileName,
		Sections: reports,
		Snapshot: doc.Snapshot(),
		PDF:      data,
	}, nil
}
