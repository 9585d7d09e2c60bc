package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/lvillar/flyerpdf"
	"github.com/lvillar/flyerpdf/classify"
	"github.com/lvillar/flyerpdf/flyer"
	"github.com/lvillar/flyerpdf/inspect"
	"github.com/lvillar/flyerpdf/pdfdoc"
	"github.com/lvillar/flyerpdf/property"
	"github.com/lvillar/flyerpdf/webhook"
)

// Toolbox carries the configuration shared by the flyer tools.
type Toolbox struct {
	Options []flyerpdf.Option // applied to every generation
	Webhook *webhook.Client   // nil disables render_html
	Logger  *zap.Logger
}

func (tb *Toolbox) logger() *zap.Logger {
	if tb.Logger == nil {
		return zap.NewNop()
	}
	return tb.Logger
}

// RegisterDefaultTools adds all built-in flyer tools to the server.
func RegisterDefaultTools(s *Server, tb *Toolbox) {
	if tb == nil {
		tb = &Toolbox{}
	}
	s.AddTool(generateFlyerTool(tb))
	s.AddTool(classifySectionsTool())
	s.AddTool(inspectPDFTool())
	s.AddTool(renderHTMLTool(tb))
}

var propertySchema = map[string]interface{}{
	"property": map[string]interface{}{
		"type":        "object",
		"description": "Property record: address, listingUrl, photos, financials, details, comps, occupancy, access, emdClosing, exitStrategy, contact",
	},
	"propertyPath": map[string]interface{}{
		"type":        "string",
		"description": "Path to a JSON or YAML property record, used when 'property' is omitted",
	},
}

func schema(extra map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{}, len(propertySchema)+len(extra))
	for k, v := range propertySchema {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{"type": "object", "properties": props}
}

// propertyArg reads the record from the 'property' object or the file named
// by 'propertyPath'.
func propertyArg(args map[string]interface{}) (*property.Property, error) {
	if raw, ok := args["property"]; ok && raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("encoding property: %w", err)
		}
		return property.Decode(bytes.NewReader(data), property.JSON)
	}
	if path, ok := args["propertyPath"].(string); ok && path != "" {
		return property.Load(path)
	}
	return nil, fmt.Errorf("missing 'property' or 'propertyPath' argument")
}

func textResult(format string, a ...interface{}) ToolResult {
	return ToolResult{Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf(format, a...)}}}
}

func generateFlyerTool(tb *Toolbox) Tool {
	return Tool{
		Name:        "generate_flyer",
		Description: "Generate the paginated PDF flyer for a property record. Empty sections are left out, links stay clickable. Saves to outputDir or returns the PDF as base64.",
		InputSchema: schema(map[string]interface{}{
			"outputDir": map[string]interface{}{
				"type":        "string",
				"description": "Optional directory to save the PDF in. If omitted, returns base64.",
			},
			"fileName": map[string]interface{}{
				"type":        "string",
				"description": "Optional file name; defaults to the address slug",
			},
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			return handleGenerateFlyer(ctx, tb, args)
		},
	}
}

func handleGenerateFlyer(ctx context.Context, tb *Toolbox, args map[string]interface{}) (ToolResult, error) {
	p, err := propertyArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	opts := slices.Clone(tb.Options)
	opts = append(opts, flyerpdf.WithLogger(tb.logger()))
	if name, ok := args["fileName"].(string); ok && name != "" {
		opts = append(opts, flyerpdf.WithFileName(name))
	} else if slug := p.Slug(); slug != "" {
		opts = append(opts, flyerpdf.WithFileName(slug))
	}
	g, err := flyerpdf.New(opts...)
	if err != nil {
		return ToolResult{}, err
	}
	res, err := g.GenerateProperty(ctx, p)
	if err != nil {
		return ToolResult{}, err
	}

	report, _ := json.MarshalIndent(res.Sections, "", "  ")
	summary := fmt.Sprintf("Flyer generated: %d pages, %d of %d sections placed, %d links.",
		len(res.Snapshot.Pages), res.Placed(), len(res.Sections), res.Snapshot.LinkCount())

	if dir, ok := args["outputDir"].(string); ok && dir != "" {
		path := filepath.Join(dir, res.FileName)
		if err := pdfdoc.WriteFile(path, res.PDF); err != nil {
			tb.logger().Error("saving flyer failed", zap.String("path", path), zap.Error(err))
			return ToolResult{}, errors.New(flyerpdf.UserMessage)
		}
		return textResult("%s\nSaved to %s (%d bytes).\nSections:\n%s", summary, path, len(res.PDF), report), nil
	}
	encoded := base64.StdEncoding.EncodeToString(res.PDF)
	return textResult("%s\nSections:\n%s\nBase64 data (%s, %d bytes):\n%s", summary, report, res.FileName, len(res.PDF), encoded), nil
}

func classifySectionsTool() Tool {
	return Tool{
		Name:        "classify_sections",
		Description: "Report which flyer sections of a property record have content and which would be left out, with the rule that decided.",
		InputSchema: schema(nil),
		Handler:     handleClassifySections,
	}
}

func handleClassifySections(_ context.Context, args map[string]interface{}) (ToolResult, error) {
	p, err := propertyArg(args)
	if err != nil {
		return ToolResult{}, err
	}
	sections, err := flyer.Build(p)
	if err != nil {
		return ToolResult{}, err
	}
	type verdict struct {
		Key    string `json:"key"`
		Title  string `json:"title"`
		Empty  bool   `json:"empty"`
		Reason string `json:"reason"`
	}
	out := make([]verdict, 0, len(sections))
	for _, s := range sections {
		v := classify.Section(s, p)
		out = append(out, verdict{Key: s.Key.String(), Title: s.Key.Title(), Empty: v.Empty, Reason: v.Reason.String()})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return textResult("%s", data), nil
}

func inspectPDFTool() Tool {
	return Tool{
		Name:        "inspect_pdf",
		Description: "List the pages, page sizes, link annotations and metadata of a generated flyer PDF.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to the PDF file",
				},
			},
			"required": []string{"path"},
		},
		Handler: handleInspectPDF,
	}
}

func handleInspectPDF(_ context.Context, args map[string]interface{}) (ToolResult, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return ToolResult{}, fmt.Errorf("missing 'path' argument")
	}
	doc, err := inspect.Open(path)
	if err != nil {
		return ToolResult{}, err
	}
	data, _ := json.MarshalIndent(doc, "", "  ")
	return textResult("%s", data), nil
}

func renderHTMLTool(tb *Toolbox) Tool {
	return Tool{
		Name:        "render_html",
		Description: "Fetch the browser version of the flyer from the flyer content service. Saves it to outputPath or returns the HTML.",
		InputSchema: schema(map[string]interface{}{
			"outputPath": map[string]interface{}{
				"type":        "string",
				"description": "Optional file path to save the HTML",
			},
		}),
		Handler: func(ctx context.Context, args map[string]interface{}) (ToolResult, error) {
			if tb.Webhook == nil {
				return ToolResult{}, fmt.Errorf("no flyer content service configured")
			}
			p, err := propertyArg(args)
			if err != nil {
				return ToolResult{}, err
			}
			doc, err := tb.Webhook.Render(ctx, p)
			if err != nil {
				return ToolResult{}, err
			}
			if out, ok := args["outputPath"].(string); ok && out != "" {
				if err := pdfdoc.WriteFile(out, doc.HTML); err != nil {
					return ToolResult{}, fmt.Errorf("writing file: %w", err)
				}
				return textResult("Flyer HTML saved: %s (%d bytes, %d links)", out, len(doc.HTML), len(doc.Links)), nil
			}
			return ToolResult{Content: []ContentBlock{{Type: "text", MIMEType: "text/html", Text: string(doc.HTML)}}}, nil
		},
	}
}
