package mcp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/lvillar/flyerpdf/inspect"
	"github.com/lvillar/flyerpdf/section"
)

// RegisterDefaultResources adds the built-in resources to the server.
// Per-file resources take the file path as a query parameter.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "flyer://sections",
		Name:        "Flyer Sections",
		Description: "The flyer sections in the order they are laid out, with their keys and headings.",
		MIMEType:    "application/json",
		Handler:     handleSectionsResource,
	})

	s.AddResource(Resource{
		URI:         "pdf://pages",
		Name:        "PDF Page Info",
		Description: "Page sizes and link annotations of a PDF. Pass the file path as a query parameter: pdf://pages?path=/path/to/flyer.pdf",
		MIMEType:    "application/json",
		Handler:     handlePagesResource,
	})

	s.AddResource(Resource{
		URI:         "pdf://metadata",
		Name:        "PDF Metadata",
		Description: "Info dictionary of a PDF (title, author, creator...). Pass the file path as a query parameter: pdf://metadata?path=/path/to/flyer.pdf",
		MIMEType:    "application/json",
		Handler:     handleMetadataResource,
	})
}

// baseURI strips the query from a resource URI.
func baseURI(uri string) string {
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		return uri[:i]
	}
	return uri
}

func extractPathFromURI(uri string) string {
	// Parse path from URI like pdf://pages?path=/foo/bar.pdf
	i := strings.IndexByte(uri, '?')
	if i < 0 {
		return ""
	}
	q, err := url.ParseQuery(uri[i+1:])
	if err != nil {
		return ""
	}
	return q.Get("path")
}

func jsonContent(uri string, v interface{}) ([]ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}

func handleSectionsResource(uri string) ([]ResourceContent, error) {
	type entry struct {
		Key   section.Key `json:"key"`
		Title string      `json:"title"`
	}
	var out []entry
	for _, k := range section.Keys() {
		out = append(out, entry{Key: k, Title: k.Title()})
	}
	return jsonContent(uri, out)
}

func openFromURI(uri string) (*inspect.Document, error) {
	path := extractPathFromURI(uri)
	if path == "" {
		return nil, fmt.Errorf("missing 'path' parameter in URI")
	}
	doc, err := inspect.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return doc, nil
}

func handlePagesResource(uri string) ([]ResourceContent, error) {
	doc, err := openFromURI(uri)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, map[string]interface{}{
		"numPages": len(doc.Pages),
		"links":    doc.LinkCount(),
		"pages":    doc.Pages,
	})
}

func handleMetadataResource(uri string) ([]ResourceContent, error) {
	doc, err := openFromURI(uri)
	if err != nil {
		return nil, err
	}
	return jsonContent(uri, map[string]interface{}{
		"version":  doc.Version,
		"numPages": len(doc.Pages),
		"images":   doc.Images,
		"metadata": doc.Info,
	})
}
