// Package webhook fetches the browser rendition of a flyer from the flyer
// content service.
//
// The service receives the property record as JSON and answers with an
// HTML document, either as the response body or wrapped in a JSON object
// {"html": "..."}. The document is parsed and written back out as a
// complete, UTF-8 declared page so it can be saved and printed from a
// browser.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/lvillar/flyerpdf/property"
)

// DefaultTimeout bounds one call when the caller's context has no deadline.
const DefaultTimeout = 60 * time.Second

// maxBody bounds the accepted response size.
const maxBody = 16 << 20

var (
	// ErrStatus reports a non-2xx answer from the service.
	ErrStatus = errors.New("webhook: unexpected status")
	// ErrEmpty reports a document with nothing in its body.
	ErrEmpty = errors.New("webhook: empty document")
)

// Client calls the flyer content service.
type Client struct {
	URL    string
	HTTP   *http.Client
	Logger *zap.Logger
}

// NewClient returns a Client posting to url.
func NewClient(url string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{URL: url, HTTP: &http.Client{}, Logger: log}
}

// Document is a validated HTML flyer.
type Document struct {
	HTML  []byte
	Title string
	Links []string // href of every anchor, in document order
}

type request struct {
	Slug     string             `json:"slug"`
	Property *property.Property `json:"property"`
}

type envelope struct {
	HTML string `json:"html"`
}

// Render posts p to the service and returns the flyer document.
func (c *Client) Render(ctx context.Context, p *property.Property) (*Document, error) {
	if p == nil {
		return nil, fmt.Errorf("webhook: no property record")
	}
	if c.URL == "" {
		return nil, fmt.Errorf("webhook: no service URL configured")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}
	log := c.logger().With(zap.String("slug", p.Slug()))

	body, err := json.Marshal(request{Slug: p.Slug(), Property: p})
	if err != nil {
		return nil, fmt.Errorf("webhook: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/html, application/json")

	start := time.Now()
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook: calling %s: %w", c.URL, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("webhook: reading response: %w", err)
	}
	log.Debug("webhook answered",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	if len(data) > maxBody {
		return nil, fmt.Errorf("webhook: response exceeds %d bytes", maxBody)
	}

	src := data
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "application/json" {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("webhook: decoding JSON response: %w", err)
		}
		src = []byte(env.HTML)
	}
	doc, err := Normalize(src)
	if err != nil {
		return nil, err
	}
	if doc.Title == "" {
		doc.Title = p.Address.String()
	}
	log.Info("flyer HTML rendered", zap.String("title", doc.Title), zap.Int("links", len(doc.Links)))
	return doc, nil
}

func (c *Client) client() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// Normalize parses src, which may be a full document or a bare fragment,
// and renders it back as a complete document with a UTF-8 charset
// declaration. It fails when the body holds neither text nor elements.
func Normalize(src []byte) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("webhook: parsing HTML: %w", err)
	}
	head := find(root, atom.Head)
	body := find(root, atom.Body)
	if head == nil || body == nil || !hasContent(body) {
		return nil, ErrEmpty
	}
	if !hasCharset(head) {
		meta := &html.Node{
			Type:     html.ElementNode,
			Data:     "meta",
			DataAtom: atom.Meta,
			Attr:     []html.Attribute{{Key: "charset", Val: "utf-8"}},
		}
		head.InsertBefore(meta, head.FirstChild)
	}

	doc := &Document{}
	if t := find(head, atom.Title); t != nil {
		doc.Title = strings.Join(strings.Fields(text(t)), " ")
	}
	walk(body, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if href := attr(n, "href"); strings.TrimSpace(href) != "" {
				doc.Links = append(doc.Links, strings.TrimSpace(href))
			}
		}
	})

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("webhook: rendering HTML: %w", err)
	}
	doc.HTML = buf.Bytes()
	return doc, nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}

func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasContent(body *html.Node) bool {
	found := false
	walk(body, func(n *html.Node) {
		switch {
		case n == body:
		case n.Type == html.ElementNode:
			found = true
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) != "":
			found = true
		}
	})
	return found
}

func hasCharset(head *html.Node) bool {
	found := false
	walk(head, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			if attr(n, "charset") != "" || strings.EqualFold(attr(n, "http-equiv"), "content-type") {
				found = true
			}
		}
	})
	return found
}
