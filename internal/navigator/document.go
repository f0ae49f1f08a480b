package navigator

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// SelectorKind selects how a selector string is interpreted
type SelectorKind string

const (
	ByCSS   SelectorKind = "css"
	ByName  SelectorKind = "name"
	ByID    SelectorKind = "id"
	ByClass SelectorKind = "class"
	ByXPath SelectorKind = "xpath"
)

// Element is a single node matched on a page
type Element struct {
	sel *goquery.Selection
}

// Text returns the element's text content with surrounding whitespace removed.
func (e Element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// Attr returns the named attribute.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Selection exposes the element for further goquery traversal.
func (e Element) Selection() *goquery.Selection {
	return e.sel
}

// Document is a parsed page
type Document struct {
	url    *url.URL
	source string
	root   *html.Node
	doc    *goquery.Document
}

// NewDocument parses source as the page found at pageURL.
func NewDocument(pageURL string, source []byte) (*Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{
		url:    u,
		source: string(source),
		root:   root,
		doc:    goquery.NewDocumentFromNode(root),
	}, nil
}

// URL returns the address the page was loaded from.
func (d *Document) URL() string {
	return d.url.String()
}

// Title returns the text of the page's <title>.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// PageSource returns the raw HTML.
func (d *Document) PageSource() string {
	return d.source
}

// Reader returns a fresh reader over the raw HTML.
func (d *Document) Reader() io.Reader {
	return strings.NewReader(d.source)
}

// Resolve turns an href found on the page into an absolute URL.
func (d *Document) Resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return d.url.ResolveReference(ref).String()
}

// Element returns the first match for selector. ok is false when nothing matches.
func (d *Document) Element(kind SelectorKind, selector string) (Element, bool, error) {
	all, err := d.Elements(kind, selector)
	if err != nil || len(all) == 0 {
		return Element{}, false, err
	}
	return all[0], true, nil
}

// Elements returns every match for selector in document order.
func (d *Document) Elements(kind SelectorKind, selector string) ([]Element, error) {
	var sel *goquery.Selection
	switch kind {
	case ByCSS:
		sel = d.doc.Find(selector)
	case ByName:
		sel = d.doc.Find(fmt.Sprintf("[name=%q]", selector))
	case ByID:
		sel = d.doc.Find(fmt.Sprintf("[id=%q]", selector))
	case ByClass:
		sel = d.doc.Find(fmt.Sprintf("[class~=%q]", selector))
	case ByXPath:
		nodes, err := htmlquery.QueryAll(d.root, selector)
		if err != nil {
			return nil, fmt.Errorf("evaluating xpath %q: %w", selector, err)
		}
		sel = d.doc.FindNodes(nodes...)
	default:
		return nil, fmt.Errorf("unknown selector kind %q", kind)
	}

	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Element{sel: s})
	})
	return out, nil
}
