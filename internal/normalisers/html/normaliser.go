package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/normalisers/docbuild"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise converts an HTML document to a normalised document.
// The Content field contains the readable text with markup removed.
// Chunking is handled by the PostProcessor pipeline.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(page.Find("title").First().Text())
	if title == "" {
		title = docbuild.TitleFromURI(raw.URI)
	}

	return &driven.NormaliseResult{
		Document: docbuild.New(raw, title, extractText(page.Selection), "html"),
	}, nil
}

// skipElements never contribute text.
const skipElements = "head, script, style, noscript, svg, template, iframe"

var blockElements = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true, "table": true, "section": true,
	"article": true, "header": true, "footer": true, "ul": true, "ol": true, "hr": true,
}

var multiSpaces = regexp.MustCompile(`[ \t\f\v]+`)

func extractText(sel *goquery.Selection) string {
	sel.Find(skipElements).Remove()

	var b strings.Builder
	walk(sel, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		switch name := goquery.NodeName(child); {
		case name == "#text":
			b.WriteString(strings.ReplaceAll(child.Text(), "\n", " "))
		case name == "#comment":
		case name == "br":
			b.WriteString("\n")
		case blockElements[name]:
			b.WriteString("\n")
			walk(child, b)
			b.WriteString("\n")
		default:
			walk(child, b)
		}
	})
}
