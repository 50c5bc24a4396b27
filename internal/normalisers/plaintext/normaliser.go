package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/normalisers/docbuild"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// fallbackPriority ranks below every format-specific normaliser.
const fallbackPriority = 5

// maxBlankLines caps consecutive empty lines kept in the output.
const maxBlankLines = 1

// Normaliser is the catch-all for text the corpus stores without markup:
// interview write-ups, CSV exports and JSON dumps.
type Normaliser struct{}

// New returns the plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes lists the text types read verbatim. Markdown and HTML
// are included so they still index when their own normalisers are absent.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain", "text/csv", "text/markdown", "text/html", "application/json"}
}

func (n *Normaliser) Priority() int {
	return fallbackPriority
}

// Normalise cleans line endings and whitespace runs. The title is the
// "title" metadata entry when set, else derived from the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, _ := raw.Metadata["title"].(string)
	if title == "" {
		title = docbuild.TitleFromURI(raw.URI)
	}

	doc := docbuild.New(raw, title, tidy(docbuild.CleanText(raw.Content)), "text")
	return &driven.NormaliseResult{Document: doc}, nil
}

// tidy trims trailing blanks from each line and squeezes runs of empty lines.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
