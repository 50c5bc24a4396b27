// Package chunker provides a recursive, separator-aware text chunking processor.
package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// DefaultChunkSize is the default maximum number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default maximum number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
//
// Chunk boundaries fall directly after a separator. Among the boundaries that
// keep a chunk within chunkSize, the one after the highest-priority separator
// wins, so paragraphs stay together before lines, lines before sentences and
// so on. Text with no separator in reach is cut at chunkSize.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the maximum overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators sets the separators in priority order.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	text := []rune(doc.Content)
	spans := p.split(text)

	chunks := make([]domain.Chunk, 0, len(spans))
	for i, s := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    string(text[s.start:s.end]),
			Position:   i,
			Start:      s.start,
			End:        s.end,
			Metadata:   map[string]any{"source": doc.Source},
		})
	}

	return chunks, nil
}

type span struct {
	start, end int
}

// split returns contiguous or overlapping spans covering every rune of text.
func (p *Processor) split(text []rune) []span {
	n := len(text)
	ranks := p.boundaryRanks(text)
	wordRank := p.wordRank()

	var out []span
	start, prevEnd := 0, 0
	for {
		end := n
		if start+p.chunkSize < n {
			end = p.bestEnd(ranks, start, prevEnd)
		}
		out = append(out, span{start: start, end: end})
		if end == n {
			return out
		}

		next := end
		for b := max(end-p.overlap, start+1); b < end; b++ {
			if ranks[b] <= wordRank {
				next = b
				break
			}
		}
		prevEnd, start = end, next
	}
}

// bestEnd picks the end of a chunk starting at start. Candidates must add new
// text beyond prevEnd and fill at least half the chunk when possible.
func (p *Processor) bestEnd(ranks []int, start, prevEnd int) int {
	limit := start + p.chunkSize
	lo := max(start, prevEnd) + 1
	if half := start + p.chunkSize/2; half > lo {
		lo = half
	}

	best := limit
	for b := limit; b >= lo; b-- {
		if ranks[b] < ranks[best] {
			best = b
		}
	}
	return best
}

// boundaryRanks scores the position before each rune by the index of the
// separator that ends there. Lower is better. Positions no separator ends at
// score len(separators).
func (p *Processor) boundaryRanks(text []rune) []int {
	seps := make([][]rune, len(p.separators))
	for i, s := range p.separators {
		seps[i] = []rune(s)
	}

	ranks := make([]int, len(text)+1)
	for pos := range ranks {
		ranks[pos] = len(seps)
		for i, sep := range seps {
			if endsWith(text[:pos], sep) {
				ranks[pos] = i
				break
			}
		}
	}
	return ranks
}

// wordRank is the rank of the last non-empty separator. Overlap starts only at
// positions ranked at or below it, never mid-word.
func (p *Processor) wordRank() int {
	for i := len(p.separators) - 1; i >= 0; i-- {
		if p.separators[i] != "" {
			return i
		}
	}
	return -1
}

func endsWith(text, suffix []rune) bool {
	if len(suffix) > len(text) {
		return false
	}
	off := len(text) - len(suffix)
	for i, r := range suffix {
		if text[off+i] != r {
			return false
		}
	}
	return true
}
