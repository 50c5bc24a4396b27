package filesystem

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/logger"
)

// Ensure CorpusReader implements the interface.
var _ driven.CorpusReader = (*CorpusReader)(nil)

// CorpusReader reads corpus directories with a fixed extension filter.
type CorpusReader struct {
	extensions []string
}

// NewCorpusReader creates a reader loading files with the given extensions.
// No extensions means every non-hidden file.
func NewCorpusReader(extensions ...string) *CorpusReader {
	return &CorpusReader{extensions: extensions}
}

// Read collects every matching document under dir in lexical path order.
func (r *CorpusReader) Read(ctx context.Context, dir string) ([]domain.RawDocument, []string, error) {
	c := New(dir, r.extensions...)
	defer c.Close()

	docs, skipErrs, err := c.Collect(ctx)
	if err != nil {
		return nil, nil, err
	}

	skipped := make([]string, 0, len(skipErrs))
	for _, s := range skipErrs {
		logger.Warn("corpus: %v", s)
		skipped = append(skipped, c.rel(s.Path))
	}
	return docs, skipped, nil
}
