package driven

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// CorpusReader loads the raw documents of a corpus directory.
//
// Implementations may include:
//   - Local filesystem walker (default)
type CorpusReader interface {
	// Read returns every loadable document under dir in a stable order.
	// Files that cannot be read are listed in skipped and do not fail the call.
	// A missing directory returns an error wrapping domain.ErrCorpusNotFound.
	Read(ctx context.Context, dir string) (docs []domain.RawDocument, skipped []string, err error)
}
