package driving

import (
	"context"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

// IngestService rebuilds the vector index from a corpus directory.
type IngestService interface {
	// Ingest reads dir, chunks and embeds every document and replaces the index.
	// The previous index stays in place when the run fails before the swap.
	Ingest(ctx context.Context, dir string) (*domain.IngestReport, error)
}

// ResumeDecoder extracts plain text from an uploaded resume file.
type ResumeDecoder interface {
	// Decode returns the text of data, selecting a decoder from filename.
	Decode(ctx context.Context, filename string, data []byte) (string, error)
}
