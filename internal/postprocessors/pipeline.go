// Package postprocessors turns normalised documents into indexable chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the document through all processors in order.
// The first processor receives nil chunks and should create them.
// Subsequent processors receive and may modify the chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk

	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return chunks, nil
}

// ProcessAll runs every document through the pipeline and concatenates the
// chunks in document order. Each chunk's metadata records its corpus-wide
// sequence number under "seq", which fixes index insertion order.
func (p *Pipeline) ProcessAll(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var all []domain.Chunk
	for i := range docs {
		chunks, err := p.Process(ctx, &docs[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", docs[i].Source, err)
		}
		for _, c := range chunks {
			meta := make(map[string]any, len(c.Metadata)+1)
			for k, v := range c.Metadata {
				meta[k] = v
			}
			meta["seq"] = len(all)
			c.Metadata = meta
			all = append(all, c)
		}
	}
	return all, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
