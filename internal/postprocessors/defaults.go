package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/prepkit/internal/core/domain"
	"github.com/custodia-labs/prepkit/internal/core/ports/driven"
	"github.com/custodia-labs/prepkit/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// NewIngestPipeline builds the ingestion pipeline from settings.
func NewIngestPipeline(cfg domain.IngestSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	c, err := r.Build("chunker", map[string]any{
		"chunk_size": cfg.ChunkSize,
		"overlap":    cfg.ChunkOverlap,
	})
	if err != nil {
		return nil, err
	}
	return NewPipeline(c), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Maximum characters per chunk (default: 500)
//   - overlap (int): Maximum overlapping characters between chunks (default: 50)
//   - separators ([]string): Separators in priority order
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		if size <= 0 {
			return nil, fmt.Errorf("chunk_size must be positive, got %d", size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		if overlap < 0 {
			return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if seps, ok := cfg["separators"]; ok {
		list, err := toStrings(seps)
		if err != nil {
			return nil, fmt.Errorf("separators: %w", err)
		}
		opts = append(opts, chunker.WithSeparators(list...))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func toStrings(val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list of strings, got %T", val)
}
