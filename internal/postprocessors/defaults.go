package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/postprocessors/chunker"
	"github.com/custodia-labs/labelrag/internal/postprocessors/pagerepair"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("pagerepair", buildPageRepair)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := lookupInt(cfg, "chunk_size"); ok {
		if size <= 0 {
			return nil, fmt.Errorf("chunker: chunk_size must be positive, got %d", size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := lookupInt(cfg, "overlap"); ok {
		if overlap < 0 {
			return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// buildPageRepair creates a page repair processor from generic config.
// Supported config keys:
//   - chunks_per_page (int): Assumed density for page estimation (default: 3)
func buildPageRepair(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []pagerepair.Option

	if n, ok := lookupInt(cfg, "chunks_per_page"); ok {
		if n <= 0 {
			return nil, fmt.Errorf("pagerepair: chunks_per_page must be positive, got %d", n)
		}
		opts = append(opts, pagerepair.WithChunksPerPage(n))
	}

	return pagerepair.New(opts...), nil
}

// lookupInt extracts an int from a generic config map. TOML yields int64
// and JSON yields float64. Missing keys and other types report false.
func lookupInt(cfg map[string]any, key string) (int, bool) {
	switch v := cfg[key].(type) {
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
