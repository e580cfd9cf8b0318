// Package pagerepair guarantees that every chunk carries a page number of
// at least 1.
//
// Page tags are reconciled with the chunk list: a tag list shorter than
// the chunk list is padded with the last known page, a longer one is
// truncated. Any remaining non-positive page is replaced by an estimate
// of (index / chunks_per_page) + 1. The estimate assumes a fixed density
// and is not checked against the PDF layout, so repaired chunks are
// marked with the "page_estimated" metadata key.
package pagerepair

import (
	"context"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// DefaultChunksPerPage is the assumed chunk density used for estimation.
const DefaultChunksPerPage = domain.ChunksPerPage

// MetadataEstimated is set to true on chunks whose page was estimated.
const MetadataEstimated = domain.MetadataPageEstimated

// Processor repairs chunk page numbers.
// It implements the PostProcessor interface.
type Processor struct {
	chunksPerPage int
}

// Option configures the processor.
type Option func(*Processor)

// WithChunksPerPage sets the assumed chunk density.
func WithChunksPerPage(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.chunksPerPage = n
		}
	}
}

// New creates a page repair processor.
func New(opts ...Option) *Processor {
	p := &Processor{chunksPerPage: DefaultChunksPerPage}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "pagerepair"
}

// Process repairs the page numbers of the given chunks in place.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	tags := make([]int, len(chunks))
	for i, c := range chunks {
		tags[i] = c.PageNumber
	}

	repaired, estimated := Repair(tags, len(chunks), p.chunksPerPage)
	for i := range chunks {
		if repaired[i] == chunks[i].PageNumber {
			continue
		}
		chunks[i].PageNumber = repaired[i]
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any)
		}
		chunks[i].Metadata[MetadataEstimated] = true
	}

	if estimated > 0 {
		logger.Warn("pagerepair: estimated page numbers for %d/%d chunks of %s", estimated, len(chunks), doc.Filename)
	}

	return chunks, nil
}

// Repair returns exactly n page numbers, all >= 1, and how many of them
// were estimated. The input is padded with the last positive page (or
// truncated) to length n, then every non-positive entry is estimated
// from its index.
func Repair(pages []int, n, chunksPerPage int) ([]int, int) {
	if chunksPerPage <= 0 {
		chunksPerPage = DefaultChunksPerPage
	}
	if n <= 0 {
		return nil, 0
	}

	out := make([]int, n)
	copy(out, pages)

	if len(pages) < n {
		last := 0
		for _, pg := range pages {
			if pg > 0 {
				last = pg
			}
		}
		for i := len(pages); i < n; i++ {
			out[i] = last
		}
	}

	estimated := 0
	for i, pg := range out {
		if pg <= 0 {
			out[i] = i/chunksPerPage + 1
			estimated++
		}
	}
	return out, estimated
}
