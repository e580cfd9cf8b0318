// Package chunker provides a page-aware recursive text chunking processor.
//
// Each physical page is split on its own, so a chunk never spans two pages.
// Splits prefer natural boundaries: paragraph, then line, then sentence,
// then word, then character.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/labelrag/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators is the split preference, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits per-page document text into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the split preference list.
// The empty separator is always appended as the last resort.
func WithSeparators(seps []string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		p.separators = append([]string(nil), seps...)
		if p.separators[len(p.separators)-1] != "" {
			p.separators = append(p.separators, "")
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

// Process splits each page of the document into chunks tagged with the
// page number. Pages without text are skipped but keep their numbering.
// Input chunks are ignored; this processor creates new chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if len(doc.Pages) == 0 {
		return nil, nil
	}

	var chunks []domain.Chunk
	for i, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(page) == "" {
			continue
		}

		for _, text := range p.Split(page) {
			index := len(chunks)
			chunks = append(chunks, domain.Chunk{
				ID:         domain.ChunkID(doc.ID, index),
				DocumentID: doc.ID,
				Index:      index,
				Content:    text,
				PageNumber: i + 1,
				CharCount:  utf8.RuneCountInString(text),
				TokenCount: domain.EstimateTokens(text),
				Metadata:   make(map[string]any),
			})
		}
	}

	return chunks, nil
}

// Split breaks text into chunks no longer than the chunk size where
// possible, with overlap carried between neighbouring chunks.
func (p *Processor) Split(text string) []string {
	return p.split(text, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	// Pick the first separator present in the text.
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out []string
	var good []string
	for _, piece := range strings.Split(text, sep) {
		if runeLen(piece) < p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			if t := strings.TrimSpace(piece); t != "" {
				out = append(out, t)
			}
			continue
		}
		out = append(out, p.split(piece, rest)...)
	}
	if len(good) > 0 {
		out = append(out, p.merge(good, sep)...)
	}
	return out
}

// merge joins small pieces into chunks, keeping up to overlap characters
// of the previous chunk at the start of the next one.
func (p *Processor) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	joinCost := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	var docs []string
	var current []string
	total := 0

	for _, piece := range pieces {
		l := runeLen(piece)
		if len(current) > 0 && total+l+joinCost(len(current)) > p.chunkSize {
			docs = appendTrimmed(docs, strings.Join(current, sep))
			for len(current) > 0 &&
				(total > p.overlap || total+l+joinCost(len(current)) > p.chunkSize) {
				total -= runeLen(current[0]) + joinCost(len(current)-1)
				current = current[1:]
			}
		}
		total += l + joinCost(len(current))
		current = append(current, piece)
	}

	return appendTrimmed(docs, strings.Join(current, sep))
}

func appendTrimmed(docs []string, s string) []string {
	if t := strings.TrimSpace(s); t != "" {
		return append(docs, t)
	}
	return docs
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
