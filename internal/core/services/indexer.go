package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// embedBatchSize is the number of chunks one worker embeds per call.
const embedBatchSize = 16

// IndexRequest describes one PDF to index.
type IndexRequest struct {
	// Path is the PDF location on disk.
	Path string

	// ProductKey scopes every passage of the document.
	ProductKey string

	// SourceURL is where the PDF was downloaded from, if known.
	SourceURL string

	// Force deletes prior chunks and passages and reprocesses.
	Force bool
}

// Indexer turns a PDF into page-tagged chunks in the document store and
// embedded passages in the vector store.
type Indexer struct {
	docStore  driven.DocumentStore
	vectors   driven.VectorStore
	embedder  driven.EmbeddingService
	extractor driven.PageExtractor
	pipeline  driven.PostProcessorPipeline
	workers   int
}

// NewIndexer creates an indexer. Workers bounds concurrent embedding
// calls per document; non-positive means domain.DefaultIndexingWorkers.
func NewIndexer(
	docStore driven.DocumentStore,
	vectors driven.VectorStore,
	embedder driven.EmbeddingService,
	extractor driven.PageExtractor,
	pipeline driven.PostProcessorPipeline,
	workers int,
) *Indexer {
	if workers <= 0 {
		workers = domain.DefaultIndexingWorkers
	}
	return &Indexer{
		docStore:  docStore,
		vectors:   vectors,
		embedder:  embedder,
		extractor: extractor,
		pipeline:  pipeline,
		workers:   workers,
	}
}

// Index processes one PDF. A document already processed with at least
// one passage in the vector store is skipped unless req.Force is set.
func (ix *Indexer) Index(ctx context.Context, req IndexRequest) (*driving.IndexReport, error) {
	path, err := filepath.Abs(req.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", req.Path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}

	docID := domain.DocumentIDForPath(path)
	filename := filepath.Base(path)
	report := &driving.IndexReport{DocumentID: docID, Filename: filename}

	logger.Section(fmt.Sprintf("Indexing %s", filename))
	logger.Debug("Document id: %s, product key: %q, force: %t", docID, req.ProductKey, req.Force)

	existing, err := ix.docStore.GetDocument(ctx, docID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	if existing != nil && !req.Force && existing.Processed {
		n, err := ix.vectors.Count(ctx, docID)
		if err != nil {
			logger.Warn("Counting passages for %s: %v", filename, err)
		}
		if n > 0 {
			logger.Info("Skipping %s: already indexed (%d passages)", filename, n)
			report.Skipped = true
			report.Chunks = existing.NumChunks
			report.Passages = n
			return report, nil
		}
	}

	if existing != nil {
		if req.Force {
			logger.Info("Reprocessing %s", filename)
		}
		if err := ix.clear(ctx, docID); err != nil {
			return nil, err
		}
	}

	pages, err := ix.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", filename, err)
	}

	doc := &domain.Document{
		ID:         docID,
		Filename:   filename,
		Filepath:   path,
		FileSize:   info.Size(),
		NumPages:   len(pages),
		ProductKey: req.ProductKey,
		SourceURL:  req.SourceURL,
		Pages:      pages,
	}
	if req.SourceURL != "" {
		doc.URLHash = domain.URLHash(req.SourceURL)
	}
	if existing != nil {
		doc.CreatedAt = existing.CreatedAt
	}
	if err := ix.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	chunks, err := ix.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("chunking %s: %w", filename, err)
	}
	if len(chunks) == 0 {
		return report, fmt.Errorf("%s: %w", filename, domain.ErrNoExtractableText)
	}
	report.Chunks = len(chunks)
	for _, c := range chunks {
		if estimated, _ := c.Metadata[domain.MetadataPageEstimated].(bool); estimated {
			report.EstimatedPages++
		}
	}
	if report.EstimatedPages > 0 {
		logger.Warn("%s: %d of %d chunks have estimated page numbers", filename, report.EstimatedPages, len(chunks))
	}

	if err := ix.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("saving chunks: %w", err)
	}

	vectors := ix.embedChunks(ctx, chunks)
	points := make([]driven.VectorPoint, 0, len(chunks))
	width := ix.embedder.Dimensions()
	for i, c := range chunks {
		vec := vectors[i]
		switch {
		case vec == nil:
			report.Rejected++
			continue
		case len(vec) != width:
			logger.Warn("Rejecting chunk %d of %s: %v (got %d, want %d)",
				c.Index, filename, domain.ErrDimensionMismatch, len(vec), width)
			report.Rejected++
			continue
		}
		points = append(points, driven.VectorPoint{
			ChunkID: c.ID,
			Vector:  vec,
			Passage: domain.Passage{
				DocumentID:   docID,
				DocumentName: filename,
				ChunkIndex:   c.Index,
				Content:      c.Content,
				PageNumber:   c.PageNumber,
				SourceFile:   filename,
				ProductKey:   req.ProductKey,
				PDFURL:       req.SourceURL,
				URLHash:      doc.URLHash,
			},
		})
	}

	if len(points) == 0 {
		return report, fmt.Errorf("%s: no passages embedded: %w", filename, domain.ErrEmbeddingUnavailable)
	}
	if err := ix.vectors.Upsert(ctx, points); err != nil {
		return report, fmt.Errorf("storing passages: %w", err)
	}
	report.Passages = len(points)

	now := time.Now()
	doc.Processed = true
	doc.NumChunks = len(chunks)
	doc.LastProcessed = &now
	if err := ix.docStore.SaveDocument(ctx, doc); err != nil {
		return report, fmt.Errorf("marking document processed: %w", err)
	}

	logger.Info("Indexed %s: %d chunks, %d passages, %d rejected", filename, report.Chunks, report.Passages, report.Rejected)
	return report, nil
}

// clear removes a document's chunks and passages.
func (ix *Indexer) clear(ctx context.Context, docID string) error {
	if err := ix.vectors.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}
	if err := ix.docStore.DeleteChunks(ctx, docID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// embedChunks embeds chunk contents with a bounded worker pool. The
// result is index-aligned with chunks; a nil entry failed to embed.
// A failed batch is retried chunk by chunk so one bad input only loses
// itself.
func (ix *Indexer) embedChunks(ctx context.Context, chunks []domain.Chunk) [][]float32 {
	vectors := make([][]float32, len(chunks))

	type batch struct{ start, end int }
	batches := make(chan batch)

	var wg sync.WaitGroup
	for range min(ix.workers, (len(chunks)+embedBatchSize-1)/embedBatchSize) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batches {
				texts := make([]string, 0, b.end-b.start)
				for _, c := range chunks[b.start:b.end] {
					texts = append(texts, c.Content)
				}

				out, err := ix.embedder.EmbedBatch(ctx, texts)
				if err == nil && len(out) == len(texts) {
					copy(vectors[b.start:b.end], out)
					continue
				}
				logger.Debug("Batch %d-%d failed (%v), embedding one by one", b.start, b.end, err)

				for i := b.start; i < b.end; i++ {
					vec, err := ix.embedder.Embed(ctx, chunks[i].Content)
					if err != nil {
						logger.Warn("Embedding chunk %d failed: %v", chunks[i].Index, err)
						continue
					}
					vectors[i] = vec
				}
			}
		}()
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		if ctx.Err() != nil {
			break
		}
		batches <- batch{start: start, end: min(start+embedBatchSize, len(chunks))}
	}
	close(batches)
	wg.Wait()

	return vectors
}
