package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/labelrag/internal/core/domain"
	"github.com/custodia-labs/labelrag/internal/core/ports/driven"
	"github.com/custodia-labs/labelrag/internal/core/ports/driving"
	"github.com/custodia-labs/labelrag/internal/logger"
)

// Ensure LabelService implements the interface.
var _ driving.LabelService = (*LabelService)(nil)

// noPassagesMessage explains an empty retrieval after labels were found.
const noPassagesMessage = "No passages in the indexed labels matched the question"

// LabelService runs discovery, acquisition, indexing, retrieval and
// citation for one question about one product.
type LabelService struct {
	chain     *SourceChainSearcher
	cache     driven.PDFCache
	resolver  driven.LinkResolver
	indexer   *Indexer
	retriever *Retriever

	mu       sync.RWMutex
	defaults domain.RetrievalOptions
}

// NewLabelService creates the pipeline. The resolver is optional; without
// it HTML results are never followed.
func NewLabelService(
	chain *SourceChainSearcher,
	cache driven.PDFCache,
	resolver driven.LinkResolver,
	indexer *Indexer,
	retriever *Retriever,
) *LabelService {
	return &LabelService{
		chain:     chain,
		cache:     cache,
		resolver:  resolver,
		indexer:   indexer,
		retriever: retriever,
	}
}

// SetRetrievalDefaults overrides the limit and threshold used when a
// request leaves them unset.
func (s *LabelService) SetRetrievalDefaults(opts domain.RetrievalOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = opts
}

func (s *LabelService) retrievalDefaults() domain.RetrievalOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// FindAndRetrieve answers req. Failures of individual sources, downloads
// or documents are recorded in the result's Errors and do not fail the
// call. Invalid input and a failed question embedding do.
func (s *LabelService) FindAndRetrieve(ctx context.Context, req domain.FindRequest) (*domain.FindResult, error) {
	requestID := uuid.NewString()
	rlog := logger.ForRequest(requestID)
	logger.Section(fmt.Sprintf("Find and retrieve [%s]", requestID))

	product, err := domain.NewProductQuery(req.ProductName, req.ActiveIngredient)
	if err != nil {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidInput)
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	rlog.Info("Product %q, question %q", product.CleanName(), question)

	result := &domain.FindResult{
		Success:     true,
		RequestID:   requestID,
		ProductName: product.Name,
		Passages:    []domain.CitedPassage{},
	}

	chain := s.chain.Search(ctx, product, domain.MaxPDFsPerRequest)
	result.SourcesTried = chain.SourcesTried
	result.SourceUsed = chain.SourceUsed
	result.Labels = chain.Results
	result.Answer = chain.Answer
	if !chain.Found() {
		result.Message = chain.Message
		return result, nil
	}

	logger.Section("Acquisition")
	pdfs := s.acquire(ctx, rlog, product, req.Force, chain.Results, result)
	if len(pdfs) == 0 && len(result.Errors) == 0 {
		result.Message = fmt.Sprintf("No PDF links found for %q via %s", product.CleanName(), chain.SourceUsed)
		rlog.Warn("%s", result.Message)
		return result, nil
	}

	defaults := s.retrievalDefaults()
	opts := domain.RetrievalOptions{Limit: req.Limit, ScoreThreshold: defaults.ScoreThreshold, NoThreshold: defaults.NoThreshold}
	if opts.Limit <= 0 {
		opts.Limit = defaults.Limit
	}
	if req.ScoreThreshold != nil {
		opts.ScoreThreshold = *req.ScoreThreshold
		opts.NoThreshold = *req.ScoreThreshold <= 0
	}

	passages, err := s.retriever.Retrieve(ctx, question, product, opts)
	if err != nil {
		return nil, err
	}

	passages = BindCitations(passages, CitationContext{
		ProductName: product.CleanName(),
		CachedPDFs:  pdfs,
		Candidates:  chain.Results,
	})
	for _, p := range passages {
		result.Passages = append(result.Passages, domain.NewCitedPassage(p))
		if p.ViaFallback {
			result.UsedFallback = true
		}
	}

	if len(passages) == 0 {
		result.Message = noPassagesMessage
		if result.PDFsIndexed > 0 {
			rlog.Warn("Indexed %d PDFs but retrieval returned no passages", result.PDFsIndexed)
		}
	}
	rlog.Info("Returning %d passages (downloaded %d, indexed %d)",
		len(result.Passages), result.PDFsDownloaded, result.PDFsIndexed)
	return result, nil
}

// acquire downloads and indexes up to domain.MaxPDFsPerRequest label
// PDFs. Direct PDF links are processed first; landing pages are resolved
// only while fewer than the maximum have been acquired. Failures are
// recorded on result.
func (s *LabelService) acquire(
	ctx context.Context, rlog logger.Request, product domain.ProductQuery, force bool,
	results []domain.CandidateResult, result *domain.FindResult,
) []domain.CachedPDF {
	var pdfs []domain.CachedPDF
	seen := make(map[string]bool)

	process := func(url string) {
		if url == "" || seen[url] || len(pdfs) >= domain.MaxPDFsPerRequest {
			return
		}
		seen[url] = true

		pdf, err := s.cache.Acquire(ctx, url, product.CleanName())
		if err != nil {
			rlog.Warn("Download %s failed: %v", url, err)
			result.Errors = append(result.Errors, fmt.Sprintf("download %s: %v", url, err))
			return
		}
		pdfs = append(pdfs, *pdf)
		result.PDFsDownloaded++

		report, err := s.indexer.Index(ctx, IndexRequest{
			Path:       pdf.Path,
			ProductKey: product.ScopeKey(),
			SourceURL:  pdf.URL,
			Force:      force,
		})
		if err != nil {
			rlog.Warn("Indexing %s failed: %v", pdf.Filename, err)
			result.Errors = append(result.Errors, fmt.Sprintf("index %s: %v", pdf.Filename, err))
			return
		}
		if !report.Skipped {
			result.PDFsIndexed++
		}
	}

	for _, r := range results {
		if r.IsDirectPDF() {
			process(r.URL)
		}
	}
	if s.resolver == nil {
		return pdfs
	}

	for _, r := range results {
		if len(pdfs) >= domain.MaxPDFsPerRequest || ctx.Err() != nil {
			break
		}
		if r.IsDirectPDF() {
			continue
		}
		links, err := s.resolver.ResolvePDFLinks(ctx, r.URL)
		if err != nil {
			rlog.Warn("Resolving landing page %s: %v", r.URL, err)
			continue
		}
		rlog.Debug("Landing page %s has %d PDF links", r.URL, len(links))
		for _, link := range links {
			process(link)
		}
	}
	return pdfs
}
