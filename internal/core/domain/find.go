package domain

// MaxPDFsPerRequest caps how many label PDFs one request acquires.
const MaxPDFsPerRequest = 3

// FindRequest is one find-and-retrieve call.
type FindRequest struct {
	// ProductName is the product to look up.
	ProductName string

	// Question is the natural-language question about the product.
	Question string

	// ActiveIngredient is an optional hint.
	ActiveIngredient string

	// Limit is the number of passages to return (default 5).
	Limit int

	// ScoreThreshold overrides the default similarity threshold when
	// non-nil. An explicit zero disables the threshold.
	ScoreThreshold *float64

	// Force reprocesses acquired PDFs even if already indexed.
	Force bool
}

// FindResult is the structured outcome of a find-and-retrieve call.
// "No label found" is Success with no passages and a Message.
type FindResult struct {
	// Success is false only when the request could not be served at all.
	Success bool `json:"success"`

	// RequestID correlates log lines for this call.
	RequestID string `json:"request_id"`

	// ProductName echoes the requested product.
	ProductName string `json:"product_name"`

	// Passages are the ranked, cited passages.
	Passages []CitedPassage `json:"passages"`

	// PDFsDownloaded counts PDFs acquired (fresh or cached) for this call.
	PDFsDownloaded int `json:"pdfs_downloaded"`

	// PDFsIndexed counts PDFs chunked and indexed during this call.
	PDFsIndexed int `json:"pdfs_indexed"`

	// SourceUsed names the source that satisfied the chain.
	SourceUsed string `json:"source_used"`

	// SourcesTried lists every source queried, in order.
	SourcesTried []string `json:"sources_tried"`

	// UsedFallback is true if any passage came from the unscoped fallback.
	UsedFallback bool `json:"used_fallback"`

	// Labels are the validated discovery results.
	Labels []CandidateResult `json:"labels,omitempty"`

	// Answer is the search service's summary, if any.
	Answer string `json:"answer,omitempty"`

	// Message explains an empty result.
	Message string `json:"message,omitempty"`

	// Errors lists stage-local failures that reduced the result.
	Errors []string `json:"errors,omitempty"`
}

// CitedPassage is the caller-facing view of a retrieved passage.
type CitedPassage struct {
	Content          string           `json:"content"`
	PageNumber       int              `json:"page_number"`
	SourceFile       string           `json:"source_file"`
	PDFURL           string           `json:"pdf_url"`
	Score            float64          `json:"score"`
	DocumentID       string           `json:"document_id"`
	ChunkIndex       int              `json:"chunk_index"`
	ViaFallback      bool             `json:"via_fallback"`
	CitationStrategy CitationStrategy `json:"citation_strategy"`
	PageEstimated    bool             `json:"page_estimated,omitempty"`
}

// NewCitedPassage flattens a retrieved passage for callers. The page
// number is always at least 1.
func NewCitedPassage(r RetrievedPassage) CitedPassage {
	page, estimated := r.Passage.PageNumber, r.PageEstimated
	if page <= 0 {
		page, estimated = EstimatePage(r.Passage.ChunkIndex), true
	}
	return CitedPassage{
		Content:          r.Passage.Content,
		PageNumber:       page,
		SourceFile:       r.Passage.SourceFile,
		PDFURL:           r.CitationURL,
		Score:            r.Score,
		DocumentID:       r.Passage.DocumentID,
		ChunkIndex:       r.Passage.ChunkIndex,
		ViaFallback:      r.ViaFallback,
		CitationStrategy: r.CitationStrategy,
		PageEstimated:    estimated,
	}
}
