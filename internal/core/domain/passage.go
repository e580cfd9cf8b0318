package domain

// ChunksPerPage is the assumed chunk density used when a page number has
// to be estimated from a chunk's position.
const ChunksPerPage = 3

// EstimatePage returns the 1-based page a chunk most likely sits on.
func EstimatePage(chunkIndex int) int {
	if chunkIndex < 0 {
		return 1
	}
	return chunkIndex/ChunksPerPage + 1
}

// Passage is the vector-store payload for one indexed chunk.
type Passage struct {
	// DocumentID links to the Document the chunk belongs to.
	DocumentID string `json:"document_id"`

	// DocumentName is the human-readable document name (the filename).
	DocumentName string `json:"document_name"`

	// ChunkIndex is the chunk's ordinal position within the document.
	ChunkIndex int `json:"chunk_index"`

	// Content is the full passage text.
	Content string `json:"content"`

	// PageNumber is the 1-based source page.
	PageNumber int `json:"page_number"`

	// SourceFile is the PDF filename.
	SourceFile string `json:"source_file"`

	// ProductKey is the product scope key.
	ProductKey string `json:"product_name"`

	// PDFURL is the canonical downloadable URL, when known at index time.
	PDFURL string `json:"pdf_url"`

	// URLHash is the short hash of PDFURL.
	URLHash string `json:"url_hash"`
}

// RetrievedPassage is a scored passage returned by the retriever,
// annotated with a resolved citation URL.
type RetrievedPassage struct {
	// ID is the vector-store point id.
	ID string `json:"id"`

	// Passage is the stored payload.
	Passage Passage `json:"passage"`

	// Score is the similarity score (0-1).
	Score float64 `json:"score"`

	// ViaFallback is true if the passage came from the unscoped fallback
	// query rather than a product-scoped one.
	ViaFallback bool `json:"via_fallback"`

	// Boosted is true if the passage was promoted by the topic-boost pass.
	Boosted bool `json:"boosted"`

	// CitationURL is the resolved downloadable URL.
	CitationURL string `json:"citation_url"`

	// CitationStrategy records how CitationURL was resolved.
	CitationStrategy CitationStrategy `json:"citation_strategy"`

	// PageEstimated is true if the stored page number was missing and
	// Passage.PageNumber was estimated from ChunkIndex.
	PageEstimated bool `json:"page_estimated,omitempty"`
}
