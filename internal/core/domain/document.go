package domain

import (
	"crypto/md5" //nolint:gosec // identifiers, not security
	"encoding/hex"
	"fmt"
	"time"
)

// Document is the durable record of an acquired label PDF.
type Document struct {
	// ID is derived from Filepath (see DocumentIDForPath).
	ID string

	// Filename is the base name of the PDF.
	Filename string

	// Filepath is the location of the PDF on disk.
	Filepath string

	// FileSize is the PDF size in bytes.
	FileSize int64

	// NumPages is the physical page count of the PDF.
	NumPages int

	// NumChunks is the number of chunks produced on the last run.
	NumChunks int

	// ProductKey is the scope key every passage of this document carries.
	ProductKey string

	// SourceURL is the URL the PDF was downloaded from, if any.
	SourceURL string

	// URLHash is the short hash of SourceURL.
	URLHash string

	// Processed is true once chunks and passages have both been written.
	Processed bool

	// Pages holds extracted text per physical page while the document is
	// being chunked. Index 0 is page 1. It is not persisted.
	Pages []string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first recorded.
	CreatedAt time.Time

	// LastProcessed is when chunking and indexing last completed.
	LastProcessed *time.Time
}

// Chunk is a page-tagged passage within a document.
type Chunk struct {
	// ID is derived from DocumentID and Index (see ChunkID).
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document.
	Index int

	// Content is the passage text.
	Content string

	// PageNumber is the 1-based physical page the passage came from.
	PageNumber int

	// CharCount is the length of Content in characters.
	CharCount int

	// TokenCount is an estimate of Content's token length.
	TokenCount int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// charsPerToken approximates tokenizer output for English label text.
const charsPerToken = 4

// MetadataPageEstimated is set to true on chunks whose page number was
// estimated from their position rather than read from the PDF.
const MetadataPageEstimated = "page_estimated"

// DocumentIDForPath returns the deterministic document id for a file path.
func DocumentIDForPath(path string) string {
	sum := md5.Sum([]byte(path)) //nolint:gosec // identifiers, not security
	return hex.EncodeToString(sum[:])
}

// ChunkID returns the deterministic chunk id for a document and index.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_%d", documentID, index)
}

// EstimateTokens returns the approximate token count of text.
func EstimateTokens(text string) int {
	return len([]rune(text)) / charsPerToken
}

// TruncateToTokens cuts text so its estimated token count does not exceed
// maxTokens. Cuts fall on rune boundaries. A non-positive limit keeps text.
func TruncateToTokens(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	maxRunes := maxTokens * charsPerToken
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
