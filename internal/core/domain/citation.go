package domain

// CitationStrategy identifies how a retrieved passage was bound to its
// downloadable URL. Strategies are tried in the order of
// AllCitationStrategies and the first match wins.
type CitationStrategy string

// Available citation strategies.
const (
	// CitationUnresolved means no strategy produced a URL.
	CitationUnresolved CitationStrategy = "unresolved"

	// CitationPassageMetadata uses the URL stored on the passage payload.
	CitationPassageMetadata CitationStrategy = "passage_metadata"

	// CitationURLHash looks the payload URL hash up in the request's cached PDFs.
	CitationURLHash CitationStrategy = "url_hash"

	// CitationDocumentID recomputes each cached PDF's document id and compares.
	CitationDocumentID CitationStrategy = "document_id"

	// CitationFilename matches the payload source file against cached filenames.
	CitationFilename CitationStrategy = "filename"

	// CitationProductFilename matches the product name inside cached filenames.
	CitationProductFilename CitationStrategy = "product_filename"

	// CitationDiscoveryFallback attaches the first discovery result URL.
	CitationDiscoveryFallback CitationStrategy = "discovery_fallback"
)

// AllCitationStrategies returns the resolution order.
func AllCitationStrategies() []CitationStrategy {
	return []CitationStrategy{
		CitationPassageMetadata,
		CitationURLHash,
		CitationDocumentID,
		CitationFilename,
		CitationProductFilename,
		CitationDiscoveryFallback,
	}
}

// IsValid returns true if the strategy is recognised.
func (c CitationStrategy) IsValid() bool {
	switch c {
	case CitationUnresolved, CitationPassageMetadata, CitationURLHash, CitationDocumentID,
		CitationFilename, CitationProductFilename, CitationDiscoveryFallback:
		return true
	default:
		return false
	}
}

// IsLastResort returns true for strategies that indicate a metadata
// linkage gap rather than a precise match.
func (c CitationStrategy) IsLastResort() bool {
	return c == CitationDiscoveryFallback || c == CitationUnresolved
}

// String returns the string representation.
func (c CitationStrategy) String() string {
	return string(c)
}

// Description returns a human-readable description of the strategy.
func (c CitationStrategy) Description() string {
	switch c {
	case CitationPassageMetadata:
		return "URL stored with the passage"
	case CitationURLHash:
		return "URL hash matched a downloaded PDF"
	case CitationDocumentID:
		return "Document id matched a downloaded PDF"
	case CitationFilename:
		return "Filename matched a downloaded PDF"
	case CitationProductFilename:
		return "Product name matched a downloaded filename"
	case CitationDiscoveryFallback:
		return "First discovery result (approximate)"
	case CitationUnresolved:
		return "No citation URL"
	default:
		return unknownDescription
	}
}
