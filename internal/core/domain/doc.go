// Package domain defines the core business entities for labelrag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ProductQuery: A normalised product name used as the scoping key
//   - Source: An ordered, domain-filtered place to look for labels
//   - CandidateResult: One web search hit returned by a Source
//   - CachedPDF: A label PDF stored once on disk per source URL
//   - Document: The durable record of an acquired PDF
//   - Chunk: A page-tagged passage within a document
//   - Passage: The vector-store counterpart of a Chunk
//   - RetrievedPassage: A scored passage with its resolved citation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
