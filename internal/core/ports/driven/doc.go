// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for find-and-retrieve to function:
//
//   - WebSearch: Domain-filtered web search used by the source chain
//   - PDFCache: Downloads label PDFs once and stores them on disk
//   - PageExtractor: Extracts text per physical page from a PDF
//   - EmbeddingService: Generates vector embeddings
//   - VectorStore: Stores passages and answers scoped similarity queries
//   - DocumentStore: Document and chunk persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SearchCache: Caches web search responses. Without it every source query hits the network.
//   - LinkResolver: Finds PDF links on landing pages. Without it only direct PDF results are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
