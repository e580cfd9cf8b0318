// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// A find-and-retrieve request flows through the source chain, the PDF
// cache, the indexer, the retriever and the citation binder, in that
// order. Services are pure Go with no CGO.
package services
