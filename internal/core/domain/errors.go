package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates a required external service is missing
	// credentials or an endpoint. It is fatal at startup, never per request.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured
	// or could not produce a vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates the web search service is not configured.
	ErrSearchUnavailable = errors.New("web search unavailable")

	// ErrVectorIndexUnavailable indicates the vector store is not configured
	// or unreachable.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrRetriesExhausted indicates a retryable call failed on every attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// Acquisition Errors.

	// ErrDownloadFailed indicates a PDF could not be fetched.
	ErrDownloadFailed = errors.New("download failed")

	// ErrDownloadTooLarge indicates a PDF exceeded the maximum byte size.
	ErrDownloadTooLarge = errors.New("download exceeds maximum size")

	// ErrEmptyDownload indicates a PDF download produced zero bytes.
	ErrEmptyDownload = errors.New("downloaded file is empty")

	// Integrity Errors.

	// ErrDimensionMismatch indicates an embedding does not match the vector store width.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoExtractableText indicates a PDF yielded no text on any page.
	// Scanned or image-only labels are not OCR'd.
	ErrNoExtractableText = errors.New("no extractable text")
)
