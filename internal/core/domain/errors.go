package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion Errors.

	// ErrExtractionFailed indicates the PDF could not be read
	// (corrupt or encrypted input). Fatal to that document's ingestion.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrIngestInProgress indicates the document is already being processed.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// Query Errors.

	// ErrDocumentNotReady indicates a query against a document whose index
	// is not yet complete. Recoverable; the caller may retry later.
	ErrDocumentNotReady = errors.New("document not ready")

	// ErrDocumentFailed indicates a query against a document whose
	// ingestion failed. Requires reprocessing, not a retry.
	ErrDocumentFailed = errors.New("document processing failed")

	// ErrIndexUnavailable indicates the on-disk vector index is missing or
	// corrupt. It is never rebuilt silently; reprocess the document.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrEmbeddingModelMismatch indicates the index was built with a
	// different embedding model than currently configured.
	ErrEmbeddingModelMismatch = errors.New("embedding model mismatch")

	// ErrGenerationFailed indicates the language model backend failed or
	// timed out. Recoverable at the turn level; index and history are
	// left untouched.
	ErrGenerationFailed = errors.New("answer generation failed")

	// Service Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)
