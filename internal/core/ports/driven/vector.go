package driven

import "context"

// IndexStore manages one vector index artifact per document on durable
// storage. An index is built once during ingestion, sealed, and then
// only read until the document is deleted or reprocessed.
//
// A missing or corrupt artifact surfaces as domain.ErrIndexUnavailable
// and is never rebuilt behind the caller's back; silent rebuilds would
// mask ingestion failures. An artifact records the embedding model that
// produced its vectors, and searching with a different model configured
// fails with domain.ErrEmbeddingModelMismatch.
type IndexStore interface {
	// Build creates the index for a document from its chunk vectors and
	// persists it atomically. Vectors are keyed by chunk sequence id.
	// Building replaces any existing artifact for the document.
	Build(ctx context.Context, documentID, model string, vectors []IndexEntry) error

	// Search finds up to k chunks nearest the query vector, filtered to
	// similarity >= minSimilarity, sorted descending by similarity with
	// equal scores ordered by ascending chunk sequence id.
	Search(ctx context.Context, documentID string, query []float32, k int, minSimilarity float64) ([]VectorHit, error)

	// Model returns the embedding model recorded in a document's artifact.
	Model(ctx context.Context, documentID string) (string, error)

	// Delete removes a document's artifact and frees its storage.
	// Deleting a document with no artifact is not an error.
	Delete(ctx context.Context, documentID string) error

	// Close releases resources.
	Close() error
}

// IndexEntry is one (chunk sequence id, vector) pair to index.
type IndexEntry struct {
	// ChunkSeq is the chunk sequence id within the document.
	ChunkSeq int

	// Vector is the chunk's embedding.
	Vector []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkSeq is the matched chunk's sequence id.
	ChunkSeq int

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
