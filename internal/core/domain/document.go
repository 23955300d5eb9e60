package domain

import "time"

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	// StatusUploaded means the document is registered but processing has not started.
	StatusUploaded DocumentStatus = "uploaded"

	// StatusExtracting means page text is being pulled from the PDF.
	StatusExtracting DocumentStatus = "extracting"

	// StatusChunking means extracted text is being split into chunks.
	StatusChunking DocumentStatus = "chunking"

	// StatusEmbedding means chunk embeddings are being computed.
	StatusEmbedding DocumentStatus = "embedding"

	// StatusIndexed means the vector index is sealed and the document is queryable.
	StatusIndexed DocumentStatus = "indexed"

	// StatusFailed is terminal; FailureReason holds the diagnostic.
	StatusFailed DocumentStatus = "failed"
)

// Document represents an uploaded PDF and its ingestion state.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original upload name.
	Filename string

	// ByteSize is the size of the uploaded PDF in bytes.
	ByteSize int64

	// Status is the current ingestion pipeline stage.
	Status DocumentStatus

	// FailureReason is retained when Status is StatusFailed.
	FailureReason string

	// ChunkCount is the number of chunks produced by ingestion.
	ChunkCount int

	// EmbeddingModel is the model that produced this document's index vectors.
	EmbeddingModel string

	// UploadedAt is when the document was registered.
	UploadedAt time.Time

	// UpdatedAt is when the document state last changed.
	UpdatedAt time.Time
}

// Queryable reports whether the document can serve questions.
// Only fully indexed documents are queryable; anything earlier in the
// pipeline must be rejected rather than answered from a partial index.
func (d *Document) Queryable() bool {
	return d.Status == StatusIndexed
}

// Chunk is the unit of retrieval: a bounded segment of extracted text.
// Chunks are immutable after creation and never shared across documents.
type Chunk struct {
	// DocumentID links to the parent Document.
	DocumentID string

	// Seq is the ordinal position within the document, contiguous from 0.
	Seq int

	// Text is the chunk content.
	Text string

	// Page is the page number of the chunk's starting character (1-based).
	Page int

	// Embedding is the vector representation, cached once computed.
	Embedding []float32
}

// Page is one page of extracted PDF text. Text-less pages carry an
// empty Text, not an error.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted page text.
	Text string
}
