package driving

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// IngestService coordinates the ingestion pipeline:
// extraction, chunking, embedding, and index building.
type IngestService interface {
	// Ingest registers the PDF under documentID and runs the pipeline in
	// the background. It returns once the document is registered; progress
	// is visible through Status. An empty documentID allocates a new one,
	// returned in either case.
	Ingest(ctx context.Context, documentID, filename string, pdf []byte) (string, error)

	// IngestSync runs the full pipeline inline and returns the chunk count.
	IngestSync(ctx context.Context, documentID, filename string, pdf []byte) (int, error)

	// Reprocess re-runs chunk embedding and index building from the stored
	// chunk text, without re-extraction. This is the recovery path after a
	// lost index artifact or an embedding model change.
	Reprocess(ctx context.Context, documentID string) (int, error)

	// Status returns the document's ingestion state.
	Status(ctx context.Context, documentID string) (*IngestStatus, error)
}

// IngestStatus is a cheap state check for a document.
type IngestStatus struct {
	// DocumentID identifies the document.
	DocumentID string

	// Status is the current pipeline stage.
	Status domain.DocumentStatus

	// FailureReason is set when Status is failed.
	FailureReason string

	// ChunkCount is the number of chunks once known.
	ChunkCount int
}
