package driving

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// DocumentService manages stored documents.
type DocumentService interface {
	// List returns all documents, most recently uploaded first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the concatenated chunk text of a document.
	GetContent(ctx context.Context, documentID string) (string, error)

	// Delete removes the document, its chunks, its conversation history,
	// and its vector index artifact.
	Delete(ctx context.Context, documentID string) error
}
