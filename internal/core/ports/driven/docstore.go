package driven

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, replacing any existing set.
	SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by sequence id.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by document and sequence id.
	GetChunk(ctx context.Context, documentID string, seq int) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents, most recently uploaded first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// ChatStore persists conversation turns. Turns are append-only per
// document; ClearHistory is the only bulk removal.
type ChatStore interface {
	// SaveTurn appends a completed turn to a document's history.
	SaveTurn(ctx context.Context, turn *domain.ConversationTurn) error

	// ListTurns returns up to limit turns for a document, oldest first.
	// A limit <= 0 returns all turns.
	ListTurns(ctx context.Context, documentID string, limit int) ([]domain.ConversationTurn, error)

	// RecentTurns returns the latest n turns for a document, oldest first.
	RecentTurns(ctx context.Context, documentID string, n int) ([]domain.ConversationTurn, error)

	// ClearHistory removes all turns for a document in one atomic operation.
	ClearHistory(ctx context.Context, documentID string) error
}
