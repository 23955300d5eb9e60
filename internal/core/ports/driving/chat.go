package driving

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// DefaultMaxChunks caps how many retrieved chunks feed the prompt.
const DefaultMaxChunks = 5

// DefaultSimilarityThreshold is the minimum similarity for a chunk to be
// used. Deliberately low; tune per corpus rather than assuming it is
// optimal.
const DefaultSimilarityThreshold = 0.1

// DefaultHistoryLimit bounds how many turns a history listing returns
// when the caller does not choose a limit.
const DefaultHistoryLimit = 50

// ChatService answers questions strictly from one document's content.
type ChatService interface {
	// Ask retrieves relevant chunks and composes a grounded answer.
	// The document must be fully indexed: querying earlier in the pipeline
	// fails with domain.ErrDocumentNotReady, and a failed document with
	// domain.ErrDocumentFailed. Generation respects ctx cancellation.
	Ask(ctx context.Context, documentID, question string, opts AskOptions) (*domain.Answer, error)

	// History returns up to limit persisted turns, oldest first.
	History(ctx context.Context, documentID string, limit int) ([]domain.ConversationTurn, error)

	// ClearHistory atomically removes all turns for a document.
	// Chunks and the vector index are left untouched.
	ClearHistory(ctx context.Context, documentID string) error
}

// AskOptions tunes retrieval per request.
type AskOptions struct {
	// MaxChunks caps the number of retrieved chunks. Zero means
	// DefaultMaxChunks.
	MaxChunks int

	// SimilarityThreshold filters weak matches. Zero means
	// DefaultSimilarityThreshold; pass a negative value to disable
	// filtering entirely.
	SimilarityThreshold float64
}
