package driven

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// PostProcessor processes extracted page text to produce chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the document's pages and the chunks so far.
	// If the processor creates chunks (e.g. the chunker), it receives nil
	// chunks and returns new ones. If it modifies chunks, it receives and
	// returns them.
	Process(ctx context.Context, documentID string, pages []domain.Page, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the pages through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, documentID string, pages []domain.Page) ([]domain.Chunk, error)
}
