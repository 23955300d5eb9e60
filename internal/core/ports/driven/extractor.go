package driven

import (
	"context"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// Extractor converts a PDF byte stream into ordered page text.
// Text-less pages (scanned images) yield empty strings, not errors;
// no OCR is attempted. Implementations must not retain the input.
type Extractor interface {
	// Extract returns the pages of the PDF in document order.
	// Corrupt or encrypted input fails with domain.ErrExtractionFailed.
	Extract(ctx context.Context, pdf []byte) ([]domain.Page, error)
}
