package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/core/ports/driving"
	"github.com/custodia-labs/docq/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages stored documents and their lifecycle outside
// the ingestion pipeline.
type DocumentService struct {
	docStore   driven.DocumentStore
	indexStore driven.IndexStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore, indexStore driven.IndexStore) *DocumentService {
	return &DocumentService{
		docStore:   docStore,
		indexStore: indexStore,
	}
}

// List returns all documents, most recently uploaded first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetContent returns the extracted text of a document, reassembled from
// its stored chunks. Overlapping regions between adjacent chunks are
// repeated; this is a diagnostic view, not a reconstruction of the PDF.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return "", fmt.Errorf("get document: %w", err)
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("get chunks: %w", err)
	}

	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Text
	}
	return strings.Join(parts, "\n"), nil
}

// Delete removes the document, its chunks, its conversation history,
// and its vector index artifact. Chat history and chunks are removed by
// the store in one transaction; a missing index artifact is tolerated.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := s.indexStore.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}
