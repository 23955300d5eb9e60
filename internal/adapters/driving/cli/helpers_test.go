package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driving"
)

// setupTestServices swaps in stub services and returns a cleanup that
// restores the previous ones.
func setupTestServices() func() {
	oldIngest := ingestService
	oldChat := chatService
	oldDocument := documentService

	ingestService = &stubIngestService{}
	chatService = &stubChatService{}
	documentService = &stubDocumentService{}

	return func() {
		ingestService = oldIngest
		chatService = oldChat
		documentService = oldDocument
	}
}

type stubIngestService struct {
	ingestErr error
}

func (s *stubIngestService) Ingest(_ context.Context, documentID, _ string, _ []byte) (string, error) {
	if s.ingestErr != nil {
		return "", s.ingestErr
	}
	if documentID == "" {
		documentID = "doc-generated"
	}
	return documentID, nil
}

func (s *stubIngestService) IngestSync(_ context.Context, _, _ string, _ []byte) (int, error) {
	if s.ingestErr != nil {
		return 0, s.ingestErr
	}
	return 3, nil
}

func (s *stubIngestService) Reprocess(_ context.Context, _ string) (int, error) {
	return 3, nil
}

func (s *stubIngestService) Status(_ context.Context, documentID string) (*driving.IngestStatus, error) {
	if documentID == "missing" {
		return nil, domain.ErrNotFound
	}
	return &driving.IngestStatus{
		DocumentID: documentID,
		Status:     domain.StatusIndexed,
		ChunkCount: 3,
	}, nil
}

type stubChatService struct {
	askErr error
}

func (s *stubChatService) Ask(_ context.Context, documentID, question string, _ driving.AskOptions) (*domain.Answer, error) {
	if s.askErr != nil {
		return nil, s.askErr
	}
	return &domain.Answer{
		Text:       "Returns are accepted within 30 days.",
		Sources:    []domain.Source{{ChunkSeq: 0, Similarity: 0.9, Page: 1}},
		ChunksUsed: 1,
		Model:      "test-llm",
	}, nil
}

func (s *stubChatService) History(_ context.Context, _ string, _ int) ([]domain.ConversationTurn, error) {
	return []domain.ConversationTurn{
		{
			ID:         "turn-1",
			DocumentID: "doc-1",
			Question:   "What is the return policy?",
			Answer:     "Returns are accepted within 30 days.",
			CreatedAt:  time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC),
		},
	}, nil
}

func (s *stubChatService) ClearHistory(_ context.Context, _ string) error {
	return nil
}

type stubDocumentService struct{}

func (s *stubDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return []domain.Document{
		{
			ID:         "doc-1",
			Filename:   "handbook.pdf",
			Status:     domain.StatusIndexed,
			ChunkCount: 3,
			UploadedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		},
	}, nil
}

func (s *stubDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	if documentID == "missing" {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: documentID, Filename: "handbook.pdf", Status: domain.StatusIndexed}, nil
}

func (s *stubDocumentService) GetContent(_ context.Context, documentID string) (string, error) {
	if documentID == "missing" {
		return "", domain.ErrNotFound
	}
	return "Extracted document text.", nil
}

func (s *stubDocumentService) Delete(_ context.Context, documentID string) error {
	if documentID == "missing" {
		return domain.ErrNotFound
	}
	return nil
}
