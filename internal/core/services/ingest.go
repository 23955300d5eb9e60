package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/core/ports/driving"
	"github.com/custodia-labs/docq/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the per-document ingestion pipeline:
// extraction, chunking, embedding, and index building.
//
// Ingestion of one document is strictly sequential; independent documents
// may be ingested concurrently. The index artifact is sealed before the
// document is marked indexed, so a query can never observe a partially
// populated index.
type IngestService struct {
	extractor  driven.Extractor
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	indexStore driven.IndexStore
	docStore   driven.DocumentStore

	// Tracks documents currently in the pipeline
	mu     sync.Mutex
	active map[string]struct{}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractor driven.Extractor,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	indexStore driven.IndexStore,
	docStore driven.DocumentStore,
) *IngestService {
	return &IngestService{
		extractor:  extractor,
		pipeline:   pipeline,
		embedder:   embedder,
		indexStore: indexStore,
		docStore:   docStore,
		active:     make(map[string]struct{}),
	}
}

// Ingest registers the PDF and runs the pipeline in the background.
func (s *IngestService) Ingest(ctx context.Context, documentID, filename string, pdf []byte) (string, error) {
	doc, err := s.register(ctx, documentID, filename, pdf)
	if err != nil {
		return "", err
	}

	go func() {
		// Detached from the caller: registration already succeeded and
		// progress is observable through Status
		if _, err := s.process(context.Background(), doc, pdf); err != nil {
			logger.Warn("ingestion of %s failed: %v", doc.ID, err)
		}
	}()

	return doc.ID, nil
}

// IngestSync runs the full pipeline inline and returns the chunk count.
func (s *IngestService) IngestSync(ctx context.Context, documentID, filename string, pdf []byte) (int, error) {
	doc, err := s.register(ctx, documentID, filename, pdf)
	if err != nil {
		return 0, err
	}
	return s.process(ctx, doc, pdf)
}

// Reprocess re-embeds stored chunk text and rebuilds the index.
// This is the recovery path after a lost index artifact or an embedding
// model change; it does not re-extract the PDF.
func (s *IngestService) Reprocess(ctx context.Context, documentID string) (int, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document: %w", err)
	}

	if !s.acquire(doc.ID) {
		return 0, domain.ErrIngestInProgress
	}
	defer s.release(doc.ID)

	chunks, err := s.docStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return 0, fmt.Errorf("get chunks: %w", err)
	}
	if len(chunks) == 0 && doc.Status != domain.StatusIndexed {
		return 0, fmt.Errorf("document %s has no stored chunks to reprocess: %w", doc.ID, domain.ErrInvalidInput)
	}

	logger.Info("Reprocessing document %s (%d chunks)", doc.ID, len(chunks))

	if err := s.setStage(ctx, doc, domain.StatusEmbedding); err != nil {
		return 0, err
	}

	if err := s.embedAndIndex(ctx, doc, chunks); err != nil {
		s.fail(ctx, doc, err)
		return 0, err
	}

	if err := s.complete(ctx, doc, len(chunks)); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Status returns the document's ingestion state.
func (s *IngestService) Status(ctx context.Context, documentID string) (*driving.IngestStatus, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &driving.IngestStatus{
		DocumentID:    doc.ID,
		Status:        doc.Status,
		FailureReason: doc.FailureReason,
		ChunkCount:    doc.ChunkCount,
	}, nil
}

// register validates input, allocates an ID when needed, and persists the
// document in the uploaded state.
func (s *IngestService) register(ctx context.Context, documentID, filename string, pdf []byte) (*domain.Document, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty PDF input: %w", domain.ErrInvalidInput)
	}
	if documentID == "" {
		documentID = uuid.New().String()
	}

	if !s.acquire(documentID) {
		return nil, domain.ErrIngestInProgress
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         documentID,
		Filename:   filename,
		ByteSize:   int64(len(pdf)),
		Status:     domain.StatusUploaded,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		s.release(documentID)
		return nil, fmt.Errorf("register document: %w", err)
	}

	return doc, nil
}

// process runs the pipeline stages for one registered document.
// The active slot acquired by register is released here.
func (s *IngestService) process(ctx context.Context, doc *domain.Document, pdf []byte) (int, error) {
	defer s.release(doc.ID)

	logger.Section("Ingest " + doc.ID)

	// 1. Extract page text
	if err := s.setStage(ctx, doc, domain.StatusExtracting); err != nil {
		return 0, err
	}
	pages, err := s.extractor.Extract(ctx, pdf)
	if err != nil {
		s.fail(ctx, doc, err)
		return 0, err
	}
	logger.Debug("extracted %d pages from %s", len(pages), doc.ID)

	// 2. Chunk
	if err := s.setStage(ctx, doc, domain.StatusChunking); err != nil {
		return 0, err
	}
	chunks, err := s.pipeline.Process(ctx, doc.ID, pages)
	if err != nil {
		err = fmt.Errorf("chunk document: %w", err)
		s.fail(ctx, doc, err)
		return 0, err
	}
	logger.Debug("chunked %s into %d chunks", doc.ID, len(chunks))

	// 3. Embed and build the index
	if err := s.setStage(ctx, doc, domain.StatusEmbedding); err != nil {
		return 0, err
	}
	if err := s.embedAndIndex(ctx, doc, chunks); err != nil {
		s.fail(ctx, doc, err)
		return 0, err
	}

	// 4. Mark indexed
	if err := s.complete(ctx, doc, len(chunks)); err != nil {
		return 0, err
	}

	logger.Info("Indexed document %s: %d chunks", doc.ID, len(chunks))
	return len(chunks), nil
}

// embedAndIndex computes chunk embeddings, persists the chunks, and
// seals the index artifact. A document with zero chunks still gets an
// empty artifact so its state is queryable-but-empty, not broken.
func (s *IngestService) embedAndIndex(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
	}

	if err := s.docStore.SaveChunks(ctx, doc.ID, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}

	entries := make([]driven.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.IndexEntry{ChunkSeq: chunk.Seq, Vector: chunk.Embedding}
	}

	if err := s.indexStore.Build(ctx, doc.ID, s.embedder.ModelName(), entries); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	return nil
}

// setStage persists a pipeline stage transition.
func (s *IngestService) setStage(ctx context.Context, doc *domain.Document, status domain.DocumentStatus) error {
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

// complete marks the document indexed with its final chunk count.
func (s *IngestService) complete(ctx context.Context, doc *domain.Document, chunkCount int) error {
	doc.Status = domain.StatusIndexed
	doc.FailureReason = ""
	doc.ChunkCount = chunkCount
	doc.EmbeddingModel = s.embedder.ModelName()
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("mark document indexed: %w", err)
	}
	return nil
}

// fail moves the document to the terminal failed state, retaining the
// reason for diagnostics. A failure aborts only this document's
// ingestion, never the process.
func (s *IngestService) fail(ctx context.Context, doc *domain.Document, cause error) {
	doc.Status = domain.StatusFailed
	doc.FailureReason = cause.Error()
	doc.UpdatedAt = time.Now().UTC()
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("failed to record failure for %s: %v", doc.ID, err)
	}
}

func (s *IngestService) acquire(documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.active[documentID]; busy {
		return false
	}
	s.active[documentID] = struct{}{}
	return true
}

func (s *IngestService) release(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, documentID)
}
