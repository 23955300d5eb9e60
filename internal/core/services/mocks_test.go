package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
)

// Shared mock implementations of the driven ports, used by the service
// tests in this package. Storage ports use the real in-memory stores
// from adapters/driven/storage/memory instead of mocks.

// mockExtractor implements driven.Extractor.
type mockExtractor struct {
	pages []domain.Page
	err   error
	calls int
}

func (m *mockExtractor) Extract(_ context.Context, _ []byte) ([]domain.Page, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.pages, nil
}

// mockPipeline implements driven.PostProcessorPipeline.
type mockPipeline struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockPipeline) Process(_ context.Context, documentID string, _ []domain.Page) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	for i := range out {
		out[i].DocumentID = documentID
	}
	return out, nil
}

// mockEmbedder implements driven.EmbeddingService.
type mockEmbedder struct {
	model    string
	embedErr error
	batchErr error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = []float32{float32(len(text)), 1}
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int { return 2 }

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndexStore implements driven.IndexStore with in-memory artifacts.
type mockIndexStore struct {
	mu       sync.Mutex
	built    map[string][]driven.IndexEntry
	models   map[string]string
	hits     []driven.VectorHit
	buildErr error
	srchErr  error
	modelErr error
	deleted  []string
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{
		built:  make(map[string][]driven.IndexEntry),
		models: make(map[string]string),
	}
}

func (m *mockIndexStore) Build(_ context.Context, documentID, model string, vectors []driven.IndexEntry) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.built[documentID] = vectors
	m.models[documentID] = model
	return nil
}

func (m *mockIndexStore) Search(_ context.Context, documentID string, _ []float32, k int, minSimilarity float64) ([]driven.VectorHit, error) {
	if m.srchErr != nil {
		return nil, m.srchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.built[documentID]; !ok {
		return nil, domain.ErrIndexUnavailable
	}
	var hits []driven.VectorHit
	for _, hit := range m.hits {
		if hit.Similarity >= minSimilarity {
			hits = append(hits, hit)
		}
	}
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *mockIndexStore) Model(_ context.Context, documentID string) (string, error) {
	if m.modelErr != nil {
		return "", m.modelErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.models[documentID]
	if !ok {
		return "", domain.ErrIndexUnavailable
	}
	return model, nil
}

func (m *mockIndexStore) Delete(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.built, documentID)
	delete(m.models, documentID)
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockIndexStore) Close() error { return nil }

// mockLLM implements driven.LLMService and records the last chat call.
type mockLLM struct {
	response string
	chatErr  error
	calls    int
	lastMsgs []driven.ChatMessage
	lastOpts driven.ChatOptions
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.lastMsgs = messages
	m.lastOpts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	text, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("prompt %s: %w", name, domain.ErrNotFound)
	}
	return text, nil
}

func (m *mockPromptStore) Reload() {}
