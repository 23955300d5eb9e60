package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/core/ports/driving"
	"github.com/custodia-labs/docq/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

const (
	// At most this many retrieved chunks are placed in the prompt,
	// regardless of how many the search returned.
	maxContextChunks = 3

	// Soft cap on the total excerpt text in the prompt.
	maxContextChars = 2500

	// Conversation history folded into the system prompt.
	historyTurns      = 2
	historyTruncation = 200

	// Generation parameters for the answer model.
	answerMaxTokens     = 2048
	answerTemperature   = 0.7
	answerContextWindow = 4096
)

// Fallback when the prompt store is absent or cannot load the template.
const defaultNoContextAnswer = "I could not find information relevant to your question in the document."

const defaultAnswerSystem = `You are a document question answering assistant.
Answer questions using ONLY the source excerpts provided below.
If the excerpts do not contain the answer, say the information is not found in the document.
Cite the page number of the excerpts you used.`

// ChatService answers questions about an indexed document using
// retrieval over its vector index and a local LLM.
type ChatService struct {
	docStore    driven.DocumentStore
	chatStore   driven.ChatStore
	embedder    driven.EmbeddingService
	llm         driven.LLMService
	indexStore  driven.IndexStore
	promptStore driven.PromptStore // optional
}

// NewChatService creates a new chat service. promptStore may be nil, in
// which case built-in prompt text is used.
func NewChatService(
	docStore driven.DocumentStore,
	chatStore driven.ChatStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	indexStore driven.IndexStore,
	promptStore driven.PromptStore,
) *ChatService {
	return &ChatService{
		docStore:    docStore,
		chatStore:   chatStore,
		embedder:    embedder,
		llm:         llm,
		indexStore:  indexStore,
		promptStore: promptStore,
	}
}

// Ask answers a question grounded in the document's indexed chunks.
func (s *ChatService) Ask(ctx context.Context, documentID, question string, opts driving.AskOptions) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("empty question: %w", domain.ErrInvalidInput)
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.Status == domain.StatusFailed {
		return nil, fmt.Errorf("document %s failed ingestion (%s): %w", doc.ID, doc.FailureReason, domain.ErrDocumentFailed)
	}
	if !doc.Queryable() {
		return nil, fmt.Errorf("document %s is %s: %w", doc.ID, doc.Status, domain.ErrDocumentNotReady)
	}

	indexModel, err := s.indexStore.Model(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("read index model: %w", err)
	}
	if indexModel != s.embedder.ModelName() {
		return nil, fmt.Errorf("index built with %s, current embedding model is %s: %w",
			indexModel, s.embedder.ModelName(), domain.ErrEmbeddingModelMismatch)
	}

	maxChunks := opts.MaxChunks
	if maxChunks <= 0 {
		maxChunks = driving.DefaultMaxChunks
	}
	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = driving.DefaultSimilarityThreshold
	}
	if threshold < 0 {
		threshold = 0
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.indexStore.Search(ctx, doc.ID, queryVec, maxChunks, threshold)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	if len(hits) == 0 {
		// Nothing relevant retrieved: answer with the refusal text and
		// skip the LLM entirely. The turn is still a successful one.
		answer := &domain.Answer{
			Text:  s.loadPrompt(driven.PromptNoContext, defaultNoContextAnswer),
			Model: s.llm.ModelName(),
		}
		if err := s.saveTurn(ctx, doc.ID, question, answer); err != nil {
			return nil, err
		}
		return answer, nil
	}

	sources, excerpts, err := s.hydrate(ctx, doc.ID, hits)
	if err != nil {
		return nil, err
	}

	system := s.buildSystemPrompt(ctx, doc, excerpts)

	logger.Debug("asking %s with %d excerpts", s.llm.ModelName(), len(excerpts))

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: question},
	}
	text, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:     answerMaxTokens,
		Temperature:   answerTemperature,
		ContextWindow: answerContextWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	answer := &domain.Answer{
		Text:       strings.TrimSpace(text),
		Sources:    sources,
		ChunksUsed: len(excerpts),
		Model:      s.llm.ModelName(),
	}
	if err := s.saveTurn(ctx, doc.ID, question, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// History returns the document's conversation turns, oldest first.
func (s *ChatService) History(ctx context.Context, documentID string, limit int) ([]domain.ConversationTurn, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	turns, err := s.chatStore.ListTurns(ctx, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	return turns, nil
}

// ClearHistory removes the document's conversation turns. Chunks and the
// vector index are untouched.
func (s *ChatService) ClearHistory(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	if err := s.chatStore.ClearHistory(ctx, documentID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// excerpt is a chunk selected for the prompt.
type excerpt struct {
	page int
	text string
}

// hydrate loads chunk text for the search hits and selects the excerpts
// that fit the context budget. All hits become cited sources; only the
// budgeted prefix goes into the prompt.
func (s *ChatService) hydrate(ctx context.Context, documentID string, hits []driven.VectorHit) ([]domain.Source, []excerpt, error) {
	sources := make([]domain.Source, 0, len(hits))
	excerpts := make([]excerpt, 0, maxContextChunks)
	budget := maxContextChars

	for _, hit := range hits {
		chunk, err := s.docStore.GetChunk(ctx, documentID, hit.ChunkSeq)
		if err != nil {
			return nil, nil, fmt.Errorf("get chunk %d: %w", hit.ChunkSeq, err)
		}

		sources = append(sources, domain.Source{
			ChunkSeq:   chunk.Seq,
			Similarity: hit.Similarity,
			Page:       chunk.Page,
		})

		if len(excerpts) >= maxContextChunks || budget <= 0 {
			continue
		}
		text := chunk.Text
		if len(text) > budget {
			text = text[:budget]
		}
		budget -= len(text)
		excerpts = append(excerpts, excerpt{page: chunk.Page, text: text})
	}

	return sources, excerpts, nil
}

// buildSystemPrompt assembles the instruction, recent history, and the
// source excerpts into the system message.
func (s *ChatService) buildSystemPrompt(ctx context.Context, doc *domain.Document, excerpts []excerpt) string {
	var b strings.Builder
	b.WriteString(s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystem))

	if history := s.recentHistory(ctx, doc.ID); history != "" {
		b.WriteString("\n\nRecent conversation:\n")
		b.WriteString(history)
	}

	b.WriteString("\n\nSource excerpts from \"")
	b.WriteString(doc.Filename)
	b.WriteString("\":\n")
	for i, ex := range excerpts {
		fmt.Fprintf(&b, "\n[Excerpt %d, page %d]\n%s\n", i+1, ex.page, ex.text)
	}

	return b.String()
}

// recentHistory formats the last turns for the system prompt, truncating
// long answers to keep the prompt compact.
func (s *ChatService) recentHistory(ctx context.Context, documentID string) string {
	turns, err := s.chatStore.RecentTurns(ctx, documentID, historyTurns)
	if err != nil {
		logger.Debug("loading recent turns for %s: %v", documentID, err)
		return ""
	}
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, turn := range turns {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", truncate(turn.Question, historyTruncation), truncate(turn.Answer, historyTruncation))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *ChatService) saveTurn(ctx context.Context, documentID, question string, answer *domain.Answer) error {
	turn := &domain.ConversationTurn{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Question:   question,
		Answer:     answer.Text,
		Sources:    answer.Sources,
		ChunksUsed: answer.ChunksUsed,
		Model:      answer.Model,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.chatStore.SaveTurn(ctx, turn); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// loadPrompt reads a named prompt from the store, falling back to the
// built-in text when the store is absent or the load fails.
func (s *ChatService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	text, err := s.promptStore.Load(name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("loading prompt %s: %v", name, err)
		}
		return fallback
	}
	return text
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
