package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
// Turns are kept in insertion order per document.
type ChatStore struct {
	mu    sync.RWMutex
	turns map[string][]domain.ConversationTurn
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		turns: make(map[string][]domain.ConversationTurn),
	}
}

// SaveTurn appends a completed turn to a document's history.
func (s *ChatStore) SaveTurn(_ context.Context, turn *domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[turn.DocumentID] = append(s.turns[turn.DocumentID], *turn)
	return nil
}

// ListTurns returns up to limit turns for a document, oldest first.
func (s *ChatStore) ListTurns(_ context.Context, documentID string, limit int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[documentID]
	if limit > 0 && limit < len(turns) {
		turns = turns[:limit]
	}
	result := make([]domain.ConversationTurn, len(turns))
	copy(result, turns)
	return result, nil
}

// RecentTurns returns the latest n turns for a document, oldest first.
func (s *ChatStore) RecentTurns(_ context.Context, documentID string, n int) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.turns[documentID]
	if n > 0 && n < len(turns) {
		turns = turns[len(turns)-n:]
	}
	result := make([]domain.ConversationTurn, len(turns))
	copy(result, turns)
	return result, nil
}

// ClearHistory removes all turns for a document.
func (s *ChatStore) ClearHistory(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, documentID)
	return nil
}
