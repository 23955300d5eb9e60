package flat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/docq/internal/core/domain"
	"github.com/custodia-labs/docq/internal/core/ports/driven"
	"github.com/custodia-labs/docq/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Store manages per-document index artifacts under a data directory.
// Loaded indexes are cached; artifacts are written atomically so a crash
// mid-build never leaves a partial index that a query could observe.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache map[string]*index
}

// NewStore creates an index store rooted at dir.
// The directory is created if it does not exist.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docq", "data", "indexes")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	return &Store{
		dir:   dir,
		cache: make(map[string]*index),
	}, nil
}

// Build creates the index artifact for a document and persists it
// atomically, replacing any existing artifact.
func (s *Store) Build(_ context.Context, documentID, model string, vectors []driven.IndexEntry) error {
	if documentID == "" {
		return fmt.Errorf("build index: %w", domain.ErrInvalidInput)
	}

	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0].Vector)
	}

	ix := &index{
		model: model,
		dims:  dims,
		seqs:  make([]int, 0, len(vectors)),
		vecs:  make([][]float32, 0, len(vectors)),
	}

	// Deterministic record order regardless of embed completion order
	sorted := make([]driven.IndexEntry, len(vectors))
	copy(sorted, vectors)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ChunkSeq < sorted[j].ChunkSeq })

	for _, entry := range sorted {
		if len(entry.Vector) != dims {
			return fmt.Errorf("build index for %s: vector for chunk %d has %d dimensions, want %d",
				documentID, entry.ChunkSeq, len(entry.Vector), dims)
		}
		ix.seqs = append(ix.seqs, entry.ChunkSeq)
		ix.vecs = append(ix.vecs, normalise(entry.Vector))
	}

	path := s.path(documentID)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, ix.encode(), 0o600); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit index artifact: %w", err)
	}

	s.mu.Lock()
	s.cache[documentID] = ix
	s.mu.Unlock()

	logger.Debug("built index for %s: %d vectors, model %s", documentID, len(ix.seqs), model)
	return nil
}

// Search finds up to k chunks nearest the query vector.
func (s *Store) Search(_ context.Context, documentID string, query []float32, k int, minSimilarity float64) ([]driven.VectorHit, error) {
	ix, err := s.load(documentID)
	if err != nil {
		return nil, err
	}

	if ix.dims > 0 && len(query) != ix.dims {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), ix.dims, domain.ErrEmbeddingModelMismatch)
	}

	hits := ix.search(query, k, minSimilarity)

	results := make([]driven.VectorHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, driven.VectorHit{
			ChunkSeq:   h.seq,
			Similarity: h.sim,
		})
	}
	return results, nil
}

// Model returns the embedding model recorded in a document's artifact.
func (s *Store) Model(_ context.Context, documentID string) (string, error) {
	ix, err := s.load(documentID)
	if err != nil {
		return "", err
	}
	return ix.model, nil
}

// Delete removes a document's artifact. A missing artifact is not an error.
func (s *Store) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	delete(s.cache, documentID)
	s.mu.Unlock()

	err := os.Remove(s.path(documentID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove index artifact: %w", err)
	}
	return nil
}

// Close drops the in-memory cache. Artifacts stay on disk.
func (s *Store) Close() error {
	s.mu.Lock()
	s.cache = make(map[string]*index)
	s.mu.Unlock()
	return nil
}

// load returns a document's index, reading the artifact on first use.
// A missing or corrupt artifact surfaces as domain.ErrIndexUnavailable;
// it is never rebuilt here, that would mask an ingestion failure.
func (s *Store) load(documentID string) (*index, error) {
	s.mu.RLock()
	ix, ok := s.cache[documentID]
	s.mu.RUnlock()
	if ok {
		return ix, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check under the write lock
	if ix, ok := s.cache[documentID]; ok {
		return ix, nil
	}

	ix, err := loadFile(s.path(documentID))
	if err != nil {
		logger.Warn("index for %s unavailable: %v", documentID, err)
		return nil, fmt.Errorf("load index for %s: %w", documentID, domain.ErrIndexUnavailable)
	}

	s.cache[documentID] = ix
	return ix, nil
}

func (s *Store) path(documentID string) string {
	return filepath.Join(s.dir, documentID+".vec")
}
