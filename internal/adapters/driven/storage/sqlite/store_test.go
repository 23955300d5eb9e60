package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "docq-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestDocument creates a test document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	doc := &domain.Document{
		ID:         docID,
		Filename:   docID + ".pdf",
		ByteSize:   1024,
		Status:     domain.StatusUploaded,
		UploadedAt: now,
		UpdatedAt:  now,
	}
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))
}

// ==================== Document Store Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")

	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "doc-1.pdf", doc.Filename)
	assert.Equal(t, int64(1024), doc.ByteSize)
	assert.Equal(t, domain.StatusUploaded, doc.Status)
}

func TestDocumentStore_SaveUpdatesStatus(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")

	doc, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)

	doc.Status = domain.StatusFailed
	doc.FailureReason = "text extraction failed: encrypted"
	doc.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))

	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "text extraction failed: encrypted", got.FailureReason)
}

func TestDocumentStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.DocumentStore().GetDocument(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ChunksRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")

	chunks := []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "first chunk", Page: 1, Embedding: []float32{0.1, 0.2, 0.3}},
		{DocumentID: "doc-1", Seq: 1, Text: "second chunk", Page: 1, Embedding: []float32{0.4, 0.5, 0.6}},
		{DocumentID: "doc-1", Seq: 2, Text: "third chunk", Page: 2},
	}
	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", chunks))

	got, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	for i, chunk := range got {
		assert.Equal(t, i, chunk.Seq)
	}
	assert.Equal(t, "first chunk", got[0].Text)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0].Embedding)
	assert.Equal(t, 2, got[2].Page)
	assert.Nil(t, got[2].Embedding)
}

func TestDocumentStore_SaveChunksReplaces(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")

	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "old", Page: 1},
		{DocumentID: "doc-1", Seq: 1, Text: "old too", Page: 1},
	}))
	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "new", Page: 1},
	}))

	got, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Text)
}

func TestDocumentStore_GetChunk(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")
	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "only", Page: 3},
	}))

	chunk, err := store.DocumentStore().GetChunk(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Equal(t, "only", chunk.Text)
	assert.Equal(t, 3, chunk.Page)

	_, err = store.DocumentStore().GetChunk(ctx, "doc-1", 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteCascadesChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")
	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "chunk", Page: 1},
	}))

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "doc-1"))

	_, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_List(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"doc-a", "doc-b"} {
		doc := &domain.Document{
			ID:         id,
			Filename:   id + ".pdf",
			Status:     domain.StatusUploaded,
			UploadedAt: now.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  now,
		}
		require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))
	}

	docs, err := store.DocumentStore().ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Most recently uploaded first
	assert.Equal(t, "doc-b", docs[0].ID)
	assert.Equal(t, "doc-a", docs[1].ID)
}

// ==================== Chat Store Tests ====================

func saveTestTurn(t *testing.T, store *Store, docID, id string, at time.Time) {
	t.Helper()
	turn := &domain.ConversationTurn{
		ID:         id,
		DocumentID: docID,
		Question:   "question " + id,
		Answer:     "answer " + id,
		Sources: []domain.Source{
			{ChunkSeq: 0, Similarity: 0.9, Page: 1},
		},
		ChunksUsed: 1,
		Model:      "test-model",
		CreatedAt:  at,
	}
	require.NoError(t, store.ChatStore().SaveTurn(context.Background(), turn))
}

func TestChatStore_SaveAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestDocument(t, store, "doc-1")
	now := time.Now().UTC().Truncate(time.Second)
	saveTestTurn(t, store, "doc-1", "turn-1", now)
	saveTestTurn(t, store, "doc-1", "turn-2", now.Add(time.Minute))

	turns, err := store.ChatStore().ListTurns(context.Background(), "doc-1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	// Oldest first
	assert.Equal(t, "turn-1", turns[0].ID)
	assert.Equal(t, "turn-2", turns[1].ID)
	assert.Equal(t, "question turn-1", turns[0].Question)
	require.Len(t, turns[0].Sources, 1)
	assert.Equal(t, 0.9, turns[0].Sources[0].Similarity)
	assert.Equal(t, "test-model", turns[0].Model)
}

func TestChatStore_ListLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestDocument(t, store, "doc-1")
	now := time.Now().UTC().Truncate(time.Second)
	saveTestTurn(t, store, "doc-1", "turn-1", now)
	saveTestTurn(t, store, "doc-1", "turn-2", now.Add(time.Minute))
	saveTestTurn(t, store, "doc-1", "turn-3", now.Add(2*time.Minute))

	turns, err := store.ChatStore().ListTurns(context.Background(), "doc-1", 2)
	require.NoError(t, err)
	assert.Len(t, turns, 2)
}

func TestChatStore_RecentTurns(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestDocument(t, store, "doc-1")
	now := time.Now().UTC().Truncate(time.Second)
	saveTestTurn(t, store, "doc-1", "turn-1", now)
	saveTestTurn(t, store, "doc-1", "turn-2", now.Add(time.Minute))
	saveTestTurn(t, store, "doc-1", "turn-3", now.Add(2*time.Minute))

	turns, err := store.ChatStore().RecentTurns(context.Background(), "doc-1", 2)
	require.NoError(t, err)
	require.Len(t, turns, 2)

	// The latest two, in chronological order
	assert.Equal(t, "turn-2", turns[0].ID)
	assert.Equal(t, "turn-3", turns[1].ID)
}

func TestChatStore_ClearHistory(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")
	require.NoError(t, store.DocumentStore().SaveChunks(ctx, "doc-1", []domain.Chunk{
		{DocumentID: "doc-1", Seq: 0, Text: "chunk", Page: 1},
	}))
	saveTestTurn(t, store, "doc-1", "turn-1", time.Now().UTC())

	require.NoError(t, store.ChatStore().ClearHistory(ctx, "doc-1"))

	turns, err := store.ChatStore().ListTurns(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)

	// Chunks are untouched
	chunks, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestChatStore_DeleteDocumentCascadesTurns(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	createTestDocument(t, store, "doc-1")
	saveTestTurn(t, store, "doc-1", "turn-1", time.Now().UTC())

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "doc-1"))

	turns, err := store.ChatStore().ListTurns(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

// ==================== Embedding Blob Tests ====================

func TestFloat32SliceRoundTrip(t *testing.T) {
	original := []float32{0.1, -0.5, 3.14159, 0}

	bytes := float32SliceToBytes(original)
	restored := bytesToFloat32Slice(bytes)

	assert.Equal(t, original, restored)
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
