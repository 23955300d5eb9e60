package domain

import "time"

// Source is a retrieved chunk cited by an answer.
type Source struct {
	// ChunkSeq identifies the cited chunk within the document.
	ChunkSeq int

	// Similarity is the cosine similarity score (0-1).
	Similarity float64

	// Page is the page number of the cited chunk's start.
	Page int
}

// Answer is the composed response to a question, with its citations.
type Answer struct {
	// Text is the model's answer, or the refusal when nothing was retrieved.
	Text string

	// Sources lists the chunks the answer is grounded on, ranked by similarity.
	Sources []Source

	// ChunksUsed is the number of chunks included in the prompt.
	ChunksUsed int

	// Model is the generation model name.
	Model string
}

// ConversationTurn is one persisted question/answer exchange for a document.
// Turns are append-only per document and cleared only by an explicit
// history reset. A failed generation persists no turn.
type ConversationTurn struct {
	// ID is the unique identifier for the turn.
	ID string

	// DocumentID links to the document the question was asked against.
	DocumentID string

	// Question is the user's question.
	Question string

	// Answer is the generated answer text.
	Answer string

	// Sources lists the cited chunks.
	Sources []Source

	// ChunksUsed is the number of chunks included in the prompt.
	ChunksUsed int

	// Model is the generation model name.
	Model string

	// CreatedAt is when the turn completed.
	CreatedAt time.Time
}
