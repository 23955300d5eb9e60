// Package chunker provides a fixed-size, page-aware text chunking processor.
package chunker

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/docq/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Processor splits extracted page text into fixed-size chunks.
// It implements the PostProcessor interface.
//
// Chunking is a pure function of (chunk size, overlap, page text):
// identical inputs always produce identical chunk boundaries and ids.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the pages into chunks. Input chunks are ignored; this
// processor creates new chunks from page text.
//
// Pages are joined with a single newline so a chunk may span a page
// boundary; each chunk records the page of its starting character.
// The final partial chunk is kept, never dropped. Empty text produces
// no chunks.
func (p *Processor) Process(_ context.Context, documentID string, pages []domain.Page, _ []domain.Chunk) ([]domain.Chunk, error) {
	content, pageStarts := joinPages(pages)
	if content == "" {
		return nil, nil
	}

	contentLen := len(content)

	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	seq := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Seq:        seq,
			Text:       content[start:end],
			Page:       pageAt(pages, pageStarts, start),
		})
		seq++

		// Move start forward by (chunkSize - overlap)
		start += p.chunkSize - p.overlap

		// Avoid infinite loop for edge cases
		if p.chunkSize <= p.overlap {
			break
		}
	}

	return chunks, nil
}

// joinPages concatenates page text with newline separators and records
// the starting offset of each page in the joined string.
func joinPages(pages []domain.Page) (string, []int) {
	starts := make([]int, len(pages))

	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		starts[i] = b.Len()
		b.WriteString(page.Text)
	}

	return b.String(), starts
}

// pageAt returns the page number owning the character at offset.
func pageAt(pages []domain.Page, starts []int, offset int) int {
	if len(pages) == 0 {
		return 0
	}

	// First page whose start is past the offset; the one before owns it.
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	return pages[i-1].Number
}
