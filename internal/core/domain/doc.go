// Package domain defines the core business entities for docq.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded PDF and its ingestion state
//   - Chunk: A retrievable unit of extracted text
//   - Answer: A generated answer with its cited sources
//   - ConversationTurn: One persisted question/answer exchange
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
