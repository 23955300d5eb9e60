// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Extractor: Pulls ordered page text from PDF bytes
//   - PostProcessorPipeline: Turns page text into chunks
//   - EmbeddingService: Generates vector embeddings
//   - IndexStore: Per-document vector index persistence and search
//   - DocumentStore: Document and chunk persistence
//   - ChatStore: Conversation turn persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, questions cannot be
//     answered but ingestion and retrieval still work.
//   - PromptStore: User-editable prompt templates. Without it, embedded
//     defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
