// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Turns text into vectors (Gemini, OpenAI, Ollama)
//   - VectorIndex: Stores and searches embedded chunks (chromem, memory)
//   - LLMService: Produces completions from an assembled prompt
//   - CartStore: Per-session cart persistence (memory, SQLite)
//   - CatalogSource: Reads book records from disk
//   - Splitter: Cuts flattened records into chunks
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
