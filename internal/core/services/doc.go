// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The chat pipeline is: Retriever -> PromptBuilder -> LLMService ->
// IntentRouter -> CartService. IndexerService fills the vector index
// from the catalog once, ahead of any chat turn.
//
// Services are pure Go with no external dependencies.
package services
