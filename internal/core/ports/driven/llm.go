package driven

import "context"

// LLMService produces completions for the chatbot.
//
// Implementations include:
//   - Gemini and OpenAI (OpenAI-compatible chat completions)
//   - Ollama (local models)
type LLMService interface {
	// Chat sends the conversation and returns the assistant's reply text.
	// When opts.Schema is set the reply is a JSON document matching it.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// Schema requests structured JSON output. Nil means free text.
	Schema *ResponseSchema
}

// ResponseSchema describes a flat JSON object the model must return.
type ResponseSchema struct {
	// Name identifies the schema to the provider.
	Name string

	Description string

	Properties map[string]SchemaProperty
	Required   []string
}

// SchemaProperty is one string field of a ResponseSchema.
type SchemaProperty struct {
	Description string

	// Enum restricts the field to the listed values when non-empty.
	Enum []string
}
