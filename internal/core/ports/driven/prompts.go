package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptChatSystem is the bookstore assistant instruction.
	// It must contain the {context} placeholder.
	PromptChatSystem = "chat_system"

	// PromptStructuredIntent is appended to the system prompt in structured
	// intent mode. It has no placeholders.
	PromptStructuredIntent = "structured_intent"
)

// ContextPlaceholder is replaced by the retrieved chunk texts.
const ContextPlaceholder = "{context}"
