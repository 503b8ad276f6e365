package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

// contextSeparator joins retrieved chunk texts.
const contextSeparator = "\n\n"

// PromptBuilder assembles the system instruction, retrieved context and
// the user's query into chat messages.
type PromptBuilder struct {
	prompts driven.PromptStore
}

// NewPromptBuilder creates a prompt builder backed by the prompt store.
func NewPromptBuilder(prompts driven.PromptStore) *PromptBuilder {
	return &PromptBuilder{prompts: prompts}
}

// Build returns the system and user messages for one turn.
// When structured is set the structured intent instruction is appended
// to the system message.
func (b *PromptBuilder) Build(chunks []domain.IndexedChunk, query string, structured bool) ([]driven.ChatMessage, error) {
	system, err := b.prompts.Load(driven.PromptChatSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptChatSystem, err)
	}
	if !strings.Contains(system, driven.ContextPlaceholder) {
		// A template without the placeholder still gets the context.
		system += contextSeparator + driven.ContextPlaceholder
	}

	if structured {
		extra, err := b.prompts.Load(driven.PromptStructuredIntent)
		if err != nil {
			return nil, fmt.Errorf("load prompt %s: %w", driven.PromptStructuredIntent, err)
		}
		system = strings.Replace(system, driven.ContextPlaceholder,
			strings.TrimSpace(extra)+contextSeparator+driven.ContextPlaceholder, 1)
	}

	system = strings.Replace(system, driven.ContextPlaceholder, JoinContext(chunks), 1)

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: query},
	}, nil
}

// JoinContext joins chunk texts with blank lines, in retrieval order.
func JoinContext(chunks []domain.IndexedChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, contextSeparator)
}
