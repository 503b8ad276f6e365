package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookbot/internal/core/domain"
	"github.com/custodia-labs/bookbot/internal/core/ports/driven"
)

func TestPromptBuilder_Build(t *testing.T) {
	b := NewPromptBuilder(newPromptStore())
	chunks := []domain.IndexedChunk{{Text: "birinci"}, {Text: "ikinci"}}

	messages, err := b.Build(chunks, "soru", false)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Sen bir kitapçı asistanısın.\n\nbirinci\n\nikinci", messages[0].Content)
	assert.Equal(t, driven.ChatMessage{Role: driven.RoleUser, Content: "soru"}, messages[1])
}

func TestPromptBuilder_Structured(t *testing.T) {
	b := NewPromptBuilder(newPromptStore())

	messages, err := b.Build([]domain.IndexedChunk{{Text: "bağlam"}}, "soru", true)
	require.NoError(t, err)
	assert.Equal(t, "Sen bir kitapçı asistanısın.\n\nJSON döndür.\n\nbağlam", messages[0].Content)
}

func TestPromptBuilder_TemplateWithoutPlaceholder(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{driven.PromptChatSystem: "Asistan."}}
	b := NewPromptBuilder(store)

	messages, err := b.Build([]domain.IndexedChunk{{Text: "bağlam"}}, "soru", false)
	require.NoError(t, err)
	assert.Equal(t, "Asistan.\n\nbağlam", messages[0].Content)
}

func TestPromptBuilder_MissingStructuredPrompt(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{driven.PromptChatSystem: "{context}"}}
	_, err := NewPromptBuilder(store).Build(nil, "soru", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJoinContext(t *testing.T) {
	assert.Empty(t, JoinContext(nil))
	assert.Equal(t, "a\n\nb", JoinContext([]domain.IndexedChunk{{Text: "a"}, {Text: "b"}}))
}
