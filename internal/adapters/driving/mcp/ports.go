package mcp

import (
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Chat answers questions.
	Chat driving.ChatService

	// Cart runs cart commands directly, without the LLM.
	Cart driving.CartService

	// Index reports index size. Optional.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Cart == nil {
		return ErrMissingCartService
	}
	return nil
}
