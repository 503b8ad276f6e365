// Package tui provides the interactive chat window of bookbot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/bookbot/internal/core/ports/driving"
)

// Ports aggregates the driving ports the chat window uses.
type Ports struct {
	// Chat answers messages and runs inferred cart commands.
	Chat driving.ChatService

	// Cart lists the session's cart for the side panel.
	Cart driving.CartService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Chat == nil {
		return ErrMissingChatService
	}
	if p.Cart == nil {
		return ErrMissingCartService
	}
	return nil
}
