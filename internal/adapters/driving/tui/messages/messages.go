// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/bookbot/internal/core/domain"
)

// ReplyReceived carries the assistant's answer to one message.
type ReplyReceived struct {
	Query string
	Reply domain.Reply
	Err   error
}

// CartLoaded carries the session's cart.
type CartLoaded struct {
	Cart domain.Cart
	Err  error
}
