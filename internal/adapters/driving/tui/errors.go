package tui

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingCartService is returned when the cart service is not provided.
var ErrMissingCartService = errors.New("tui: cart service is required")
