// Package mcp exposes the bookstore assistant as a Model Context Protocol
// server so AI clients can ask questions and manage carts.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingChatService = errors.New("mcp: chat service is required")
	ErrMissingCartService = errors.New("mcp: cart service is required")
)

// errUnknownAction is returned by the cart tool for an unrecognised action.
var errUnknownAction = errors.New("mcp: unknown cart action")
