// Package domain defines the core business entities for bookbot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - BookRecord: A catalog entry as loaded from disk
//   - IndexedChunk: A searchable slice of a flattened book
//   - CartItem: A book placed in a session's cart
//   - Intent: A cart command emitted by the language model
//   - Reply: The outcome of one chat turn
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
package domain
